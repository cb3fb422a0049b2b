package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/distatus/battery"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/charlie0129/smcd/pkg/config"
	"github.com/charlie0129/smcd/pkg/powerinfo"
	"github.com/charlie0129/smcd/pkg/smc"
)

func newTestDaemon(t *testing.T) (*Daemon, *smc.MockController) {
	t.Helper()

	ctrl := smc.NewMockController()
	ctrl.Set(smc.ACAdapterInfoKey, smc.DataType(smc.MustKey("ch8*")), []byte{1, 2, 3, 4, 5, 6, 7, 8})
	ctrl.Set(smc.WakeTimerKey, smc.DataType(smc.MustKey("ui16")), []byte{0x01, 0xf4})
	ctrl.Set(smc.MustKey("TB0T"), smc.DataType(smc.MustKey("sp78")), []byte{0x1d, 0x80})
	ctrl.Set(smc.MustKey(smc.AdapterKey), smc.DataType(smc.MustKey("ui8 ")), []byte{0x00})

	conf := config.NewFileFromConfig(&config.RawFileConfig{}, filepath.Join(t.TempDir(), "smcd.json"))
	d := New(smc.NewWithChannel(ctrl), conf)
	return d, ctrl
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetKey(t *testing.T) {
	d, _ := newTestDaemon(t)
	h := d.Handler()

	w := do(t, h, http.MethodGet, "/keys/TB0T", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var got smc.Value
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := smc.Value{Key: "TB0T", DataType: "sp78", DataSize: 2, Bytes: smc.HexBytes{0x80, 0x1d}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(w.Body.String(), `"801d"`) {
		t.Errorf("bytes are not hex encoded: %s", w.Body)
	}
}

func TestGetKeyMaxLen(t *testing.T) {
	d, _ := newTestDaemon(t)
	h := d.Handler()

	w := do(t, h, http.MethodGet, "/keys/ACID?maxLen=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var got smc.Value
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	// ACID is transferred without swapping.
	if diff := cmp.Diff(smc.HexBytes{1, 2, 3}, got.Bytes); diff != "" {
		t.Errorf("bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "short key", method: http.MethodGet, path: "/keys/ABC", want: http.StatusBadRequest},
		{name: "bad maxLen", method: http.MethodGet, path: "/keys/TB0T?maxLen=-1", want: http.StatusBadRequest},
		{name: "missing key", method: http.MethodGet, path: "/keys/NOPE", want: http.StatusNotFound},
		{name: "missing key info", method: http.MethodGet, path: "/keys/NOPE/info", want: http.StatusNotFound},
		{name: "bad hex", method: http.MethodPut, path: "/keys/TB0T", body: `"zz"`, want: http.StatusBadRequest},
		{name: "write missing key", method: http.MethodPut, path: "/keys/NOPE", body: `"01"`, want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDaemon(t)

			w := do(t, d.Handler(), tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tt.want, w.Body)
			}
		})
	}
}

func TestChannelFailureIsUnavailable(t *testing.T) {
	d, ctrl := newTestDaemon(t)
	ctrl.SetOpenError(errors.New("no service"))

	w := do(t, d.Handler(), http.MethodGet, "/adapter-info", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestPutKey(t *testing.T) {
	d, ctrl := newTestDaemon(t)
	ch := d.Events().Subscribe()
	defer d.Events().Unsubscribe(ch)

	w := do(t, d.Handler(), http.MethodPut, "/keys/TB0T", `"aabb"`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}

	got, _ := ctrl.Get(smc.MustKey("TB0T"))
	if diff := cmp.Diff([]byte{0xaa, 0xbb}, got); diff != "" {
		t.Errorf("stored mismatch (-want +got):\n%s", diff)
	}

	ev := <-ch
	if ev.Name != "key.written" {
		t.Errorf("event = %q, want key.written", ev.Name)
	}
}

func TestGetKeyInfo(t *testing.T) {
	d, ctrl := newTestDaemon(t)

	w := do(t, d.Handler(), http.MethodGet, "/keys/CLWK/info", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var got smc.Value
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.DataSize != 2 || got.DataType != "ui16" || len(got.Bytes) != 0 {
		t.Errorf("info = %+v", got)
	}
	if n := len(ctrl.Calls()); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestWakeTimerRoutes(t *testing.T) {
	d, ctrl := newTestDaemon(t)
	h := d.Handler()

	w := do(t, h, http.MethodGet, "/wake-timer", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "500" {
		t.Errorf("GET /wake-timer = %d %s, want 200 500", w.Code, w.Body)
	}

	w = do(t, h, http.MethodPut, "/wake-timer", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("PUT /wake-timer = %d %s", w.Code, w.Body)
	}
	got, _ := ctrl.Get(smc.WakeTimerKey)
	if diff := cmp.Diff([]byte{0x00, 0x01}, got); diff != "" {
		t.Errorf("primed value mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapterInfoAndSilentRunning(t *testing.T) {
	d, _ := newTestDaemon(t)
	h := d.Handler()

	w := do(t, h, http.MethodGet, "/adapter-info", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var info uint64
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info != 0x0807060504030201 {
		t.Errorf("adapter info = %#x", info)
	}

	w = do(t, h, http.MethodGet, "/silent-running", "")
	if strings.TrimSpace(w.Body.String()) != "false" {
		t.Errorf("silent running = %s, want false", w.Body)
	}
}

func TestAdapterRoutes(t *testing.T) {
	d, _ := newTestDaemon(t)
	h := d.Handler()

	if w := do(t, h, http.MethodPut, "/adapter", "false"); w.Code != http.StatusCreated {
		t.Fatalf("PUT /adapter = %d %s", w.Code, w.Body)
	}
	if w := do(t, h, http.MethodGet, "/adapter", ""); strings.TrimSpace(w.Body.String()) != "false" {
		t.Errorf("GET /adapter = %s, want false", w.Body)
	}
	if w := do(t, h, http.MethodPut, "/adapter", "true"); w.Code != http.StatusCreated {
		t.Fatalf("PUT /adapter = %d %s", w.Code, w.Body)
	}
	if w := do(t, h, http.MethodGet, "/adapter", ""); strings.TrimSpace(w.Body.String()) != "true" {
		t.Errorf("GET /adapter = %s, want true", w.Body)
	}
	if w := do(t, h, http.MethodPut, "/adapter", "maybe"); w.Code != http.StatusBadRequest {
		t.Errorf("PUT /adapter maybe = %d, want 400", w.Code)
	}
}

func TestPrimeWakeTimerSetting(t *testing.T) {
	d, _ := newTestDaemon(t)
	h := d.Handler()

	if w := do(t, h, http.MethodPut, "/prime-wake-timer", "false"); w.Code != http.StatusCreated {
		t.Fatalf("PUT /prime-wake-timer = %d %s", w.Code, w.Body)
	}

	w := do(t, h, http.MethodGet, "/config", "")
	var got config.RawFileConfig
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.PrimeWakeTimer == nil || *got.PrimeWakeTimer {
		t.Errorf("primeWakeTimer = %v, want false", got.PrimeWakeTimer)
	}
}

func TestBatteryInfo(t *testing.T) {
	d, _ := newTestDaemon(t)
	d.batteries = func() ([]*battery.Battery, error) {
		return []*battery.Battery{{
			State:      battery.Discharging,
			Design:     70000,
			Full:       65000,
			Current:    30000,
			ChargeRate: 9000,
			Voltage:    12.1,
		}}, nil
	}

	w := do(t, d.Handler(), http.MethodGet, "/battery-info", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var got powerinfo.Battery
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := powerinfo.Battery{
		State:      powerinfo.Discharging,
		Design:     70000,
		Full:       65000,
		Current:    30000,
		ChargeRate: -9000,
		Voltage:    12.1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("battery mismatch (-want +got):\n%s", diff)
	}

	d.batteries = func() ([]*battery.Battery, error) { return nil, nil }
	if w := do(t, d.Handler(), http.MethodGet, "/battery-info", ""); w.Code != http.StatusNotFound {
		t.Errorf("status without batteries = %d, want 404", w.Code)
	}
}

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: smc.ErrInvalidArgument, want: http.StatusBadRequest},
		{err: smc.ErrNotFound, want: http.StatusNotFound},
		{err: smc.ErrChannel, want: http.StatusServiceUnavailable},
		{err: smc.ErrInternal, want: http.StatusInternalServerError},
		{err: errors.New("plain"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFromError(tt.err); got != tt.want {
			t.Errorf("statusFromError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestChargingRoutes(t *testing.T) {
	d, ctrl := newTestDaemon(t)
	ctrl.Set(smc.MustKey(smc.ChargingKey1), smc.DataType(smc.MustKey("ui8 ")), []byte{0x00})
	ctrl.Set(smc.MustKey(smc.ChargingKey2), smc.DataType(smc.MustKey("ui8 ")), []byte{0x00})
	h := d.Handler()

	if w := do(t, h, http.MethodPut, "/charging", "false"); w.Code != http.StatusCreated {
		t.Fatalf("PUT /charging = %d %s", w.Code, w.Body)
	}
	if w := do(t, h, http.MethodGet, "/charging", ""); strings.TrimSpace(w.Body.String()) != "false" {
		t.Errorf("GET /charging = %s, want false", w.Body)
	}
	if w := do(t, h, http.MethodGet, "/charging-control-capable", ""); strings.TrimSpace(w.Body.String()) != "true" {
		t.Errorf("GET /charging-control-capable = %s, want true", w.Body)
	}
}

func TestMagSafeLedRoutes(t *testing.T) {
	d, ctrl := newTestDaemon(t)
	h := d.Handler()

	if w := do(t, h, http.MethodGet, "/magsafe-led", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET /magsafe-led without LED = %d, want 404", w.Code)
	}

	ctrl.Set(smc.MustKey(smc.MagSafeLedKey), smc.DataType(smc.MustKey("ui8 ")), []byte{0x00})
	if w := do(t, h, http.MethodPut, "/magsafe-led", `"green"`); w.Code != http.StatusCreated {
		t.Fatalf("PUT /magsafe-led = %d %s", w.Code, w.Body)
	}
	if w := do(t, h, http.MethodGet, "/magsafe-led", ""); strings.TrimSpace(w.Body.String()) != `"green"` {
		t.Errorf("GET /magsafe-led = %s, want green", w.Body)
	}
	if w := do(t, h, http.MethodPut, "/magsafe-led", `"purple"`); w.Code != http.StatusBadRequest {
		t.Errorf("PUT /magsafe-led purple = %d, want 400", w.Code)
	}
}
