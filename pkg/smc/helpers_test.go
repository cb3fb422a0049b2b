package smc

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"
)

func TestACAdapterInfo(t *testing.T) {
	c, _ := newTestSMC(t)

	got, err := c.ACAdapterInfo()
	if err != nil {
		t.Fatalf("ACAdapterInfo() error = %v", err)
	}
	if want := uint64(0x0807060504030201); got != want {
		t.Errorf("ACAdapterInfo() = %#x, want %#x", got, want)
	}
}

func TestWakeTimer(t *testing.T) {
	c, ctrl := newTestSMC(t)

	if err := c.PrimeWakeTimer(); err != nil {
		t.Fatalf("PrimeWakeTimer() error = %v", err)
	}
	stored, _ := ctrl.Get(WakeTimerKey)
	if stored[0] != 0x00 || stored[1] != 0x01 {
		t.Errorf("primed value = %v, want [0 1]", stored)
	}

	// The controller stores 0x01f4 big-endian: 500ms.
	ctrl.Set(WakeTimerKey, DataType(MustKey("ui16")), []byte{0x01, 0xf4})
	got, err := c.WakeTimerResult()
	if err != nil {
		t.Fatalf("WakeTimerResult() error = %v", err)
	}
	if got != 500*time.Millisecond {
		t.Errorf("WakeTimerResult() = %v, want 500ms", got)
	}
}

func TestSupportsSilentRunningCachesSuccess(t *testing.T) {
	c, ctrl := newTestSMC(t)

	if c.SupportsSilentRunning() {
		t.Fatalf("SupportsSilentRunning() = true without WKTP")
	}
	if c.SupportsSilentRunning() {
		t.Fatalf("SupportsSilentRunning() = true without WKTP")
	}
	if got := ctrl.Opens(); got != 2 {
		t.Errorf("failed probes opened %d sessions, want 2", got)
	}

	ctrl.Set(SilentRunningKey, DataType(MustKey("ui8 ")), []byte{0x01})
	if !c.SupportsSilentRunning() {
		t.Fatalf("SupportsSilentRunning() = false with WKTP")
	}

	ctrl.Delete(SilentRunningKey)
	if !c.SupportsSilentRunning() {
		t.Errorf("successful probe was not cached")
	}
	if got := ctrl.Opens(); got != 3 {
		t.Errorf("opens = %d, want 3", got)
	}
}

func TestChargingHelpers(t *testing.T) {
	c := NewMock(map[string][]byte{
		ChargingKey1: {0x02},
		ChargingKey2: {0x02},
		AdapterKey:   {0x01},
	})

	enabled, err := c.IsChargingEnabled()
	if err != nil || enabled {
		t.Fatalf("IsChargingEnabled() = %t, %v", enabled, err)
	}
	if !c.IsChargingControlCapable() {
		t.Errorf("IsChargingControlCapable() = false")
	}

	if err := c.EnableCharging(); err != nil {
		t.Fatalf("EnableCharging() error = %v", err)
	}
	if enabled, _ := c.IsChargingEnabled(); !enabled {
		t.Errorf("charging still disabled")
	}
	if enabled, _ := c.IsAdapterEnabled(); !enabled {
		t.Errorf("EnableCharging did not enable the adapter")
	}

	if err := c.DisableAdapter(); err != nil {
		t.Fatal(err)
	}
	if enabled, _ := c.IsAdapterEnabled(); enabled {
		t.Errorf("adapter still enabled")
	}

	if err := c.DisableCharging(); err != nil {
		t.Fatal(err)
	}
	if enabled, _ := c.IsChargingEnabled(); enabled {
		t.Errorf("charging still enabled")
	}
}

func TestChargingControlNotCapable(t *testing.T) {
	c := NewMock(map[string][]byte{ChargingKey1: {0x00}})

	if c.IsChargingControlCapable() {
		t.Errorf("IsChargingControlCapable() = true with %s missing", ChargingKey2)
	}
}

func TestBatteryAndACPower(t *testing.T) {
	c := NewMock(map[string][]byte{
		BatteryChargeKey: {80},
		ACPowerKey:       {0x01},
	})

	charge, err := c.GetBatteryCharge()
	if err != nil || charge != 80 {
		t.Errorf("GetBatteryCharge() = %d, %v", charge, err)
	}
	plugged, err := c.IsPluggedIn()
	if err != nil || !plugged {
		t.Errorf("IsPluggedIn() = %t, %v", plugged, err)
	}
}

func TestMagSafeLed(t *testing.T) {
	tests := []struct {
		raw  byte
		want MagSafeLedState
	}{
		{raw: 0x03, want: LEDGreen},
		{raw: 0x02, want: LEDGreen},
		{raw: 0x04, want: LEDOrange},
		{raw: 0x19, want: LEDErrorPermOff},
		{raw: 0x42, want: LEDOrange},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			c := NewMock(map[string][]byte{MagSafeLedKey: {tt.raw}})

			got, err := c.GetMagSafeLedState()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("GetMagSafeLedState() = %v, want %v", got, tt.want)
			}
		})
	}

	c := NewMock(map[string][]byte{MagSafeLedKey: {0x00}})
	if !c.CheckMagSafeExistence() {
		t.Fatalf("CheckMagSafeExistence() = false")
	}
	if err := c.SetMagSafeLedState(LEDOff); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.GetMagSafeLedState(); got != LEDOff {
		t.Errorf("state = %v after set, want off", got)
	}
	if NewMock(nil).CheckMagSafeExistence() {
		t.Errorf("CheckMagSafeExistence() = true without LED key")
	}
}

func TestParseMagSafeLedState(t *testing.T) {
	for _, st := range []MagSafeLedState{LEDSystem, LEDOff, LEDGreen, LEDErrorPermOff} {
		got, err := ParseMagSafeLedState(st.String())
		if err != nil || got != st {
			t.Errorf("ParseMagSafeLedState(%q) = %v, %v", st.String(), got, err)
		}
	}
	if _, err := ParseMagSafeLedState("purple"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseMagSafeLedState(purple) error = %v, want invalid argument", err)
	}
}

func TestGetPowerTelemetry(t *testing.T) {
	le32 := func(f float32) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(f))
		return b
	}
	le16 := func(v uint16) []byte {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, v)
		return b
	}

	// Raw sensor bytes as the controller stores them.
	c := NewMock(map[string][]byte{
		DCInCurrentKey:    le32(2),
		DCInVoltageKey:    le32(20),
		BatteryCurrentKey: le16(uint16(0xffff - 999)), // -1000 mA
		BatteryVoltageKey: le16(12000),
	})

	got, err := c.GetPowerTelemetry()
	if err != nil {
		t.Fatalf("GetPowerTelemetry() error = %v", err)
	}
	if got.ACPower != 40 || got.ACVoltage != 20 || got.ACAmperage != 2 {
		t.Errorf("AC figures = %+v", got)
	}
	if got.BatteryPower != -12 || got.SystemPower != 52 {
		t.Errorf("battery/system power = %v/%v, want -12/52", got.BatteryPower, got.SystemPower)
	}
}
