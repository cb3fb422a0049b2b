package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/smcd/pkg/smc"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "smcd.json")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadMissingOrEmpty(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "missing", path: filepath.Join(t.TempDir(), "nope.json")},
		{name: "empty", path: writeConfig(t, "  \n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFile(tt.path)
			if err != nil {
				t.Fatalf("NewFile() error = %v", err)
			}
			if f.AllowNonRootAccess() {
				t.Errorf("AllowNonRootAccess() = true, want default false")
			}
			if !f.PrimeWakeTimer() {
				t.Errorf("PrimeWakeTimer() = false, want default true")
			}
			if len(f.Samplers()) != 0 || len(f.NoSwapKeys()) != 0 {
				t.Errorf("unexpected lists: %v %v", f.Samplers(), f.NoSwapKeys())
			}
		})
	}
}

func TestLoadValues(t *testing.T) {
	p := writeConfig(t, `{
  "allowNonRootAccess": true,
  "primeWakeTimer": false,
  "noSwapKeys": ["RPlt"],
  "samplers": [{"key": "TB0T", "schedule": "@every 30s"}]
}`)

	f, err := NewFile(p)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if !f.AllowNonRootAccess() || f.PrimeWakeTimer() {
		t.Errorf("flags = %t/%t, want true/false", f.AllowNonRootAccess(), f.PrimeWakeTimer())
	}
	want := []Sampler{{Key: "TB0T", Schedule: "@every 30s"}}
	if diff := cmp.Diff(want, f.Samplers()); diff != "" {
		t.Errorf("Samplers() mismatch (-want +got):\n%s", diff)
	}

	policies := f.Policies()
	if got := policies.Lookup(smc.MustKey("RPlt")); got != smc.NoSwap {
		t.Errorf("RPlt policy = %v, want no-swap", got)
	}
	if got := policies.Lookup(smc.ACAdapterInfoKey); got != smc.NoSwap {
		t.Errorf("ACID policy = %v, want no-swap", got)
	}
	if got := policies.Lookup(smc.MustKey("TB0T")); got != smc.Swap {
		t.Errorf("TB0T policy = %v, want swap", got)
	}

	wantFields := logrus.Fields{
		"allowNonRootAccess": true,
		"primeWakeTimer":     false,
		"noSwapKeys":         []string{"RPlt"},
		"samplers":           1,
	}
	if diff := cmp.Diff(wantFields, f.LogrusFields()); diff != "" {
		t.Errorf("LogrusFields() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad json", content: `{"samplers": `},
		{name: "short no-swap key", content: `{"noSwapKeys": ["AC"]}`},
		{name: "bad sampler key", content: `{"samplers": [{"key": "TOOLONG", "schedule": "@every 1m"}]}`},
		{name: "bad schedule", content: `{"samplers": [{"key": "TB0T", "schedule": "every minute"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFile(writeConfig(t, tt.content)); err == nil {
				t.Errorf("NewFile() succeeded, want error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "smcd.json")
	f := NewFileFromConfig(nil, p)
	f.SetAllowNonRootAccess(true)
	f.SetPrimeWakeTimer(false)

	if err := f.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := NewFile(p)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if !loaded.AllowNonRootAccess() || loaded.PrimeWakeTimer() {
		t.Errorf("reloaded flags = %t/%t, want true/false", loaded.AllowNonRootAccess(), loaded.PrimeWakeTimer())
	}

	raw, err := NewRawFileConfigFromConfig(loaded)
	if err != nil {
		t.Fatal(err)
	}
	if raw.AllowNonRootAccess == nil || !*raw.AllowNonRootAccess {
		t.Errorf("raw AllowNonRootAccess = %v", raw.AllowNonRootAccess)
	}
}
