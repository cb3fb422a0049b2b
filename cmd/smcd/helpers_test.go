package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/charlie0129/smcd/pkg/client"
)

func TestParseHexArg(t *testing.T) {
	tests := []struct {
		in      string
		want    []byte
		wantErr bool
	}{
		{in: "0001", want: []byte{0x00, 0x01}},
		{in: "0xBEEF", want: []byte{0xbe, 0xef}},
		{in: "de ad", want: []byte{0xde, 0xad}},
		{in: "", want: []byte{}},
		{in: "abc", wantErr: true},
		{in: "zz", wantErr: true},
		{in: string(bytes.Repeat([]byte("00"), 33)), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHexArg(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHexArg(%q) error = %v, wantErr %t", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !bytes.Equal(got, tt.want) {
				t.Errorf("parseHexArg(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatHex(t *testing.T) {
	if got := formatHex([]byte{0x80, 0x1d, 0x00}); got != "80 1d 00" {
		t.Errorf("formatHex() = %q", got)
	}
}

func TestCheckDaemonVersion(t *testing.T) {
	tests := []struct {
		name          string
		daemonVersion string
		err           error
		wantMismatch  bool
		wantErr       bool
	}{
		{name: "same version", daemonVersion: "v1.0.0"},
		{name: "different version", daemonVersion: "v0.9.0", wantMismatch: true, wantErr: true},
		{name: "daemon too old", err: fmt.Errorf("%w: 404 page not found", client.ErrNotFound), wantMismatch: true, wantErr: true},
		{name: "daemon not running", err: client.ErrDaemonNotRunning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkDaemonVersion("v1.0.0", tt.daemonVersion, tt.err)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkDaemonVersion() error = %v, wantErr %t", err, tt.wantErr)
			}
			if got := errors.Is(err, errVersionMismatch); got != tt.wantMismatch {
				t.Errorf("errors.Is(err, errVersionMismatch) = %t, want %t", got, tt.wantMismatch)
			}
		})
	}
}

func TestSkipVersionCheck(t *testing.T) {
	root := NewCommand()
	for _, tt := range []struct {
		args []string
		want bool
	}{
		{args: []string{"daemon"}, want: true},
		{args: []string{"version"}, want: true},
		{args: []string{"install"}, want: true},
		{args: []string{"read"}, want: false},
		{args: []string{"status"}, want: false},
	} {
		cmd, _, err := root.Find(tt.args)
		if err != nil {
			t.Fatalf("Find(%v) error = %v", tt.args, err)
		}
		if got := skipVersionCheck(cmd); got != tt.want {
			t.Errorf("skipVersionCheck(%s) = %t, want %t", cmd.Name(), got, tt.want)
		}
	}
}
