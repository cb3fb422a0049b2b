package daemon

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"howett.net/plist"
)

func TestPlist(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{
			name: "default paths",
			opts: Options{
				Executable: "/usr/local/bin/smcd",
				ConfigPath: "/etc/smcd.json",
				SocketPath: "/var/run/smcd.sock",
			},
		},
		{
			name: "markup characters in paths",
			opts: Options{
				Executable: "/Users/a&b/<bin>/smcd",
				ConfigPath: "/Users/a&b/smcd.json",
				SocketPath: "/tmp/\"smcd\".sock",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Plist(tt.opts)
			if err != nil {
				t.Fatalf("Plist() error = %v", err)
			}

			// launchd rejects documents that are not well-formed XML.
			dec := xml.NewDecoder(bytes.NewReader(b))
			dec.Strict = true
			for {
				_, err := dec.Token()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Fatalf("plist is not well-formed: %v\n%s", err, b)
				}
			}

			if !strings.Contains(string(b), "<string>"+Label+"</string>") {
				t.Errorf("plist does not contain the label:\n%s", b)
			}

			var got LaunchDaemon
			format, err := plist.Unmarshal(b, &got)
			if err != nil {
				t.Fatalf("plist.Unmarshal() error = %v", err)
			}
			if format != plist.XMLFormat {
				t.Errorf("format = %d, want XML", format)
			}
			if diff := cmp.Diff(NewLaunchDaemon(tt.opts), got); diff != "" {
				t.Errorf("decoded plist mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
