package daemon

import (
	"howett.net/plist"
)

const (
	// Label is the launchd label of the smcd daemon.
	Label = "cc.chlc.smcd"

	plistPath = "/Library/LaunchDaemons/" + Label + ".plist"

	logPath = "/tmp/smcd.log"
)

// LaunchDaemon is the subset of launchd.plist(5) keys smcd uses.
type LaunchDaemon struct {
	Label             string   `plist:"Label"`
	ProgramArguments  []string `plist:"ProgramArguments"`
	RunAtLoad         bool     `plist:"RunAtLoad"`
	KeepAlive         bool     `plist:"KeepAlive"`
	StandardOutPath   string   `plist:"StandardOutPath"`
	StandardErrorPath string   `plist:"StandardErrorPath"`
}

// Options describe how launchd starts the daemon.
type Options struct {
	Executable string
	ConfigPath string
	SocketPath string
}

// NewLaunchDaemon returns the launchd job running `smcd daemon` with o.
func NewLaunchDaemon(o Options) LaunchDaemon {
	return LaunchDaemon{
		Label: Label,
		ProgramArguments: []string{
			o.Executable,
			"daemon",
			"--config", o.ConfigPath,
			"--daemon-socket", o.SocketPath,
		},
		RunAtLoad:         true,
		KeepAlive:         true,
		StandardOutPath:   logPath,
		StandardErrorPath: logPath,
	}
}

// Plist encodes the launchd property list for o as XML.
func Plist(o Options) ([]byte, error) {
	return plist.MarshalIndent(NewLaunchDaemon(o), plist.XMLFormat, "    ")
}
