package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/smcd/pkg/client"
	"github.com/charlie0129/smcd/pkg/smc"
	"github.com/charlie0129/smcd/pkg/utils/osver"
)

var (
	logLevel       = "info"
	unixSocketPath = "/var/run/smcd.sock"
	configPath     = "/etc/smcd.json"
)

var (
	gKeys         = "Keys:"
	gPower        = "Power:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gKeys,
		gPower,
		gAdvanced,
	}
)

var apiClient *client.Client

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

// errVersionMismatch is returned when the daemon runs a different smcd build.
var errVersionMismatch = errors.New("client and daemon versions differ")

// skipVersionCheck reports whether cmd works without a daemon of the same version.
func skipVersionCheck(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "daemon", "version", "install", "uninstall":
		return true
	}
	return directAccess
}

// checkDaemonVersion refuses to continue when the daemon version differs from
// the client's. Other errors are left to the command itself to report.
func checkDaemonVersion(clientVersion, daemonVersion string, err error) error {
	switch {
	case err == nil && daemonVersion != clientVersion:
		logrus.WithFields(logrus.Fields{
			"clientVersion": clientVersion,
			"daemonVersion": daemonVersion,
		}).Error("Version mismatch between client and daemon.")
		return fmt.Errorf("%w: client %s, daemon %s", errVersionMismatch, clientVersion, daemonVersion)
	case errors.Is(err, client.ErrNotFound):
		logrus.Error("smcd daemon is too old to report its version.")
		return fmt.Errorf("%w: client %s, daemon unknown", errVersionMismatch, clientVersion)
	}
	return nil
}

func handleCmdError(err error) {
	switch {
	case errors.Is(err, errVersionMismatch):
		fmt.Fprintln(os.Stderr, "\nError: the smcd daemon runs a different version")
		fmt.Fprintln(os.Stderr, "Run 'sudo smcd install' again to update it, or use '--direct'.")
	case errors.Is(err, client.ErrDaemonNotRunning):
		fmt.Fprintln(os.Stderr, "\nError: smcd daemon is not running")
		fmt.Fprintln(os.Stderr, "Is the daemon running? Use '--direct' to talk to the SMC without it.")
	case errors.Is(err, client.ErrPermissionDenied):
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
		fmt.Fprintln(os.Stderr, "  - Or start the daemon with '--always-allow-non-root-access'")
	case errors.Is(err, client.ErrNotFound), errors.Is(err, smc.ErrNotFound):
		fmt.Fprintln(os.Stderr, "\nError: the key does not exist on this machine")
	case errors.Is(err, smc.ErrChannel):
		fmt.Fprintln(os.Stderr, "\nError: cannot reach the SMC. Direct access needs root on macOS.")
	}
}

func main() {
	if runtime.GOOS == "darwin" && !osver.IsAtLeast(11, 0, 0) {
		fmt.Fprintln(os.Stderr, "smcd requires macOS 11.0 or later")
		os.Exit(1)
	}

	// smcd does not need many threads.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(2)
	}

	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smcd",
		Short: "smcd reads and writes Apple SMC keys",
		Long: `smcd reads and writes Apple System Management Controller keys.

It runs as a daemon that owns SMC access and serves it over a unix socket,
and as a client for that daemon. Key commands can also talk to the SMC
directly with '--direct'.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			err := setupLogger()
			if err != nil {
				return err
			}

			apiClient = client.NewClient(unixSocketPath)

			if skipVersionCheck(cmd) {
				return nil
			}

			return checkDaemonVersion(getVersion())
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "smcd daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewReadCommand(),
		NewWriteCommand(),
		NewInfoCommand(),
		NewAdapterInfoCommand(),
		NewWakeTimerCommand(),
		NewSilentRunningCommand(),
		NewAdapterCommand(),
		NewChargingCommand(),
		NewMagSafeLedCommand(),
		NewStatusCommand(),
		NewPrimeWakeTimerCommand(),
		NewEventsCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
	)

	return cmd
}
