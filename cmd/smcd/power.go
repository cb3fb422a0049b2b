package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewAdapterInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "adapter-info",
		Short:   "Print the raw AC adapter info word",
		GroupID: gPower,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := apiClient.GetAdapterInfo()
			if err != nil {
				return err
			}

			cmd.Printf("AC adapter info: %s\n", bold("%#016x", info))
			return nil
		},
	}
}

func NewWakeTimerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wake-timer",
		Short:   "Prime or read the SMC wake timer",
		GroupID: gPower,
		Long: `Prime or read the SMC wake timer.

The daemon primes the timer right before the system sleeps and reads it back
after wake. These commands do the same by hand.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "prime",
			Short: "Arm the wake timer",
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := apiClient.PrimeWakeTimer()
				if err != nil {
					return fmt.Errorf("failed to prime wake timer: %w", err)
				}
				if ret != "" {
					logrus.Debugf("daemon responded: %s", ret)
				}
				logrus.Infof("successfully primed wake timer")
				return nil
			},
		},
		&cobra.Command{
			Use:   "result",
			Short: "Read the wake timer",
			RunE: func(cmd *cobra.Command, _ []string) error {
				d, err := apiClient.GetWakeTimer()
				if err != nil {
					return err
				}
				cmd.Printf("Wake timer: %s\n", bold("%v", d))
				return nil
			},
		},
	)

	return cmd
}

func NewSilentRunningCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "silent-running",
		Short:   "Check whether the SMC supports silent running",
		GroupID: gPower,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := apiClient.GetSilentRunning()
			if err != nil {
				return err
			}
			cmd.Printf("Silent running supported: %s\n", bool2Text(ok))
			return nil
		},
	}
}

func NewAdapterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "adapter",
		Short:   "Enable or disable power input",
		GroupID: gPower,
		Long: `Cut or restore power from the wall. This has the same effect as unplugging/plugging the power adapter, even if the adapter is physically plugged in.

NOTE: if you are using Clamshell mode (using a Mac laptop with an external monitor and the lid closed), *cutting power will cause your Mac to go to sleep*. This is a limitation of macOS.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "disable",
			Short: "Disable power adapter",
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := apiClient.SetAdapter(false)
				if err != nil {
					return fmt.Errorf("failed to disable power adapter: %w", err)
				}

				if ret != "" {
					logrus.Debugf("daemon responded: %s", ret)
				}

				logrus.Infof("successfully disabled power adapter")

				return nil
			},
		},
		&cobra.Command{
			Use:   "enable",
			Short: "Enable power adapter",
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := apiClient.SetAdapter(true)
				if err != nil {
					return fmt.Errorf("failed to enable power adapter: %w", err)
				}

				if ret != "" {
					logrus.Debugf("daemon responded: %s", ret)
				}

				logrus.Infof("successfully enabled power adapter")

				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Get the current status of power adapter",
			RunE: func(_ *cobra.Command, _ []string) error {
				ret, err := apiClient.GetAdapter()
				if err != nil {
					return fmt.Errorf("failed to get power adapter status: %w", err)
				}

				if ret {
					logrus.Infof("power adapter is enabled")
				} else {
					logrus.Infof("power adapter is disabled")
				}

				return nil
			},
		},
	)

	return cmd
}

func NewPrimeWakeTimerCommand() *cobra.Command {
	return newEnableDisableCommand(
		"prime-wake-timer",
		"priming the wake timer before sleep",
		`Prime the SMC wake timer every time the system goes to sleep.

This is enabled by default. The measured wake time is logged by the daemon
and published as a wake.result event.`,
		func() (string, error) { return apiClient.SetPrimeWakeTimer(true) },
		func() (string, error) { return apiClient.SetPrimeWakeTimer(false) },
	)
}

func NewChargingCommand() *cobra.Command {
	return newEnableDisableCommand(
		"charging",
		"battery charging",
		`Allow or inhibit battery charging. The Mac still runs from the adapter
while charging is inhibited.`,
		func() (string, error) { return apiClient.SetCharging(true) },
		func() (string, error) { return apiClient.SetCharging(false) },
	)
}

func NewMagSafeLedCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "magsafe-led [STATE]",
		Short:   "Get or set the MagSafe LED",
		GroupID: gPower,
		Long: `Get or set the MagSafe LED.

STATE is one of system, off, green, orange, error-once, error-perm-slow,
error-perm-fast, error-perm-off. Without STATE the current state is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				state, err := apiClient.GetMagSafeLed()
				if err != nil {
					return err
				}
				cmd.Printf("MagSafe LED: %s\n", bold("%s", state))
				return nil
			}

			ret, err := apiClient.SetMagSafeLed(args[0])
			if err != nil {
				return fmt.Errorf("failed to set MagSafe LED: %w", err)
			}
			if ret != "" {
				logrus.Debugf("daemon responded: %s", ret)
			}
			logrus.Infof("successfully set MagSafe LED to %s", args[0])
			return nil
		},
	}
}
