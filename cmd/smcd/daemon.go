package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/smcd/pkg/config"
	"github.com/charlie0129/smcd/pkg/daemon"
	"github.com/charlie0129/smcd/pkg/smc"
	"github.com/charlie0129/smcd/pkg/version"
)

var (
	// alwaysAllowNonRootAccess indicates whether to always allow non-root users to access the smcd daemon.
	alwaysAllowNonRootAccess = false
	// useMockSMC serves a simulated controller instead of the real one.
	useMockSMC = false
)

// mockKeys prefill the simulated controller, in controller byte order.
var mockKeys = map[string][]byte{
	"ACID":                {0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
	"CLWK":                {0x00, 0x00},
	"WKTP":                {0x01},
	"TB0T":                {0x1d, 0x80},
	smc.AdapterKey:        {0x00},
	smc.ChargingKey1:      {0x00},
	smc.ChargingKey2:      {0x00},
	smc.BatteryChargeKey:  {80},
	smc.ACPowerKey:        {0x01},
	smc.MagSafeLedKey:     {0x03},
	smc.DCInCurrentKey:    {0x00, 0x00, 0x00, 0x40},
	smc.DCInVoltageKey:    {0x00, 0x00, 0xa0, 0x41},
	smc.BatteryCurrentKey: {0x00, 0x00},
	smc.BatteryVoltageKey: {0xe0, 0x2e},
}

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "daemon",
		Short:   "Run smcd daemon in the foreground",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("smcd daemon starting")

			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			var c *smc.AppleSMC
			if useMockSMC {
				logrus.Warn("serving a simulated SMC")
				c = smc.NewMock(mockKeys)
			} else {
				c = smc.New()
			}

			return daemon.New(c, conf).Run(unixSocketPath, alwaysAllowNonRootAccess)
		},
	}

	f := cmd.Flags()

	f.BoolVar(&alwaysAllowNonRootAccess, "always-allow-non-root-access", false,
		"Always allow non-root users to access the daemon.")
	f.BoolVar(&useMockSMC, "mock", false,
		"Serve a simulated SMC. Useful for development on machines without one.")

	return cmd
}
