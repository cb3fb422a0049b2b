package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/smcd/pkg/config"
	"github.com/charlie0129/smcd/pkg/powerinfo"
)

type statusData struct {
	charging       bool
	pluggedIn      bool
	adapter        bool
	currentCharge  int
	silentRunning  bool
	wakeTimerMs    int64
	batteryInfo    *powerinfo.Battery
	powerTelemetry *powerinfo.PowerTelemetry
	config         *config.RawFileConfig
}

type statusJSON struct {
	Charging       bool                      `json:"charging"`
	PluggedIn      bool                      `json:"pluggedIn"`
	UseAdapter     bool                      `json:"useAdapter"`
	CurrentCharge  int                       `json:"currentChargePercent"`
	SilentRunning  bool                      `json:"silentRunning"`
	WakeTimerMs    int64                     `json:"wakeTimerMilliseconds"`
	Battery        *powerinfo.Battery        `json:"battery,omitempty"`
	PowerTelemetry *powerinfo.PowerTelemetry `json:"powerTelemetry,omitempty"`
	Configuration  *config.RawFileConfig     `json:"configuration"`
}

// fetchStatusData gathers all data required for the status command from the daemon.
// Battery info and telemetry are optional: desktops have neither.
func fetchStatusData() (*statusData, error) {
	charging, err := apiClient.GetCharging()
	if err != nil {
		return nil, fmt.Errorf("failed to get charging status: %w", err)
	}

	pluggedIn, err := apiClient.GetPluggedIn()
	if err != nil {
		return nil, fmt.Errorf("failed to check if you are plugged in: %w", err)
	}

	adapter, err := apiClient.GetAdapter()
	if err != nil {
		return nil, fmt.Errorf("failed to get power adapter status: %w", err)
	}

	currentCharge, err := apiClient.GetCurrentCharge()
	if err != nil {
		return nil, fmt.Errorf("failed to get current charge: %w", err)
	}

	silent, err := apiClient.GetSilentRunning()
	if err != nil {
		return nil, fmt.Errorf("failed to check silent running: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	data := &statusData{
		charging:      charging,
		pluggedIn:     pluggedIn,
		adapter:       adapter,
		currentCharge: currentCharge,
		silentRunning: silent,
		config:        conf,
	}

	if d, err := apiClient.GetWakeTimer(); err == nil {
		data.wakeTimerMs = d.Milliseconds()
	} else {
		logrus.WithError(err).Debug("wake timer unavailable")
	}
	if bat, err := apiClient.GetBatteryInfo(); err == nil {
		data.batteryInfo = bat
	} else {
		logrus.WithError(err).Debug("battery info unavailable")
	}
	if t, err := apiClient.GetPowerTelemetry(); err == nil {
		data.powerTelemetry = t
	} else {
		logrus.WithError(err).Debug("power telemetry unavailable")
	}

	return data, nil
}

func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gPower,
		Short:   "Get the current power status",
		Long:    `Get charging and adapter state, battery info, and daemon configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			if asJSON {
				out := statusJSON{
					Charging:       data.charging,
					PluggedIn:      data.pluggedIn,
					UseAdapter:     data.adapter,
					CurrentCharge:  data.currentCharge,
					SilentRunning:  data.silentRunning,
					WakeTimerMs:    data.wakeTimerMs,
					Battery:        data.batteryInfo,
					PowerTelemetry: data.powerTelemetry,
					Configuration:  data.config,
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			conf := config.NewFileFromConfig(data.config, "")

			cmd.Println(bold("Power status:"))
			cmd.Println("  Allow charging: " + bool2Text(data.charging))
			cmd.Println("  Plugged in: " + bool2Text(data.pluggedIn))
			cmd.Println("  Use power adapter: " + bool2Text(data.adapter))
			cmd.Printf("  Current charge: %s\n", bold("%d%%", data.currentCharge))
			if t := data.powerTelemetry; t != nil {
				cmd.Printf("  Adapter: %s\n", bold("%.1f W (%.2f V, %.2f A)", t.ACPower, t.ACVoltage, t.ACAmperage))
				cmd.Printf("  Battery: %s\n", bold("%+.1f W", t.BatteryPower))
				cmd.Printf("  System: %s\n", bold("%.1f W", t.SystemPower))
			}

			if bat := data.batteryInfo; bat != nil {
				cmd.Println()
				cmd.Println(bold("Battery status:"))

				state := "not charging"
				switch bat.State {
				case powerinfo.Charging:
					state = color.GreenString("charging")
				case powerinfo.Discharging:
					if bat.ChargeRate != 0 {
						state = color.RedString("discharging")
					}
				case powerinfo.Full:
					state = "full"
				}
				cmd.Printf("  State: %s\n", bold("%s", state))
				cmd.Printf("  Full capacity: %s\n", bold("%.0f mWh", bat.Full))

				watts := bat.ChargeRate / 1e3
				var rateStr string
				switch {
				case watts > 0:
					rateStr = color.New(color.Bold, color.FgGreen).Sprintf("%+.1f W", watts)
				case watts < 0:
					rateStr = color.New(color.Bold, color.FgRed).Sprintf("%+.1f W", watts)
				default:
					rateStr = bold("%+.1f W", watts)
				}
				cmd.Printf("  Charge rate: %s\n", rateStr)
				cmd.Printf("  Voltage: %s\n", bold("%.2f V", bat.Voltage))
			}

			cmd.Println()
			cmd.Println(bold("SMC:"))
			cmd.Printf("  Silent running supported: %s\n", bool2Text(data.silentRunning))
			cmd.Printf("  Last wake timer: %s\n", bold("%d ms", data.wakeTimerMs))

			cmd.Println()
			cmd.Println(bold("Configuration:"))
			cmd.Printf("  Prime wake timer before sleep: %s\n", bool2Text(conf.PrimeWakeTimer()))
			cmd.Printf("  Allow non-root users to access the daemon: %s\n", bool2Text(conf.AllowNonRootAccess()))
			if keys := conf.NoSwapKeys(); len(keys) > 0 {
				cmd.Printf("  Extra no-swap keys: %s\n", bold("%v", keys))
			}
			for _, s := range conf.Samplers() {
				cmd.Printf("  Sampler: %s every %s\n", bold("%s", s.Key), bold("%s", s.Schedule))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")

	return cmd
}
