package powerinfo

// BatteryState represents the charging state of the battery.
type BatteryState int

const (
	// Discharging indicates the battery is discharging.
	Discharging BatteryState = iota
	// Charging indicates the battery is charging.
	Charging
	// Full indicates the battery is full.
	Full
	// Idle indicates the battery is neither charging nor discharging.
	Idle
)

func (s BatteryState) String() string {
	switch s {
	case Discharging:
		return "discharging"
	case Charging:
		return "charging"
	case Full:
		return "full"
	default:
		return "not charging"
	}
}

// Battery is the battery summary served by the daemon.
// Units:
// - Design, Full, Current: mWh
// - ChargeRate: mW (negative when discharging)
// - Voltage, DesignVoltage: Volts
type Battery struct {
	State         BatteryState `json:"state"`
	Design        float64      `json:"design"`
	Full          float64      `json:"full"`
	Current       float64      `json:"current"`
	ChargeRate    float64      `json:"chargeRate"`
	Voltage       float64      `json:"voltage"`
	DesignVoltage float64      `json:"designVoltage"`
}

// PowerTelemetry holds power figures derived from the SMC sensors.
type PowerTelemetry struct {
	ACPower      float64 `json:"acPower"`
	BatteryPower float64 `json:"batteryPower"`
	SystemPower  float64 `json:"systemPower"`
	ACVoltage    float64 `json:"acVoltage"`
	ACAmperage   float64 `json:"acAmperage"`
}
