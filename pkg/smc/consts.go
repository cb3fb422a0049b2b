package smc

// Keys used by the power-management helpers.
var (
	// ACAdapterInfoKey holds adapter data that is not produced by the
	// controller, so it is read without byte swapping.
	ACAdapterInfoKey = MustKey("ACID")
	WakeTimerKey     = MustKey("CLWK")
	SilentRunningKey = MustKey("WKTP")
)

// Various SMC keys shared by Apple Silicon and Intel.
const (
	MagSafeLedKey     = "ACLC"
	ACPowerKey        = "AC-W"
	ChargingKey1      = "CH0B"
	ChargingKey2      = "CH0C"
	DCInVoltageKey    = "VD0R"
	DCInCurrentKey    = "ID0R"
	BatteryVoltageKey = "B0AV"
	BatteryCurrentKey = "B0AC"
)
