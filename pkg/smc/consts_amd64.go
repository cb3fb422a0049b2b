package smc

// Various SMC keys for amd64 (Intel 64).
const (
	AdapterKey       = "CH0K"
	BatteryChargeKey = "BBIF"
)
