//go:build !amd64

package smc

// Various SMC keys for arm64 (Apple Silicon).
const (
	AdapterKey       = "CH0I"
	BatteryChargeKey = "BUIC"
)
