package config

import (
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/smcd/pkg/smc"
)

// Sampler periodically reads a key.
type Sampler struct {
	Key      string `json:"key"`
	Schedule string `json:"schedule"`
}

type Config interface {
	AllowNonRootAccess() bool
	PrimeWakeTimer() bool
	NoSwapKeys() []string
	Samplers() []Sampler
	// Policies returns the transfer policy table: the built-in exceptions
	// plus NoSwapKeys.
	Policies() smc.PolicyTable

	SetAllowNonRootAccess(bool)
	SetPrimeWakeTimer(bool)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	// LogrusFields summarises the configuration for logging.
	LogrusFields() logrus.Fields
}
