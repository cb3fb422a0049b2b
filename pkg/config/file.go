package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/smcd/pkg/smc"
	"github.com/charlie0129/smcd/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		AllowNonRootAccess: ptr.To(false),
		// pmconfigd primes the wake timer on every sleep. Keep that behaviour
		// unless the user opts out.
		PrimeWakeTimer: ptr.To(true),
	}
)

// ScheduleParser parses sampler schedules: standard cron with optional
// seconds, plus descriptors like "@every 1m".
var ScheduleParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	AllowNonRootAccess *bool     `json:"allowNonRootAccess,omitempty"`
	PrimeWakeTimer     *bool     `json:"primeWakeTimer,omitempty"`
	NoSwapKeys         []string  `json:"noSwapKeys,omitempty"`
	Samplers           []Sampler `json:"samplers,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
		PrimeWakeTimer:     ptr.To(c.PrimeWakeTimer()),
		NoSwapKeys:         c.NoSwapKeys(),
		Samplers:           c.Samplers(),
	}

	return rawConfig, nil
}

// Validate checks every key name and sampler schedule.
func (r *RawFileConfig) Validate() error {
	for _, k := range r.NoSwapKeys {
		if _, err := smc.ParseKey(k); err != nil {
			return pkgerrors.Wrapf(err, "invalid noSwapKeys entry %q", k)
		}
	}
	for i, s := range r.Samplers {
		if _, err := smc.ParseKey(s.Key); err != nil {
			return pkgerrors.Wrapf(err, "invalid key in samplers[%d]", i)
		}
		if _, err := ScheduleParser.Parse(s.Schedule); err != nil {
			return pkgerrors.Wrapf(err, "invalid schedule %q in samplers[%d]", s.Schedule, i)
		}
	}
	return nil
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.AllowNonRootAccess != nil {
		return *f.c.AllowNonRootAccess
	}
	return *defaultFileConfig.AllowNonRootAccess
}

func (f *File) PrimeWakeTimer() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.PrimeWakeTimer != nil {
		return *f.c.PrimeWakeTimer
	}
	return *defaultFileConfig.PrimeWakeTimer
}

func (f *File) NoSwapKeys() []string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]string(nil), f.c.NoSwapKeys...)
}

func (f *File) Samplers() []Sampler {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]Sampler(nil), f.c.Samplers...)
}

// Policies returns the built-in policies with every NoSwapKeys entry added.
// Entries were validated on load; a malformed one is skipped.
func (f *File) Policies() smc.PolicyTable {
	t := smc.DefaultPolicies()
	for _, k := range f.NoSwapKeys() {
		key, err := smc.ParseKey(k)
		if err != nil {
			logrus.WithError(err).Warnf("ignoring no-swap key %q", k)
			continue
		}
		t[key] = smc.NoSwap
	}
	return t
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.AllowNonRootAccess = &b
}

func (f *File) SetPrimeWakeTimer(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.PrimeWakeTimer = &b
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	if err := conf.Validate(); err != nil {
		return pkgerrors.Wrapf(err, "invalid config in file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"allowNonRootAccess": f.AllowNonRootAccess(),
		"primeWakeTimer":     f.PrimeWakeTimer(),
		"noSwapKeys":         f.NoSwapKeys(),
		"samplers":           len(f.Samplers()),
	}
}
