package smc

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PrimeWakeTimer arms the controller's wake timer. Call it right before the
// system sleeps; WakeTimerResult then tells how long the wake took.
func (c *AppleSMC) PrimeWakeTimer() error {
	logrus.Tracef("PrimeWakeTimer called")

	return c.WriteKey(WakeTimerKey, []byte{0x00, 0x01})
}

// WakeTimerResult returns the duration measured by the wake timer.
func (c *AppleSMC) WakeTimerResult() (time.Duration, error) {
	logrus.Tracef("WakeTimerResult called")

	b, err := c.ReadKey(WakeTimerKey, 2)
	if err != nil {
		return 0, err
	}

	var ms uint16
	for i, v := range b {
		ms |= uint16(v) << (8 * i)
	}
	ret := time.Duration(ms) * time.Millisecond
	logrus.Tracef("WakeTimerResult returned %v", ret)

	return ret, nil
}

// SupportsSilentRunning probes the silent running key. Success is cached on
// c; failures are probed again on the next call.
func (c *AppleSMC) SupportsSilentRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.silentRunning {
		return true
	}

	if _, err := c.ReadKey(SilentRunningKey, 1); err != nil {
		logrus.WithError(err).Debug("silent running probe failed")
		return false
	}

	c.silentRunning = true
	return true
}
