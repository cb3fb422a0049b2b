package daemon

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/smcd/pkg/events"
)

// onWillSleep runs when the system is about to sleep. It primes the wake
// timer so the wake duration can be read back later.
func (d *Daemon) onWillSleep() {
	d.hub.Publish(events.PowerState, events.PowerStateEvent{
		State: "sleep",
		Ts:    time.Now().Unix(),
	})

	if !d.conf.PrimeWakeTimer() {
		logrus.Debugln("PrimeWakeTimer is disabled, skip priming")
		return
	}

	if err := d.smc.PrimeWakeTimer(); err != nil {
		logrus.Errorf("PrimeWakeTimer failed: %v", err)
		return
	}
	logrus.Debugln("wake timer primed")
}

// onPoweredOn runs when the system has finished waking up.
func (d *Daemon) onPoweredOn() {
	d.hub.Publish(events.PowerState, events.PowerStateEvent{
		State: "wake",
		Ts:    time.Now().Unix(),
	})

	if !d.conf.PrimeWakeTimer() {
		return
	}

	dur, err := d.smc.WakeTimerResult()
	if err != nil {
		logrus.Errorf("WakeTimerResult failed: %v", err)
		return
	}

	logrus.Infof("system woke up, wake timer reads %v", dur)
	d.hub.Publish(events.WakeResult, events.WakeResultEvent{
		Milliseconds: dur.Milliseconds(),
		Ts:           time.Now().Unix(),
	})
}
