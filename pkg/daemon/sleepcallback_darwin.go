package daemon

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation
#include "hook.h"
*/
import "C"

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// IOKit calls back into exported functions, which cannot carry a receiver.
// The listening daemon is kept here for them.
var (
	listenerMu sync.RWMutex
	listener   *Daemon
)

func currentListener() *Daemon {
	listenerMu.RLock()
	defer listenerMu.RUnlock()
	return listener
}

//export canSystemSleepCallback
func canSystemSleepCallback() {
	// Idle sleep is about to kick in. We never object to it.
	logrus.Debugln("received kIOMessageCanSystemSleep notification, idle sleep is about to kick in")
	C.AllowPowerChange()
}

//export systemWillSleepCallback
func systemWillSleepCallback() {
	// The system WILL go to sleep. Sleep is delayed by 30 seconds unless
	// the change is acknowledged.
	logrus.Debugln("received kIOMessageSystemWillSleep notification, system will go to sleep")

	if d := currentListener(); d != nil {
		d.onWillSleep()
	}

	C.AllowPowerChange()
}

//export systemWillPowerOnCallback
func systemWillPowerOnCallback() {
	// System has started the wake-up process...
}

//export systemHasPoweredOnCallback
func systemHasPoweredOnCallback() {
	logrus.Debugln("received kIOMessageSystemHasPoweredOn notification, system has finished waking up")

	if d := currentListener(); d != nil {
		d.onPoweredOn()
	}
}

// listenNotifications blocks while delivering sleep notifications to d.
func listenNotifications(d *Daemon) error {
	listenerMu.Lock()
	listener = d
	listenerMu.Unlock()

	// The run loop belongs to this thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	logrus.Info("registered and listening system sleep notifications")
	if int(C.ListenNotifications()) != 0 {
		return fmt.Errorf("IORegisterForSystemPower failed")
	}
	return nil
}

func stopListeningNotifications() {
	C.StopListeningNotifications()

	listenerMu.Lock()
	listener = nil
	listenerMu.Unlock()

	logrus.Info("stopped listening system sleep notifications")
}
