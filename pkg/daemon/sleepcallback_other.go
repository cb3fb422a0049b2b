//go:build !darwin

package daemon

import "errors"

func listenNotifications(_ *Daemon) error {
	return errors.New("system sleep notifications are only available on macOS")
}

func stopListeningNotifications() {}
