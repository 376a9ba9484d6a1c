//go:build linux

// Package sdnotify tells systemd when watch mode is up.
package sdnotify

import "github.com/coreos/go-systemd/v22/daemon"

// Ready sends READY=1 to the systemd notify socket. Best-effort: outside a
// Type=notify unit there is no socket and this is a no-op.
func Ready() {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
}

// Stopping sends STOPPING=1 so systemd stops the watchdog while we shut down.
func Stopping() {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
}
