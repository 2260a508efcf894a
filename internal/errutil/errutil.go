// Package errutil classifies a small number of well-known OS-level
// failures that concrete device drivers need to distinguish from
// generic I/O errors, extending the teacher's IsConnRefused with the
// device-bus failures a camera/door/display adapter actually sees
// (spec.md §7, "Device unavailable").
package errutil

import (
	"errors"
	"net"
	"os"
	"syscall"
)

// IsNoSuchDevice reports whether err indicates the underlying device
// node or bus address is absent (ENODEV/ENXIO, or a plain "file does
// not exist" from exec/os.Open on a device path). Drivers treat this as
// a Disconnected event rather than a transient failure.
func IsNoSuchDevice(err error) bool {
	if errors.Is(err, os.ErrNotExist) {
		return true
	}
	return errors.Is(err, syscall.ENODEV) || errors.Is(err, syscall.ENXIO)
}

// IsDeviceBusy reports whether err indicates the device exists but is
// held by another process (EBUSY) — e.g. a second camera process
// started against the same CSI connector. Drivers treat this as a
// transient failure, not a disconnect.
func IsDeviceBusy(err error) bool {
	return errors.Is(err, syscall.EBUSY)
}

// IsConnRefused reports whether err is a TCP/Unix dial refusal. Kept
// for adapters that do talk to a local daemon socket (e.g. an I2C or
// GPIO proxy in a development container); the controller itself makes
// no outbound network connections (spec.md §1, Non-goals).
func IsConnRefused(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" && errors.Is(err, syscall.ECONNREFUSED) {
			return true
		}
	}
	return false
}
