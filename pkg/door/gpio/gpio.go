// Package gpio drives an electromagnetic door lock's relay through a
// single GPIO output line, grounded on the teacher pack's
// hardware/oled.go line-request idiom (RequestLine/SetValue/Close over
// github.com/warthog618/go-gpiocdev) and on hardware/expander.go's
// connectivity probe-on-init pattern, adapted from I2C register access
// to a GPIO output since a relay has no readable bus state to probe.
package gpio

import (
	"context"
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/host/v3"

	"github.com/doorkeeper/petdoor/internal/core"
	"github.com/doorkeeper/petdoor/internal/device"
	"github.com/doorkeeper/petdoor/internal/errutil"
)

var _ device.Door = (*Door)(nil)

// relayLockedValue is the GPIO level that keeps the electromagnet
// energized (locked). A real relay module's NO/NC wiring decides the
// polarity; this driver assumes active-high (line high = locked).
const relayLockedValue = 1

// Door actuates an electromagnetic lock relay wired to a single GPIO
// output line.
type Door struct {
	chip string
	pin  int

	mu        sync.Mutex
	line      *gpiocdev.Line
	unlocked  bool
	connected bool
	events    chan core.ConnEvent
}

// New builds a Door for the given gpiochip device and BCM line number.
func New(chip string, pin int) *Door {
	return &Door{chip: chip, pin: pin, events: make(chan core.ConnEvent, 8)}
}

// Connect requests the GPIO line, fails safe-locked, and emits
// Connected. Any open failure (missing chip, line already held by
// another process) is reported without retrying here — the wiring
// layer's connect loop in cmd/petdoor/app owns the retry cadence.
func (d *Door) Connect(ctx context.Context) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("gpio host init: %w", err)
	}

	line, err := gpiocdev.RequestLine(d.chip, d.pin, gpiocdev.AsOutput(relayLockedValue))
	if err != nil {
		if errutil.IsConnRefused(err) {
			return fmt.Errorf("request door relay line: gpiod proxy not accepting connections: %w", err)
		}
		return fmt.Errorf("request door relay line: %w", err)
	}

	d.mu.Lock()
	d.line = line
	d.unlocked = false
	d.connected = true
	d.mu.Unlock()

	d.events <- core.EventConnected
	return nil
}

func (d *Door) Disconnect() {
	d.mu.Lock()
	line := d.line
	d.line = nil
	wasConnected := d.connected
	d.connected = false
	d.mu.Unlock()

	if line != nil {
		line.Close()
	}
	if wasConnected {
		d.events <- core.EventDisconnected
	}
}

func (d *Door) Lock(ctx context.Context) error {
	d.mu.Lock()
	line := d.line
	d.mu.Unlock()
	if line == nil {
		return fmt.Errorf("door relay not connected")
	}
	if err := line.SetValue(relayLockedValue); err != nil {
		if errutil.IsNoSuchDevice(err) {
			d.Disconnect()
		}
		return fmt.Errorf("set relay locked: %w", err)
	}
	d.mu.Lock()
	d.unlocked = false
	d.mu.Unlock()
	return nil
}

func (d *Door) Unlock(ctx context.Context) error {
	d.mu.Lock()
	line := d.line
	d.mu.Unlock()
	if line == nil {
		return fmt.Errorf("door relay not connected")
	}
	if err := line.SetValue(1 - relayLockedValue); err != nil {
		if errutil.IsNoSuchDevice(err) {
			d.Disconnect()
		}
		return fmt.Errorf("set relay unlocked: %w", err)
	}
	d.mu.Lock()
	d.unlocked = true
	d.mu.Unlock()
	return nil
}

func (d *Door) IsUnlocked(ctx context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unlocked, nil
}

func (d *Door) Events() <-chan core.ConnEvent { return d.events }
