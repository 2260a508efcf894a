// Package lcd drives a 16x2 HD44780-class character LCD through a
// PCF8574 I2C backpack, using periph.io/x/conn/v3/i2c +
// periph.io/x/host/v3 — the same bus-opening idiom the teacher pack's
// hardware/oled.go uses for its SPI display, adapted here to I2C per
// DESIGN.md's choice of periph.io over the legacy raw-ioctl i2c package
// also present in that pack.
package lcd

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/doorkeeper/petdoor/internal/device"
)

var _ device.BacklitDisplay = (*Display)(nil)

// PCF8574 bit layout driving the HD44780 in 4-bit mode.
const (
	bitRS = 1 << 0
	bitRW = 1 << 1
	bitEN = 1 << 2
	bitBL = 1 << 3
)

const (
	cmdClear       = 0x01
	cmdHome        = 0x02
	cmdEntryMode   = 0x06
	cmdDisplayOn   = 0x0c
	cmdFunctionSet = 0x28 // 4-bit, 2 lines, 5x8 font
	cmdSetDDRAM    = 0x80
	cmdSetCGRAM    = 0x40
)

var rowOffset = [2]byte{0x00, 0x40}

// Display drives an HD44780 LCD over an I2C GPIO expander backpack.
type Display struct {
	mu         sync.Mutex
	conn       i2c.Dev
	backlight  byte
	lastWrites [2]string
}

// New opens bus (e.g. "/dev/i2c-1") and initializes the display at
// addr (typically 0x27 or 0x3f for common PCF8574 backpacks).
func New(bus string, addr uint16) (*Display, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("i2c host init: %w", err)
	}

	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", bus, err)
	}

	d := &Display{
		conn:      i2c.Dev{Bus: b, Addr: addr},
		backlight: bitBL,
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Display) init() error {
	time.Sleep(50 * time.Millisecond)
	// HD44780 power-on init sequence: three blind 8-bit-mode nibbles,
	// then switch to 4-bit mode, matching every PCF8574 backpack driver.
	for _, n := range []byte{0x03, 0x03, 0x03, 0x02} {
		if err := d.writeNibble(n, 0); err != nil {
			return err
		}
	}
	for _, cmd := range []byte{cmdFunctionSet, cmdDisplayOn, cmdClear, cmdEntryMode} {
		if err := d.writeCmd(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (d *Display) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeCmd(cmdClear); err != nil {
		return err
	}
	time.Sleep(2 * time.Millisecond)
	d.lastWrites = [2]string{}
	return nil
}

// WriteLine writes text to row (0 or 1), truncating to 16 characters
// and space-padding the remainder so stale characters are overwritten.
func (d *Display) WriteLine(row int, text string) error {
	if row != 0 && row != 1 {
		return fmt.Errorf("lcd: row must be 0 or 1, got %d", row)
	}
	if len(text) > 16 {
		text = text[:16]
	}
	for len(text) < 16 {
		text += " "
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.writeCmd(cmdSetDDRAM | rowOffset[row]); err != nil {
		return err
	}
	for i := 0; i < len(text); i++ {
		if err := d.writeData(text[i]); err != nil {
			return err
		}
	}
	d.lastWrites[row] = text
	return nil
}

func (d *Display) SetBacklight(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if on {
		d.backlight = bitBL
	} else {
		d.backlight = 0
	}
	// Re-strobe enable with no data so the backlight bit latches alone.
	return d.pulse(d.backlight)
}

func (d *Display) SetCursor(row, col int) error {
	if row != 0 && row != 1 {
		return fmt.Errorf("lcd: row must be 0 or 1, got %d", row)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeCmd(cmdSetDDRAM | (rowOffset[row] + byte(col)))
}

// CreateChar loads one of the HD44780's 8 custom character slots
// (0-7) with an 8-row 5-bit pattern.
func (d *Display) CreateChar(slot int, pattern [8]byte) error {
	if slot < 0 || slot > 7 {
		return fmt.Errorf("lcd: slot must be 0-7, got %d", slot)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeCmd(cmdSetCGRAM | byte(slot<<3)); err != nil {
		return err
	}
	for _, row := range pattern {
		if err := d.writeData(row & 0x1f); err != nil {
			return err
		}
	}
	return nil
}

func (d *Display) writeCmd(cmd byte) error {
	if err := d.writeNibble(cmd>>4, 0); err != nil {
		return err
	}
	return d.writeNibble(cmd&0x0f, 0)
}

func (d *Display) writeData(b byte) error {
	if err := d.writeNibble(b>>4, bitRS); err != nil {
		return err
	}
	return d.writeNibble(b&0x0f, bitRS)
}

func (d *Display) writeNibble(nibble byte, flags byte) error {
	value := (nibble << 4) | flags | d.backlight
	return d.pulse(value)
}

// pulse drives EN high then low around the already-settled data lines,
// latching whatever value is currently on the expander's output port.
func (d *Display) pulse(value byte) error {
	if err := d.conn.Tx([]byte{value}, nil); err != nil {
		return fmt.Errorf("lcd: write: %w", err)
	}
	if err := d.conn.Tx([]byte{value | bitEN}, nil); err != nil {
		return fmt.Errorf("lcd: strobe enable: %w", err)
	}
	time.Sleep(time.Microsecond)
	if err := d.conn.Tx([]byte{value &^ bitEN}, nil); err != nil {
		return fmt.Errorf("lcd: clear enable: %w", err)
	}
	time.Sleep(50 * time.Microsecond)
	return nil
}
