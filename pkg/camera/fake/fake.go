// Package fake provides an in-memory Camera collaborator for tests and
// for running the whole controller without hardware, grounded in the
// original Rust device_camera/impl_fake.rs collaborator named in
// spec.md §1.
package fake

import (
	"context"
	"sync"

	"github.com/doorkeeper/petdoor/internal/core"
)

// Cycle is one scripted CaptureFrame outcome: the frames returned and
// the capture error, if any. Classification results are scripted
// separately on the classifier fake.
type Cycle struct {
	Frames     []core.Frame
	CaptureErr error
}

// Camera is a scripted, in-memory Camera. CaptureFrame walks through
// Script in order, repeating the last entry once exhausted; Connect and
// Disconnect let a test simulate connectivity events synchronously.
type Camera struct {
	mu     sync.Mutex
	script []Cycle
	pos    int
	events chan core.ConnEvent
}

// New builds a Camera that will return script's frames in order on
// successive CaptureFrame calls. An empty script always returns no
// frames (treated as an empty capture by the core, per spec.md §7).
func New(script ...Cycle) *Camera {
	return &Camera{script: script, events: make(chan core.ConnEvent, 8)}
}

func (c *Camera) Start(ctx context.Context) error { return nil }
func (c *Camera) Stop(ctx context.Context) error  { return nil }

func (c *Camera) CaptureFrame(ctx context.Context) ([]core.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.script) == 0 {
		return nil, nil
	}
	cycle := c.script[c.pos]
	if c.pos < len(c.script)-1 {
		c.pos++
	}
	return cycle.Frames, cycle.CaptureErr
}

func (c *Camera) Events() <-chan core.ConnEvent { return c.events }

// Connect/Disconnect simulate a connectivity event arriving from the
// device driver. They block if the event channel's buffer is full,
// mirroring a real driver's backpressure.
func (c *Camera) Connect()    { c.events <- core.EventConnected }
func (c *Camera) Disconnect() { c.events <- core.EventDisconnected }
