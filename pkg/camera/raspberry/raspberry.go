// Package raspberry drives the CSI camera on a Raspberry Pi through
// rpicam-still, adapted from the teacher's rpicam-vid continuous-stream
// process supervisor into a one-shot capture-on-demand device.Camera:
// the control kernel asks for a single still frame per CaptureFrames
// effect (spec.md §5), it never wants a continuous recording.
package raspberry

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/doorkeeper/petdoor/internal/core"
	"github.com/doorkeeper/petdoor/internal/device"
	"github.com/doorkeeper/petdoor/internal/errutil"
)

var _ device.Camera = (*Camera)(nil)

// Camera captures one JPEG still per CaptureFrame call by shelling out
// to rpicam-still, the same subprocess-supervision idiom the teacher's
// rpicam-vid wrapper uses, minus the long-running process lifecycle.
type Camera struct {
	logger device.Logger
	width  int
	height int

	mu        sync.Mutex
	connected bool
	events    chan core.ConnEvent
}

// New builds a Camera targeting the Pi's default CSI connector.
func New(logger device.Logger, width, height int) *Camera {
	return &Camera{
		logger: logger.With("rpi_camera"),
		width:  width,
		height: height,
		events: make(chan core.ConnEvent, 8),
	}
}

// Start probes that the camera is present by listing attached sensors;
// rpicam-still exits non-zero with "no cameras available" when the CSI
// ribbon is unplugged or the sensor isn't detected.
func (c *Camera) Start(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "rpicam-still", "--list-cameras")
	if err := cmd.Run(); err != nil {
		c.setConnected(false)
		return fmt.Errorf("rpicam-still probe failed: %w", err)
	}
	c.setConnected(true)
	return nil
}

func (c *Camera) Stop(ctx context.Context) error {
	c.setConnected(false)
	return nil
}

// CaptureFrame runs one rpicam-still invocation and returns its JPEG
// output as a single-element frame batch.
func (c *Camera) CaptureFrame(ctx context.Context) ([]core.Frame, error) {
	var stdout bytes.Buffer

	cmd := exec.CommandContext(ctx, "rpicam-still",
		"--width", fmt.Sprintf("%d", c.width),
		"--height", fmt.Sprintf("%d", c.height),
		"--timeout", "1",
		"--nopreview",
		"--encoding", "jpg",
		"--output", "-",
	)
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		// A busy sensor is a transient failure and leaves the camera
		// connected; only a missing device counts as a disconnect.
		if errutil.IsNoSuchDevice(err) && !errutil.IsDeviceBusy(err) {
			c.setConnected(false)
		}
		c.logger.Warn("capture failed", "error", err)
		return nil, fmt.Errorf("rpicam-still capture failed: %w", err)
	}
	return []core.Frame{core.Frame(stdout.Bytes())}, nil
}

func (c *Camera) Events() <-chan core.ConnEvent { return c.events }

func (c *Camera) setConnected(connected bool) {
	c.mu.Lock()
	changed := c.connected != connected
	c.connected = connected
	c.mu.Unlock()

	if !changed {
		return
	}
	if connected {
		c.events <- core.EventConnected
	} else {
		c.events <- core.EventDisconnected
	}
}
