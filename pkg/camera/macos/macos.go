// Package macos drives a Mac's built-in or USB webcam through ffmpeg's
// avfoundation input, for developing and demoing the controller away
// from Raspberry Pi hardware. Adapted from the teacher's continuous
// mpegts-streaming ffmpeg wrapper into a one-shot single-JPEG capture
// matching device.Camera's CaptureFrame contract (spec.md §5).
package macos

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/doorkeeper/petdoor/internal/core"
	"github.com/doorkeeper/petdoor/internal/device"
)

var _ device.Camera = (*Camera)(nil)

// Camera captures one JPEG frame per CaptureFrame call from an
// avfoundation device index (e.g. "0" for the built-in FaceTime camera).
type Camera struct {
	logger   device.Logger
	deviceID string
	width    int
	height   int

	mu        sync.Mutex
	connected bool
	events    chan core.ConnEvent
}

// New builds a Camera against the given avfoundation device index.
func New(logger device.Logger, deviceID string, width, height int) *Camera {
	return &Camera{
		logger:   logger.With("macos_camera"),
		deviceID: deviceID,
		width:    width,
		height:   height,
		events:   make(chan core.ConnEvent, 8),
	}
}

// Start probes device availability by listing avfoundation inputs.
func (c *Camera) Start(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-f", "avfoundation", "-list_devices", "true", "-i", "")
	out, err := cmd.CombinedOutput()
	// ffmpeg always exits non-zero for -list_devices; only the absence
	// of any AVFoundation video section indicates no camera at all.
	if !strings.Contains(string(out), "AVFoundation video devices") {
		c.setConnected(false)
		return fmt.Errorf("no avfoundation camera devices found: %w", err)
	}
	c.setConnected(true)
	return nil
}

func (c *Camera) Stop(ctx context.Context) error {
	c.setConnected(false)
	return nil
}

// CaptureFrame grabs a single frame via ffmpeg's image2pipe muxer.
func (c *Camera) CaptureFrame(ctx context.Context) ([]core.Frame, error) {
	var stdout bytes.Buffer

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-f", "avfoundation",
		"-pixel_format", "uyvy422",
		"-video_size", fmt.Sprintf("%dx%d", c.width, c.height),
		"-i", c.deviceID,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-",
	)
	cmd.Env = append(os.Environ(), "AVFOUNDATION_SKIP_AUTHENTICATION=1")
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		c.logger.Warn("capture failed", "error", err)
		if strings.Contains(err.Error(), "exit status") {
			c.setConnected(false)
		}
		return nil, fmt.Errorf("ffmpeg capture failed: %w", err)
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
