// Package multi fans a single device.Camera out over several physical
// cameras, concatenating their captured frames into one batch so the
// classifier sees every angle at once. Grounded on the original
// implementation's MultiDeviceCamera (device_camera/impl_multi.rs):
// Start/Stop/CaptureFrame fan out and concatenate the same way; Events
// is reworked from the original's poll-every-100ms goroutine into a
// select-driven fan-in, the idiom the teacher's own channel plumbing
// (pkg/pubsub) uses for combining multiple sources.
package multi

import (
	"context"
	"fmt"
	"reflect"

	"github.com/doorkeeper/petdoor/internal/core"
	"github.com/doorkeeper/petdoor/internal/device"
)

var _ device.Camera = (*Camera)(nil)

// Camera aggregates connectedness across all member cameras: the
// aggregate reports Connected only once every member has, and
// Disconnected as soon as any member has.
type Camera struct {
	cameras []device.Camera
	events  chan core.ConnEvent
	done    chan struct{}
}

// New builds a Camera fanning out over the given member cameras.
func New(cameras ...device.Camera) *Camera {
	c := &Camera{
		cameras: cameras,
		events:  make(chan core.ConnEvent, 8),
		done:    make(chan struct{}),
	}
	go c.fanIn()
	return c
}

func (c *Camera) Start(ctx context.Context) error {
	for i, cam := range c.cameras {
		if err := cam.Start(ctx); err != nil {
			return fmt.Errorf("camera %d: %w", i, err)
		}
	}
	return nil
}

func (c *Camera) Stop(ctx context.Context) error {
	var firstErr error
	for i, cam := range c.cameras {
		if err := cam.Stop(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("camera %d: %w", i, err)
		}
	}
	close(c.done)
	return firstErr
}

// CaptureFrame captures from every member camera in turn and
// concatenates their frames, preserving member order.
func (c *Camera) CaptureFrame(ctx context.Context) ([]core.Frame, error) {
	var frames []core.Frame
	for i, cam := range c.cameras {
		fs, err := cam.CaptureFrame(ctx)
		if err != nil {
			return nil, fmt.Errorf("camera %d: %w", i, err)
		}
		frames = append(frames, fs...)
	}
	return frames, nil
}

func (c *Camera) Events() <-chan core.ConnEvent { return c.events }

// fanIn tracks how many member cameras are currently connected, and
// forwards a single Connected once all of them are and a single
// Disconnected as soon as any of them drops, the same
// connected-count-across-members rule the original implementation
// uses.
func (c *Camera) fanIn() {
	connected := make([]bool, len(c.cameras))
	connectedCount := 0

	cases := make([]reflect.SelectCase, len(c.cameras)+1)
	for i, cam := range c.cameras {
		cases[i] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(cam.Events())}
	}
	cases[len(c.cameras)] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(c.done)}

	for {
		idx, value, ok := reflect.Select(cases)
		if idx == len(c.cameras) || !ok {
			return
		}
		ev := core.ConnEvent(value.Int())

		wasAllConnected := connectedCount == len(c.cameras)
		switch ev {
		case core.EventConnected:
			if !connected[idx] {
				connected[idx] = true
				connectedCount++
			}
		case core.EventDisconnected:
			if connected[idx] {
				connected[idx] = false
				connectedCount--
			}
		}

		isAllConnected := connectedCount == len(c.cameras)
		if !wasAllConnected && isAllConnected {
			c.events <- core.EventConnected
		}
		if wasAllConnected && !isAllConnected {
			c.events <- core.EventDisconnected
		}
	}
}
