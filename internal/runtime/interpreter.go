// Package runtime is the effect interpreter and event loop: the
// concurrent shell around the pure internal/core transition function. It
// turns core.Effect descriptors into real device calls and turns device
// callbacks/completions back into core.Msg values on a shared channel,
// following spec.md §4.2/§4.3 and the same goroutine-per-subsystem
// wiring the teacher's app.Run()/SnapshotHandler use.
package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/doorkeeper/petdoor/internal/core"
	"github.com/doorkeeper/petdoor/internal/device"
)

// Devices bundles the capability collaborators the interpreter drives.
type Devices struct {
	Camera     device.Camera
	Door       device.Door
	Classifier device.Classifier
	Clock      device.Clock
	Logger     device.Logger
}

// Interpreter executes core.Effect values against Devices, each on its
// own goroutine, and feeds every resulting core.Msg onto a shared
// channel. The event loop (loop.go) is the queue's sole consumer.
type Interpreter struct {
	devices  Devices
	msgs     chan core.Msg
	tickRate time.Duration

	wg sync.WaitGroup
}

// NewInterpreter builds an Interpreter that delivers messages onto msgs.
// msgs should be buffered generously enough that a burst of device
// events never blocks a driver goroutine indefinitely; the event loop is
// the only consumer (spec.md §4.2, "single multi-producer
// single-consumer channel"). tickRate is Config.TickRate, the only piece
// of config the interpreter itself needs (SubscribeTick's sleep
// interval); the core never sees it directly.
func NewInterpreter(devices Devices, msgs chan core.Msg, tickRate time.Duration) *Interpreter {
	return &Interpreter{devices: devices, msgs: msgs, tickRate: tickRate}
}

// Spawn launches one goroutine per effect. It returns immediately;
// effects run concurrently and report completion asynchronously via
// msgs. Spawn never blocks the event loop that calls it.
func (in *Interpreter) Spawn(ctx context.Context, effects []core.Effect) {
	for _, e := range effects {
		effect := e
		in.wg.Add(1)
		go func() {
			defer in.wg.Done()
			in.run(ctx, effect)
		}()
	}
}

// Wait blocks until every effect goroutine spawned so far (including the
// long-lived subscriptions) has returned. Used only during shutdown.
func (in *Interpreter) Wait() { in.wg.Wait() }

func (in *Interpreter) run(ctx context.Context, e core.Effect) {
	switch e.Kind {
	case core.EffectSubscribeCamera:
		in.subscribeCamera(ctx)
	case core.EffectSubscribeDoor:
		in.subscribeDoor(ctx)
	case core.EffectSubscribeTick:
		in.subscribeTick(ctx)
	case core.EffectCaptureFrames:
		in.captureFrames(ctx)
	case core.EffectClassifyFrames:
		in.classifyFrames(ctx, e.Frames)
	case core.EffectLockDoor:
		in.lockDoor(ctx)
	case core.EffectUnlockDoor:
		in.unlockDoor(ctx)
	}
}

func (in *Interpreter) send(ctx context.Context, msg core.Msg) {
	select {
	case in.msgs <- msg:
	case <-ctx.Done():
	}
}

// subscribeCamera forwards every camera connection event for the process
// lifetime. The camera driver itself owns reconnection; this goroutine
// only relays whatever it emits (spec.md §4.2).
func (in *Interpreter) subscribeCamera(ctx context.Context) {
	events := in.devices.Camera.Events()
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			in.send(ctx, core.CameraEvent(e))
		case <-ctx.Done():
			return
		}
	}
}

func (in *Interpreter) subscribeDoor(ctx context.Context) {
	events := in.devices.Door.Events()
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			in.send(ctx, core.DoorEvent(e))
		case <-ctx.Done():
			return
		}
	}
}

// subscribeTick sleeps tick_rate, enqueues Tick(now()), repeats, for the
// process lifetime (spec.md §4.2). tick_rate is the interval passed to
// NewInterpreter; the instant stamped on each Tick comes from
// Devices.Clock.
func (in *Interpreter) subscribeTick(ctx context.Context) {
	ticker := time.NewTicker(in.tickRate)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			in.send(ctx, core.Tick(in.devices.Clock.Now()))
		case <-ctx.Done():
			return
		}
	}
}

func (in *Interpreter) captureFrames(ctx context.Context) {
	frames, err := in.devices.Camera.CaptureFrame(ctx)
	in.send(ctx, core.FramesCaptureDone(frames, err))
}

func (in *Interpreter) classifyFrames(ctx context.Context, frames []core.Frame) {
	cs, err := in.devices.Classifier.Classify(ctx, frames)
	in.send(ctx, core.FramesClassifyDone(cs, err))
}

func (in *Interpreter) lockDoor(ctx context.Context) {
	err := in.devices.Door.Lock(ctx)
	if err != nil {
		in.devices.Logger.Warn("lock door failed", "error", err)
	}
	in.send(ctx, core.DoorLockDone(err))
}

func (in *Interpreter) unlockDoor(ctx context.Context) {
	err := in.devices.Door.Unlock(ctx)
	if err != nil {
		in.devices.Logger.Warn("unlock door failed", "error", err)
	}
	in.send(ctx, core.DoorUnlockDone(err))
}

// LockOnShutdown engages the door lock directly, bypassing the msgs
// channel: it runs after the event loop has already stopped consuming,
// as the fail-safe of last resort whenever the controller is shutting
// down (spec.md §7, "fail safe-locked"). ctx must not be the loop's own
// (already-cancelled) context.
func (in *Interpreter) LockOnShutdown(ctx context.Context) {
	if err := in.devices.Door.Lock(ctx); err != nil {
		in.devices.Logger.Warn("shutdown lock door failed", "error", err)
	}
}
