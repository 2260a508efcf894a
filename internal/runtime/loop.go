package runtime

import (
	"context"

	"github.com/doorkeeper/petdoor/internal/core"
	"github.com/doorkeeper/petdoor/internal/device"
)

// Renderer draws the controller's two status lines onto a display.
// Extracted so the loop can be tested without a real display driver.
type Renderer struct {
	Display device.Display
	Logger  device.Logger
}

// Render projects model through core.Render and writes the two lines.
// A write failure is logged but never perturbs the model or stops the
// loop (spec.md §7, "Render failure").
func (r Renderer) Render(cfg core.Config, model core.Model) {
	line0, line1 := core.Render(cfg, model)
	if err := r.Display.Clear(); err != nil {
		r.Logger.Warn("display clear failed", "error", err)
		return
	}
	if err := r.Display.WriteLine(0, line0); err != nil {
		r.Logger.Warn("display write failed", "row", 0, "error", err)
	}
	if err := r.Display.WriteLine(1, line1); err != nil {
		r.Logger.Warn("display write failed", "row", 1, "error", err)
	}
}

// Loop is the event loop of spec.md §4.3:
//
//	(model, effects) ← init()
//	spawn_all(effects)
//	forever:
//	    msg ← receive()
//	    (model, effects) ← transition(config, model, msg)
//	    render(display, model)
//	    spawn_all(effects)
//
// It owns the single current Model; nothing else reads or writes it.
type Loop struct {
	Config      core.Config
	Interpreter *Interpreter
	Renderer    Renderer
	Logger      device.Logger

	msgs chan core.Msg
}

// NewLoop wires a Loop around an already-constructed Interpreter and the
// channel it was built with.
func NewLoop(cfg core.Config, interp *Interpreter, msgs chan core.Msg, renderer Renderer, logger device.Logger) *Loop {
	return &Loop{Config: cfg, Interpreter: interp, Renderer: renderer, Logger: logger, msgs: msgs}
}

// Run drives the loop until ctx is cancelled. It returns nil on an
// orderly shutdown and a non-nil error only if the message channel is
// closed without ctx having been cancelled first (spec.md §7, "a closed
// queue implies process shutdown" — here treated as the one case that is
// NOT an orderly shutdown and therefore fatal).
func (l *Loop) Run(ctx context.Context) error {
	model, effects := core.Init()
	l.Renderer.Render(l.Config, model)
	l.Interpreter.Spawn(ctx, effects)

	for {
		select {
		case <-ctx.Done():
			l.Interpreter.Wait()
			l.Interpreter.LockOnShutdown(context.Background())
			return nil

		case msg, ok := <-l.msgs:
			if !ok {
				return errQueueClosed
			}
			model, effects = core.Transition(l.Config, model, msg)
			l.Renderer.Render(l.Config, model)
			l.Interpreter.Spawn(ctx, effects)
		}
	}
}

var errQueueClosed = loopError("message queue closed before shutdown was requested")

type loopError string

func (e loopError) Error() string { return string(e) }
