// Package fake provides an in-memory Door collaborator that records
// every Lock/Unlock call, grounded in the original Rust
// device_door/impl_fake.rs collaborator named in spec.md §1.
package fake

import (
	"context"
	"sync"
	"time"

	"github.com/doorkeeper/petdoor/internal/core"
)

// Call records one Lock or Unlock invocation.
type Call struct {
	Unlock bool
	At     time.Time
}

// Door is a scripted, in-memory Door. LockErr/UnlockErr, if set, are
// returned from every Lock/Unlock call until cleared, letting a test
// exercise the retry-on-next-tick policy (spec.md §4.1).
type Door struct {
	mu        sync.Mutex
	unlocked  bool
	LockErr   error
	UnlockErr error
	calls     []Call
	events    chan core.ConnEvent
	now       func() time.Time
}

// New builds a Door that starts locked (power applied), matching the
// fail-safe default a real electromagnet must be wired for.
func New() *Door {
	return &Door{events: make(chan core.ConnEvent, 8), now: time.Now}
}

func (d *Door) Lock(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Call{Unlock: false, At: d.now()})
	if d.LockErr != nil {
		return d.LockErr
	}
	d.unlocked = false
	return nil
}

func (d *Door) Unlock(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Call{Unlock: true, At: d.now()})
	if d.UnlockErr != nil {
		return d.UnlockErr
	}
	d.unlocked = true
	return nil
}

func (d *Door) IsUnlocked(ctx context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unlocked, nil
}

func (d *Door) Events() <-chan core.ConnEvent { return d.events }

func (d *Door) Connect()    { d.events <- core.EventConnected }
func (d *Door) Disconnect() { d.events <- core.EventDisconnected }

// Calls returns every Lock/Unlock invocation so far, in order.
func (d *Door) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}
