// Package fake provides an in-memory Classifier collaborator, grounded
// in the original Rust image_classifier/impl_fake.rs collaborator named
// in spec.md §1.
package fake

import (
	"context"
	"sync"

	"github.com/doorkeeper/petdoor/internal/core"
)

// Result is one scripted Classify outcome.
type Result struct {
	Classifications [][]core.Classification
	Err             error
}

// Classifier returns Script's results in order on successive Classify
// calls, repeating the last entry once exhausted.
type Classifier struct {
	mu     sync.Mutex
	script []Result
	pos    int
	calls  [][]core.Frame
}

// New builds a Classifier that ignores its input frames and returns
// script's results in order.
func New(script ...Result) *Classifier {
	return &Classifier{script: script}
}

func (c *Classifier) Classify(ctx context.Context, frames []core.Frame) ([][]core.Classification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, frames)
	if len(c.script) == 0 {
		return nil, nil
	}
	r := c.script[c.pos]
	if c.pos < len(c.script)-1 {
		c.pos++
	}
	return r.Classifications, r.Err
}

// Calls returns the frame batches passed to Classify so far, in order.
func (c *Classifier) Calls() [][]core.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]core.Frame, len(c.calls))
	copy(out, c.calls)
	return out
}
