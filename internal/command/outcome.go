// Package command implements the engine's command scheduler and seek
// algorithm: admission control for open/close/change, play/pause/stop and
// seek requests, their serialization against the background workers, and
// the block-buffer search used to satisfy a seek.
package command

import (
	"sync"

	"github.com/google/uuid"
)

// Outcome is the handle returned by every public command. It resolves
// exactly once to a boolean success flag.
type Outcome struct {
	id   uuid.UUID
	done chan struct{}
	once sync.Once
	ok   bool
}

func newOutcome() *Outcome {
	return &Outcome{id: uuid.New(), done: make(chan struct{})}
}

func failedOutcome() *Outcome {
	o := newOutcome()
	o.complete(false)
	return o
}

func (o *Outcome) complete(ok bool) {
	o.once.Do(func() {
		o.ok = ok
		close(o.done)
	})
}

// ID returns the correlation ID used in log entries.
func (o *Outcome) ID() uuid.UUID { return o.id }

// Done returns a channel closed once the command has resolved.
func (o *Outcome) Done() <-chan struct{} { return o.done }

// Wait blocks until the command resolves and returns its success flag.
func (o *Outcome) Wait() bool {
	<-o.done
	return o.ok
}

// OK returns the success flag; valid only after Done is closed.
func (o *Outcome) OK() bool {
	select {
	case <-o.done:
		return o.ok
	default:
		return false
	}
}
