package command

import (
	"sync"
	"time"
)

// SeekOperation is the single-slot, coalescing seek request. Re-issuing a
// seek while one is queued replaces its position and mode in place; every
// caller waiting on the earlier request observes the updated target's
// completion.
type SeekOperation struct {
	mu       sync.Mutex
	position time.Duration
	mode     SeekMode
	outcome  *Outcome
}

func newSeekOperation(position time.Duration, mode SeekMode) *SeekOperation {
	return &SeekOperation{position: position, mode: mode, outcome: newOutcome()}
}

// Position returns the current seek target.
func (op *SeekOperation) Position() time.Duration {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.position
}

// Mode returns the current seek mode.
func (op *SeekOperation) Mode() SeekMode {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.mode
}

// Coalesce replaces the target in place, last writer wins.
func (op *SeekOperation) Coalesce(position time.Duration, mode SeekMode) {
	op.mu.Lock()
	defer op.mu.Unlock()
	op.position = position
	op.mode = mode
}

// Outcome returns the shared completion handle.
func (op *SeekOperation) Outcome() *Outcome {
	return op.outcome
}

// complete releases every waiter. Idempotent.
func (op *SeekOperation) complete(ok bool) {
	op.outcome.complete(ok)
}
