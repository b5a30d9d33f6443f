package engine

import (
	"sync"
	"time"
)

// Clock is the monotonic playback position, independent of buffer content.
// While running, the position advances with wall time from the last set
// offset.
type Clock struct {
	mu        sync.Mutex
	offset    time.Duration
	startedAt time.Time
	running   bool
}

// NewClock creates a stopped clock at position zero.
func NewClock() *Clock {
	return &Clock{}
}

// Position returns the current playback position.
func (c *Clock) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return c.offset
	}
	return c.offset + time.Since(c.startedAt)
}

// IsRunning reports whether the clock is advancing.
func (c *Clock) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Play starts the clock from its current position. Idempotent.
func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.startedAt = time.Now()
	c.running = true
}

// Pause freezes the clock at its current position. Idempotent.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.offset += time.Since(c.startedAt)
	c.running = false
}

// SetPosition publishes a new playback position without altering the
// running state.
func (c *Clock) SetPosition(t time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = t
	c.startedAt = time.Now()
}

// Reset stops the clock and returns it to zero.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = 0
	c.running = false
}
