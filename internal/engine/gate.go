package engine

import (
	"sync"
	"time"
)

// Gate is a manual-reset binary signal. Waiters block while the gate is
// closed and are all released when it opens. It backs both the
// block-availability gate and the worker pause gates.
type Gate struct {
	mu   sync.Mutex
	ch   chan struct{}
	open bool
}

// NewGate creates a gate in the given initial position.
func NewGate(open bool) *Gate {
	g := &Gate{open: open, ch: make(chan struct{})}
	if open {
		close(g.ch)
	}
	return g
}

// Open releases all current and future waiters. Idempotent.
func (g *Gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return
	}
	g.open = true
	close(g.ch)
}

// Close arms the gate so subsequent waiters block. Idempotent.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return
	}
	g.open = false
	g.ch = make(chan struct{})
}

// IsOpen reports the current position.
func (g *Gate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// WaitCh returns a channel that is closed while the gate is open. The
// channel is only valid until the gate closes again; loops should re-fetch
// it on every iteration.
func (g *Gate) WaitCh() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ch
}

// Wait blocks until the gate opens or the timeout elapses. Returns true if
// the gate opened. A timeout <= 0 waits indefinitely.
func (g *Gate) Wait(timeout time.Duration) bool {
	ch := g.WaitCh()
	if timeout <= 0 {
		<-ch
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}
