package engine

import (
	"sync"
	"time"
)

const eventBufferSize = 16

// Subscription provides event channels for one subscriber. Sends are
// non-blocking: a subscriber that falls behind loses events rather than
// stalling the engine.
type Subscription struct {
	Lifecycle    <-chan LifecycleEvent
	StateChanged <-chan StateChange
	Seeking      <-chan SeekEvent
	Position     <-chan PositionChange
	Done         <-chan struct{}

	lifecycleCh chan LifecycleEvent
	stateCh     chan StateChange
	seekCh      chan SeekEvent
	positionCh  chan PositionChange
	doneCh      chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		lifecycleCh: make(chan LifecycleEvent, eventBufferSize),
		stateCh:     make(chan StateChange, eventBufferSize),
		seekCh:      make(chan SeekEvent, eventBufferSize),
		positionCh:  make(chan PositionChange, eventBufferSize),
		doneCh:      make(chan struct{}),
	}
	s.Lifecycle = s.lifecycleCh
	s.StateChanged = s.stateCh
	s.Seeking = s.seekCh
	s.Position = s.positionCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

// Hub fans notifications out to subscribers, fire-and-forget.
type Hub struct {
	mu     sync.RWMutex
	subs   []*Subscription
	closed bool
}

// NewHub creates an empty notification hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub := newSubscription()
	if h.closed {
		sub.close()
		return sub
	}
	h.subs = append(h.subs, sub)
	return sub
}

// Close releases all subscribers. Subsequent notifications are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, sub := range h.subs {
		sub.close()
	}
	h.subs = nil
}

// NotifyLifecycle emits a media lifecycle event.
func (h *Hub) NotifyLifecycle(kind LifecycleKind, err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		select {
		case sub.lifecycleCh <- LifecycleEvent{Kind: kind, Err: err}:
		default:
		}
	}
}

// NotifyState emits a state transition event.
func (h *Hub) NotifyState(previous, current MediaState) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		select {
		case sub.stateCh <- StateChange{Previous: previous, Current: current}:
		default:
		}
	}
}

// NotifySeeking emits a seeking-started or seeking-ended event.
func (h *Hub) NotifySeeking(started bool, position time.Duration) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		select {
		case sub.seekCh <- SeekEvent{Started: started, Position: position}:
		default:
		}
	}
}

// NotifyPosition emits a published-position event.
func (h *Hub) NotifyPosition(position time.Duration) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		select {
		case sub.positionCh <- PositionChange{Position: position}:
		default:
		}
	}
}
