// Package engine holds the shared mutable engine state: the media state
// record, the playback clock, the block-availability gate and the
// notification hub. One instance of each exists per engine; there is no
// ambient state.
package engine

import "sync"

// MediaState represents the engine-level playback state machine.
type MediaState int

const (
	StateClose MediaState = iota
	StateStop
	StatePlay
	StatePause
	StateManual
)

// String returns the state name.
func (s MediaState) String() string {
	switch s {
	case StateClose:
		return "Close"
	case StateStop:
		return "Stop"
	case StatePlay:
		return "Play"
	case StatePause:
		return "Pause"
	case StateManual:
		return "Manual"
	default:
		return "Unknown"
	}
}

// IsActive returns true if media is loaded and playback is meaningful.
func (s MediaState) IsActive() bool {
	return s == StatePlay || s == StatePause || s == StateStop
}

// Status is the single shared engine-state record. It is mutated only by
// the command scheduler's discipline; reads may come from any goroutine.
type Status struct {
	mu         sync.RWMutex
	state      MediaState
	isOpen     bool
	isSeekable bool
	hasAudio   bool
	hasVideo   bool
	canPause   bool
}

// NewStatus creates a closed status record.
func NewStatus() *Status {
	return &Status{state: StateClose}
}

// State returns the current media state.
func (s *Status) State() MediaState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState updates the media state and returns the previous one.
func (s *Status) SetState(state MediaState) MediaState {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	s.state = state
	return prev
}

// IsOpen reports whether a media source is currently open.
func (s *Status) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isOpen
}

// IsSeekable reports whether the open source supports seeking.
func (s *Status) IsSeekable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSeekable
}

// HasAudio reports whether the open source carries an audio stream.
func (s *Status) HasAudio() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasAudio
}

// HasVideo reports whether the open source carries a video stream.
func (s *Status) HasVideo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasVideo
}

// CanPause reports whether the open source allows pausing.
func (s *Status) CanPause() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canPause
}

// SetOpen records the capabilities of a newly opened source.
func (s *Status) SetOpen(seekable, hasAudio, hasVideo, canPause bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = true
	s.isSeekable = seekable
	s.hasAudio = hasAudio
	s.hasVideo = hasVideo
	s.canPause = canPause
}

// Reset returns the record to its closed defaults.
func (s *Status) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClose
	s.isOpen = false
	s.isSeekable = false
	s.hasAudio = false
	s.hasVideo = false
	s.canPause = false
}
