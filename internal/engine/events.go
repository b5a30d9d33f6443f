package engine

import "time"

// LifecycleKind tags a media lifecycle notification.
type LifecycleKind int

const (
	MediaOpening LifecycleKind = iota
	MediaOpened
	MediaChanging
	MediaChanged
	MediaFailed
	MediaClosed
)

// String returns the lifecycle kind name.
func (k LifecycleKind) String() string {
	switch k {
	case MediaOpening:
		return "Opening"
	case MediaOpened:
		return "Opened"
	case MediaChanging:
		return "Changing"
	case MediaChanged:
		return "Changed"
	case MediaFailed:
		return "Failed"
	case MediaClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// LifecycleEvent is emitted around open/change/close commands. Err is set
// only for MediaFailed.
type LifecycleEvent struct {
	Kind LifecycleKind
	Err  error
}

// StateChange is emitted when the media state transitions.
type StateChange struct {
	Previous MediaState
	Current  MediaState
}

// SeekEvent is emitted when a seeking session starts (Started=true) and
// when it ends (Started=false, Position holds the published position).
type SeekEvent struct {
	Started  bool
	Position time.Duration
}

// PositionChange is emitted when the playback position is published by a
// command rather than by the clock advancing.
type PositionChange struct {
	Position time.Duration
}
