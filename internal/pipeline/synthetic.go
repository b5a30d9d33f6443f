package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmalenfant/reel/internal/media"
)

// ErrOpenAborted is returned by a stalled synthetic open once reads are
// aborted.
var ErrOpenAborted = errors.New("open aborted")

// SyntheticSource is a deterministic in-process media source producing
// fixed-cadence frames for a configurable stream set. It backs the
// enginesim harness and the end-to-end tests.
type SyntheticSource struct {
	Name          string
	Streams       []media.StreamType
	FrameDuration time.Duration
	TotalDuration time.Duration
	Seekable      bool
	Pausable      bool

	// StallOpen makes OpenContainer block until SignalAbortReads(true) is
	// called, simulating a stalled network source.
	StallOpen bool

	mu      sync.Mutex
	abort   chan struct{}
	aborted bool
}

// NewSyntheticSource returns a seekable, pausable audio+video source with
// the given frame cadence and total length.
func NewSyntheticSource(frameDuration, totalDuration time.Duration) *SyntheticSource {
	return &SyntheticSource{
		Name:          "synthetic",
		Streams:       []media.StreamType{media.StreamVideo, media.StreamAudio},
		FrameDuration: frameDuration,
		TotalDuration: totalDuration,
		Seekable:      true,
		Pausable:      true,
		abort:         make(chan struct{}),
	}
}

// String returns the source name.
func (s *SyntheticSource) String() string {
	if s.Name == "" {
		return "synthetic"
	}
	return s.Name
}

// SignalAbortReads unblocks a stalled OpenContainer call.
func (s *SyntheticSource) SignalAbortReads(flag bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if flag && !s.aborted {
		s.aborted = true
		if s.abort != nil {
			close(s.abort)
		}
	}
}

// OpenContainer opens the source into a synthetic container.
func (s *SyntheticSource) OpenContainer() (Container, error) {
	if s.StallOpen {
		s.mu.Lock()
		if s.abort == nil {
			s.abort = make(chan struct{})
		}
		ch := s.abort
		s.mu.Unlock()
		<-ch
		return nil, fmt.Errorf("open %s: %w", s.String(), ErrOpenAborted)
	}
	if s.FrameDuration <= 0 {
		return nil, fmt.Errorf("open %s: frame duration must be positive", s.String())
	}
	return newSyntheticContainer(s), nil
}

// SyntheticContainer serves deterministic frames and records every call so
// tests can assert on pipeline interactions, in the same spirit as a
// recording mock.
type SyntheticContainer struct {
	mu sync.Mutex

	streams       []media.StreamType
	frameDuration time.Duration
	totalDuration time.Duration
	seekable      bool
	pausable      bool

	cursors map[media.StreamType]time.Duration
	queues  map[media.StreamType][]*media.Frame
	aborted bool
	closed  bool

	seekCalls  []time.Duration
	readCalls  int
	clearCalls int
}

func newSyntheticContainer(s *SyntheticSource) *SyntheticContainer {
	c := &SyntheticContainer{
		streams:       append([]media.StreamType(nil), s.Streams...),
		frameDuration: s.FrameDuration,
		totalDuration: s.TotalDuration,
		seekable:      s.Seekable,
		pausable:      s.Pausable,
		cursors:       make(map[media.StreamType]time.Duration),
		queues:        make(map[media.StreamType][]*media.Frame),
	}
	for _, st := range c.streams {
		c.cursors[st] = 0
	}
	return c
}

// Streams lists the stream types present in the source.
func (c *SyntheticContainer) Streams() []media.StreamType {
	return append([]media.StreamType(nil), c.streams...)
}

// IsStreamSeekable reports whether physical seeks are supported.
func (c *SyntheticContainer) IsStreamSeekable() bool { return c.seekable }

// CanPause reports whether the source allows pausing.
func (c *SyntheticContainer) CanPause() bool { return c.pausable }

// Duration returns the total stream duration.
func (c *SyntheticContainer) Duration() time.Duration { return c.totalDuration }

func (c *SyntheticContainer) mainStream() media.StreamType {
	for _, st := range media.StreamTypes {
		for _, have := range c.streams {
			if st == have {
				return st
			}
		}
	}
	return media.StreamNone
}

func (c *SyntheticContainer) alignLocked(position time.Duration) time.Duration {
	if position < 0 {
		return 0
	}
	if c.totalDuration > 0 && position >= c.totalDuration {
		position = c.totalDuration - c.frameDuration
		if position < 0 {
			position = 0
		}
	}
	return position - position%c.frameDuration
}

// Seek moves every stream cursor to the frame boundary at or before the
// target and returns the first frame of the main stream.
func (c *SyntheticContainer) Seek(position time.Duration) *media.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seekCalls = append(c.seekCalls, position)
	if c.closed || !c.seekable {
		return nil
	}

	aligned := c.alignLocked(position)
	main := c.mainStream()
	if main == media.StreamNone {
		return nil
	}
	for _, st := range c.streams {
		c.cursors[st] = aligned
	}
	c.cursors[main] = aligned + c.frameDuration
	return &media.Frame{Stream: main, StartTime: aligned, Duration: c.frameDuration}
}

// Read produces the next packet for the least-advanced stream and queues
// its decoded frame. Returns StreamNone at end of stream or when aborted.
func (c *SyntheticContainer) Read() media.StreamType {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.readCalls++
	if c.closed || c.aborted {
		return media.StreamNone
	}

	picked := media.StreamNone
	var best time.Duration
	for _, st := range c.streams {
		cur := c.cursors[st]
		if c.totalDuration > 0 && cur >= c.totalDuration {
			continue
		}
		if picked == media.StreamNone || cur < best {
			picked = st
			best = cur
		}
	}
	if picked == media.StreamNone {
		return media.StreamNone
	}

	c.queues[picked] = append(c.queues[picked], &media.Frame{
		Stream:    picked,
		StartTime: best,
		Duration:  c.frameDuration,
	})
	c.cursors[picked] = best + c.frameDuration
	return picked
}

// ReceiveNextFrame pops the next decoded frame queued for the stream.
func (c *SyntheticContainer) ReceiveNextFrame(stream media.StreamType) *media.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := c.queues[stream]
	if len(q) == 0 {
		return nil
	}
	f := q[0]
	c.queues[stream] = q[1:]
	return f
}

// ClearQueuedPackets drops pending packets; flushBuffers also drops the
// decoded frame queues.
func (c *SyntheticContainer) ClearQueuedPackets(flushBuffers bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearCalls++
	if flushBuffers {
		for st := range c.queues {
			c.queues[st] = nil
		}
	}
}

// SignalAbortReads raises or lowers the read abort flag.
func (c *SyntheticContainer) SignalAbortReads(flag bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aborted = flag
}

// Close releases the container.
func (c *SyntheticContainer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Test helpers

// SeekCalls returns the physical seek targets received so far.
func (c *SyntheticContainer) SeekCalls() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.seekCalls...)
}

// ReadCalls returns the number of Read invocations.
func (c *SyntheticContainer) ReadCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readCalls
}

// ClearCalls returns the number of ClearQueuedPackets invocations.
func (c *SyntheticContainer) ClearCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearCalls
}

// Verify SyntheticContainer implements Container at compile time.
var _ Container = (*SyntheticContainer)(nil)

// Verify SyntheticSource implements Source at compile time.
var _ Source = (*SyntheticSource)(nil)
