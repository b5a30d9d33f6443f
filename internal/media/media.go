// Package media defines the content units that flow through the engine:
// frames handed over by the container and blocks held by the buffers.
package media

import (
	"math"
	"time"
)

// SeekToStart is the sentinel target for a Stop-mode seek, meaning
// "beginning of stream" before the first block's real start time is known.
const SeekToStart = time.Duration(math.MinInt64)

// StreamType identifies a content stream inside an open container.
// The key space is closed; buffers and renderers are keyed by it.
type StreamType int

const (
	StreamNone StreamType = iota
	StreamAudio
	StreamVideo
	StreamSubtitle
)

// StreamTypes lists the real stream types, in render priority order.
var StreamTypes = []StreamType{StreamVideo, StreamAudio, StreamSubtitle}

// String returns the stream type name.
func (t StreamType) String() string {
	switch t {
	case StreamNone:
		return "None"
	case StreamAudio:
		return "Audio"
	case StreamVideo:
		return "Video"
	case StreamSubtitle:
		return "Subtitle"
	default:
		return "Unknown"
	}
}

// Frame is a decoded content unit as produced by the container, before it is
// materialized into a buffered block.
type Frame struct {
	Stream    StreamType
	StartTime time.Duration
	Duration  time.Duration
}

// EndTime returns the first instant past the frame's content.
func (f *Frame) EndTime() time.Duration {
	return f.StartTime + f.Duration
}

// Block is a materialized decoded content unit held by a block buffer.
type Block struct {
	Stream         StreamType
	StartTime      time.Duration
	EndTime        time.Duration
	Duration       time.Duration
	SequenceNumber int
}

// Contains reports whether t falls inside the block's time span.
func (b *Block) Contains(t time.Duration) bool {
	return t >= b.StartTime && t <= b.EndTime
}
