// Package pipeline defines the contracts of the decode/render collaborators
// the command core drives: the container, the background worker set and the
// per-stream renderers. It also ships a synthetic in-process implementation
// used by the harness and the end-to-end tests.
package pipeline

import (
	"time"

	"github.com/jmalenfant/reel/internal/media"
)

// Source is anything that can be opened into a container.
type Source interface {
	OpenContainer() (Container, error)
	String() string
}

// Container is the demux/decode side of an open media source. All methods
// are called with the read/decode workers quiesced except Read and
// ReceiveNextFrame, which the workers themselves drive.
type Container interface {
	// Streams lists the stream types present in the source.
	Streams() []media.StreamType
	// IsStreamSeekable reports whether physical seeks are supported.
	IsStreamSeekable() bool
	// CanPause reports whether the source allows pausing (false for some
	// live sources).
	CanPause() bool
	// Duration returns the total stream duration, or 0 when unknown.
	Duration() time.Duration

	// Seek moves the physical read position and returns the first decodable
	// frame at or after the target, or nil when none could be produced.
	Seek(position time.Duration) *media.Frame
	// Read pulls the next raw packet and returns the stream it fed, or
	// StreamNone at end of stream or when reads are aborted.
	Read() media.StreamType
	// ReceiveNextFrame returns the next already-decoded frame queued for
	// the stream, or nil when the decode queue is empty.
	ReceiveNextFrame(stream media.StreamType) *media.Frame
	// ClearQueuedPackets drops undecoded packets; flushBuffers also drops
	// decoded frames waiting in the decode queues.
	ClearQueuedPackets(flushBuffers bool)
	// SignalAbortReads makes in-flight and subsequent Read calls return
	// StreamNone until the flag is lowered.
	SignalAbortReads(flag bool)

	// Close releases the container.
	Close() error
}

// Workers is the set of background read/decode/render threads. All calls
// are synchronous and idempotent.
type Workers interface {
	// PauseAll parks every worker at its next cycle boundary and returns
	// once all are parked.
	PauseAll()
	// PauseReadDecode parks only the read and decode workers.
	PauseReadDecode()
	// ResumeAll releases every worker.
	ResumeAll()
	// ResumePaused releases only workers parked by a previous pause call.
	ResumePaused()
	// Dispose stops the workers permanently and waits for them to exit.
	Dispose()
}

// Renderer presents decoded blocks for one stream type.
type Renderer interface {
	OnPlay()
	OnPause()
	OnStop()
	OnClose()
	// InvalidateCache discards any cached presentation state so the next
	// Render recomputes from the block.
	InvalidateCache()
	// Render presents the block covering the given position.
	Render(block *media.Block, position time.Duration)
}
