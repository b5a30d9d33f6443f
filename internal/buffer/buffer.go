// Package buffer implements the bounded, time-ordered cache of decoded
// content blocks kept per stream type.
package buffer

import (
	"sort"
	"sync"
	"time"

	"github.com/jmalenfant/reel/internal/media"
)

// BlockBuffer holds up to Capacity blocks for one stream, ordered by start
// time and non-overlapping. A full buffer evicts its oldest block before
// admitting a new one.
type BlockBuffer struct {
	mu       sync.RWMutex
	stream   media.StreamType
	capacity int
	blocks   []*media.Block
	seq      int
}

// New creates an empty buffer for the given stream type.
func New(stream media.StreamType, capacity int) *BlockBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &BlockBuffer{
		stream:   stream,
		capacity: capacity,
		blocks:   make([]*media.Block, 0, capacity),
	}
}

// Stream returns the stream type this buffer serves.
func (b *BlockBuffer) Stream() media.StreamType { return b.stream }

// Capacity returns the fixed block capacity.
func (b *BlockBuffer) Capacity() int { return b.capacity }

// Count returns the number of buffered blocks.
func (b *BlockBuffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.blocks)
}

// IsFull reports whether the buffer is at capacity.
func (b *BlockBuffer) IsFull() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.blocks) >= b.capacity
}

// Add materializes the frame into a block, evicting the oldest block first
// when the buffer is full. Returns the new block, or nil if the frame does
// not belong to this buffer's stream.
func (b *BlockBuffer) Add(frame *media.Frame) *media.Block {
	if frame == nil || frame.Stream != b.stream {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	block := &media.Block{
		Stream:         frame.Stream,
		StartTime:      frame.StartTime,
		EndTime:        frame.EndTime(),
		Duration:       frame.Duration,
		SequenceNumber: b.seq,
	}

	// The newer decode supersedes any block whose span intersects it.
	// Adjacent blocks sharing a boundary instant do not intersect.
	kept := b.blocks[:0]
	for _, existing := range b.blocks {
		if existing.StartTime < block.EndTime && existing.EndTime > block.StartTime {
			continue
		}
		kept = append(kept, existing)
	}
	if len(kept) >= b.capacity {
		kept = kept[1:]
	}

	b.blocks = append(kept, block)
	sort.SliceStable(b.blocks, func(i, j int) bool {
		return b.blocks[i].StartTime < b.blocks[j].StartTime
	})
	return block
}

// Clear removes all blocks.
func (b *BlockBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocks = b.blocks[:0]
}

// RangeStartTime returns the start time of the oldest block, or 0 when empty.
func (b *BlockBuffer) RangeStartTime() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.blocks) == 0 {
		return 0
	}
	return b.blocks[0].StartTime
}

// RangeEndTime returns the end time of the newest block, or 0 when empty.
func (b *BlockBuffer) RangeEndTime() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.blocks) == 0 {
		return 0
	}
	return b.blocks[len(b.blocks)-1].EndTime
}

// RangeDuration returns the time span currently covered.
func (b *BlockBuffer) RangeDuration() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.blocks) == 0 {
		return 0
	}
	return b.blocks[len(b.blocks)-1].EndTime - b.blocks[0].StartTime
}

// IsInRange reports whether t is covered by the buffered blocks.
func (b *BlockBuffer) IsInRange(t time.Duration) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.blocks) == 0 {
		return false
	}
	return t >= b.blocks[0].StartTime && t <= b.blocks[len(b.blocks)-1].EndTime
}

// AverageBlockDuration returns the mean duration of the buffered blocks.
func (b *BlockBuffer) AverageBlockDuration() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.blocks) == 0 {
		return 0
	}
	var total time.Duration
	for _, blk := range b.blocks {
		total += blk.Duration
	}
	return total / time.Duration(len(b.blocks))
}

// IsMonotonic reports whether every buffered block has the same duration,
// which is the signature of a live or growing source.
func (b *BlockBuffer) IsMonotonic() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.blocks) < 2 {
		return false
	}
	d := b.blocks[0].Duration
	for _, blk := range b.blocks[1:] {
		if blk.Duration != d {
			return false
		}
	}
	return true
}

// MonotonicDuration returns the uniform block duration of a monotonic
// buffer, or 0 when the buffer is not monotonic.
func (b *BlockBuffer) MonotonicDuration() time.Duration {
	if !b.IsMonotonic() {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.blocks[0].Duration
}

// Neighbors returns the blocks time-adjacent to t: the latest block ending
// at or before t, the earliest block starting after t, and the block
// containing t. Any of the three may be nil. Block spans are end-inclusive,
// so a block ending exactly at t is both prev and, absent a later match,
// current; prev must not be skipped in that case or a backward step from a
// block boundary would jump two blocks.
func (b *BlockBuffer) Neighbors(t time.Duration) (prev, next, current *media.Block) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, blk := range b.blocks {
		if blk.Contains(t) {
			current = blk
		}
		if blk.EndTime <= t {
			prev = blk
		}
		if blk.StartTime > t && next == nil {
			next = blk
		}
	}
	return prev, next, current
}

// SnapPosition returns the start time of the block containing t, or t
// itself when no block covers it.
func (b *BlockBuffer) SnapPosition(t time.Duration) time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, blk := range b.blocks {
		if blk.Contains(t) {
			return blk.StartTime
		}
	}
	return t
}
