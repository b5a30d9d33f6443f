package pipeline

import (
	"sync"
	"time"

	"github.com/jmalenfant/reel/internal/media"
)

// NullRenderer discards blocks while tracking the last rendered position.
// It stands in wherever no presentation surface is attached, e.g. in the
// harness or for streams nobody displays.
type NullRenderer struct {
	mu        sync.Mutex
	lastBlock *media.Block
	lastPos   time.Duration
	cached    bool
}

// NewNullRenderer creates a renderer that presents nothing.
func NewNullRenderer() *NullRenderer {
	return &NullRenderer{}
}

func (r *NullRenderer) OnPlay()  {}
func (r *NullRenderer) OnPause() {}
func (r *NullRenderer) OnStop()  {}
func (r *NullRenderer) OnClose() {}

// InvalidateCache forgets the last rendered block so the next Render is
// treated as fresh.
func (r *NullRenderer) InvalidateCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = false
	r.lastBlock = nil
}

// Render records the block without presenting it.
func (r *NullRenderer) Render(block *media.Block, position time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastBlock = block
	r.lastPos = position
	r.cached = true
}

// LastPosition returns the last rendered position.
func (r *NullRenderer) LastPosition() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastPos
}

// Verify NullRenderer implements Renderer at compile time.
var _ Renderer = (*NullRenderer)(nil)
