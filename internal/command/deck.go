package command

import (
	"sync"

	"github.com/jmalenfant/reel/internal/buffer"
	"github.com/jmalenfant/reel/internal/engine"
	"github.com/jmalenfant/reel/internal/media"
	"github.com/jmalenfant/reel/internal/pipeline"
)

// Deck bundles everything a command body touches: the engine state record,
// the playback clock, the notification hub, the block-availability gate and
// the per-media collaborators. Collaborators are swapped only inside direct
// command bodies; the lock protects readers on other goroutines.
type Deck struct {
	Status    *engine.Status
	Clock     *engine.Clock
	Hub       *engine.Hub
	BlockGate *engine.Gate

	mu                 sync.RWMutex
	container          pipeline.Container
	workers            pipeline.Workers
	buffers            map[media.StreamType]*buffer.BlockBuffer
	renderers          map[media.StreamType]pipeline.Renderer
	mainStream         media.StreamType
	subtitlesPreloaded bool
}

// NewDeck creates an empty deck with the block gate open.
func NewDeck() *Deck {
	return &Deck{
		Status:    engine.NewStatus(),
		Clock:     engine.NewClock(),
		Hub:       engine.NewHub(),
		BlockGate: engine.NewGate(true),
	}
}

// Container returns the open container, or nil.
func (d *Deck) Container() pipeline.Container {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.container
}

// Workers returns the active worker set, or nil.
func (d *Deck) Workers() pipeline.Workers {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.workers
}

// Buffers returns the per-stream block buffers.
func (d *Deck) Buffers() map[media.StreamType]*buffer.BlockBuffer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buffers
}

// Renderers returns the per-stream renderers.
func (d *Deck) Renderers() map[media.StreamType]pipeline.Renderer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.renderers
}

// MainStream returns the seekable component's stream type.
func (d *Deck) MainStream() media.StreamType {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mainStream
}

// MainBuffer returns the seekable component's buffer, or nil when closed.
func (d *Deck) MainBuffer() *buffer.BlockBuffer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.buffers == nil {
		return nil
	}
	return d.buffers[d.mainStream]
}

// SubtitlesPreloaded reports whether subtitle blocks were loaded from an
// external side file and must survive seek-time buffer clears.
func (d *Deck) SubtitlesPreloaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.subtitlesPreloaded
}

// SetSubtitlesPreloaded marks the subtitle buffer as externally preloaded.
func (d *Deck) SetSubtitlesPreloaded(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subtitlesPreloaded = v
}

// SetMedia installs the collaborators of a newly opened source.
func (d *Deck) SetMedia(container pipeline.Container, buffers map[media.StreamType]*buffer.BlockBuffer, renderers map[media.StreamType]pipeline.Renderer, mainStream media.StreamType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.container = container
	d.buffers = buffers
	d.renderers = renderers
	d.mainStream = mainStream
}

// SetWorkers installs the worker set for the open media.
func (d *Deck) SetWorkers(w pipeline.Workers) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.workers = w
}

// SetComponents replaces the buffers and renderers after a component-set
// change, leaving container and workers in place.
func (d *Deck) SetComponents(buffers map[media.StreamType]*buffer.BlockBuffer, renderers map[media.StreamType]pipeline.Renderer, mainStream media.StreamType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buffers = buffers
	d.renderers = renderers
	d.mainStream = mainStream
}

// ClearMedia drops every collaborator reference.
func (d *Deck) ClearMedia() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.container = nil
	d.workers = nil
	d.buffers = nil
	d.renderers = nil
	d.mainStream = media.StreamNone
	d.subtitlesPreloaded = false
}
