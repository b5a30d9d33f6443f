// Package playback is the engine's public surface: it wires the command
// scheduler, the shared deck and the configuration together behind a
// single Service.
package playback

import (
	"time"

	"github.com/jmalenfant/reel/internal/command"
	"github.com/jmalenfant/reel/internal/engine"
	"github.com/jmalenfant/reel/internal/pipeline"
)

// Service is the playback engine contract. Every command returns a handle
// that resolves to a boolean success flag; nothing here raises.
type Service interface {
	// Direct commands (mutate the open component set)
	Open(src pipeline.Source) *command.Outcome
	Close() *command.Outcome
	Change() *command.Outcome

	// Priority commands (playback state)
	Play() *command.Outcome
	Pause() *command.Outcome
	Stop() *command.Outcome

	// Seek commands (coalescing)
	SeekTo(position time.Duration) *command.Outcome
	StepForward() *command.Outcome
	StepBackward() *command.Outcome

	// State queries
	State() engine.MediaState
	IsOpen() bool
	IsSeekable() bool
	HasAudio() bool
	HasVideo() bool
	// Position blocks on the block-availability gate (bounded by the
	// configured timeout) so mid-seek reads see a consistent position.
	Position() time.Duration
	// BufferedRange returns the time span covered by the main buffer.
	BufferedRange() (start, end time.Duration)

	// Event subscription
	Subscribe() *engine.Subscription

	// Lifecycle
	Dispose()
}
