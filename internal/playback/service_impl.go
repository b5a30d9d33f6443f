package playback

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jmalenfant/reel/internal/command"
	"github.com/jmalenfant/reel/internal/config"
	"github.com/jmalenfant/reel/internal/engine"
	"github.com/jmalenfant/reel/internal/media"
	"github.com/jmalenfant/reel/internal/pipeline"
)

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	deck        *command.Deck
	scheduler   *command.Scheduler
	gateTimeout time.Duration
}

// New creates a playback service from the given configuration. A nil
// config uses the defaults; a nil logger keeps the engine silent.
func New(cfg *config.Config, log *logrus.Logger) Service {
	if cfg == nil {
		cfg = config.Default()
	}

	deck := command.NewDeck()
	opts := command.Options{
		CycleInterval:     time.Duration(cfg.CycleIntervalMs) * time.Millisecond,
		ClosePollInterval: time.Duration(cfg.ClosePollIntervalMs) * time.Millisecond,
		WorkerInterval:    time.Duration(cfg.WorkerIntervalMs) * time.Millisecond,
		BufferCapacity: func(st media.StreamType) int {
			switch st {
			case media.StreamAudio:
				return cfg.AudioBufferCapacity
			case media.StreamSubtitle:
				return cfg.SubtitleBufferCapacity
			default:
				return cfg.VideoBufferCapacity
			}
		},
		Logger: log,
	}

	return &serviceImpl{
		deck:        deck,
		scheduler:   command.NewScheduler(deck, opts),
		gateTimeout: time.Duration(cfg.PositionTimeoutMs) * time.Millisecond,
	}
}

func (s *serviceImpl) Open(src pipeline.Source) *command.Outcome { return s.scheduler.Open(src) }
func (s *serviceImpl) Close() *command.Outcome                   { return s.scheduler.Close() }
func (s *serviceImpl) Change() *command.Outcome                  { return s.scheduler.Change() }
func (s *serviceImpl) Play() *command.Outcome                    { return s.scheduler.Play() }
func (s *serviceImpl) Pause() *command.Outcome                   { return s.scheduler.Pause() }
func (s *serviceImpl) Stop() *command.Outcome                    { return s.scheduler.Stop() }

func (s *serviceImpl) SeekTo(position time.Duration) *command.Outcome {
	return s.scheduler.Seek(position)
}

func (s *serviceImpl) StepForward() *command.Outcome  { return s.scheduler.StepForward() }
func (s *serviceImpl) StepBackward() *command.Outcome { return s.scheduler.StepBackward() }

func (s *serviceImpl) State() engine.MediaState { return s.deck.Status.State() }
func (s *serviceImpl) IsOpen() bool             { return s.deck.Status.IsOpen() }
func (s *serviceImpl) IsSeekable() bool         { return s.deck.Status.IsSeekable() }
func (s *serviceImpl) HasAudio() bool           { return s.deck.Status.HasAudio() }
func (s *serviceImpl) HasVideo() bool           { return s.deck.Status.HasVideo() }

// Position waits for the block gate before reading the clock so a caller
// never observes a position the buffers cannot yet serve.
func (s *serviceImpl) Position() time.Duration {
	s.deck.BlockGate.Wait(s.gateTimeout)
	return s.deck.Clock.Position()
}

func (s *serviceImpl) BufferedRange() (time.Duration, time.Duration) {
	main := s.deck.MainBuffer()
	if main == nil {
		return 0, 0
	}
	return main.RangeStartTime(), main.RangeEndTime()
}

func (s *serviceImpl) Subscribe() *engine.Subscription {
	return s.deck.Hub.Subscribe()
}

func (s *serviceImpl) Dispose() {
	s.scheduler.Dispose()
}
