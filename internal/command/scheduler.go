package command

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jmalenfant/reel/internal/engine"
	"github.com/jmalenfant/reel/internal/media"
	"github.com/jmalenfant/reel/internal/pipeline"
)

// Options tunes the scheduler and supplies the factories used when a
// source is opened. Zero values fall back to sensible defaults.
type Options struct {
	// CycleInterval is the period of the scheduler's execution cycle.
	CycleInterval time.Duration
	// ClosePollInterval bounds the close-interrupt busy poll.
	ClosePollInterval time.Duration
	// WorkerInterval is the cycle period of the default worker set.
	WorkerInterval time.Duration

	// BufferCapacity returns the block capacity for a stream type.
	BufferCapacity func(media.StreamType) int
	// NewWorkers builds the worker set for freshly opened media. The
	// returned set must start paused.
	NewWorkers func(*Deck) pipeline.Workers
	// NewRenderer builds the renderer for a stream type.
	NewRenderer func(media.StreamType) pipeline.Renderer

	Logger *logrus.Logger
}

// Default buffer capacities, sized to absorb jitter without excessive
// memory: roughly two seconds of video, 2.5s of audio.
const (
	defaultVideoCapacity    = 60
	defaultAudioCapacity    = 120
	defaultSubtitleCapacity = 30
)

func (o *Options) withDefaults() {
	if o.CycleInterval <= 0 {
		o.CycleInterval = 15 * time.Millisecond
	}
	if o.ClosePollInterval <= 0 {
		o.ClosePollInterval = 15 * time.Millisecond
	}
	if o.WorkerInterval <= 0 {
		o.WorkerInterval = 10 * time.Millisecond
	}
	if o.BufferCapacity == nil {
		o.BufferCapacity = func(st media.StreamType) int {
			switch st {
			case media.StreamAudio:
				return defaultAudioCapacity
			case media.StreamSubtitle:
				return defaultSubtitleCapacity
			default:
				return defaultVideoCapacity
			}
		}
	}
	if o.NewRenderer == nil {
		o.NewRenderer = func(media.StreamType) pipeline.Renderer {
			return pipeline.NewNullRenderer()
		}
	}
	if o.Logger == nil {
		o.Logger = logrus.New()
		o.Logger.SetOutput(io.Discard)
	}
}

// Snapshot is the pending-command state reported to the status hook on
// every flag mutation.
type Snapshot struct {
	PendingDirect   DirectKind
	PendingPriority PriorityKind
	CloseInterrupt  bool
	Seeking         bool
}

// Scheduler accepts and serializes the engine's commands against the
// decode/render pipeline. All pending-command state lives behind one
// exclusive section held only long enough to validate admission and flip
// flags; command bodies run outside it.
type Scheduler struct {
	log  *logrus.Entry
	deck *Deck
	opts Options

	// execMu serializes command bodies: the cycle's priority/seek work,
	// direct bodies and the dispose-time force close all hold it, so only
	// one command ever pauses, mutates and resumes the worker set.
	execMu sync.Mutex

	mu              sync.Mutex
	pendingDirect   DirectKind
	pendingPriority PriorityKind
	priorityOutcome *Outcome
	directCompleted bool
	closeInterrupt  bool
	queuedSeek      *SeekOperation
	seeking         bool
	resumeAfterSeek bool
	openingSource   pipeline.Source
	onStatus        func(Snapshot)
	disposing       bool
	disposed        bool

	cycleDone chan struct{}
	cycleBusy atomic.Bool
	wg        sync.WaitGroup
}

// NewScheduler creates a scheduler bound to the deck and starts its
// execution cycle.
func NewScheduler(deck *Deck, opts Options) *Scheduler {
	opts.withDefaults()
	s := &Scheduler{
		log:             opts.Logger.WithField("component", "scheduler"),
		deck:            deck,
		opts:            opts,
		directCompleted: true,
		cycleDone:       make(chan struct{}),
	}
	if s.opts.NewWorkers == nil {
		s.opts.NewWorkers = func(d *Deck) pipeline.Workers {
			return pipeline.NewWorkerSet(opts.Logger, d.Container(), d.Buffers(), d.Renderers(), d.Clock, opts.WorkerInterval)
		}
	}
	go s.cycleLoop()
	return s
}

// OnStatus installs the hook invoked on every pending-flag mutation.
func (s *Scheduler) OnStatus(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStatus = fn
}

func (s *Scheduler) reportStatusLocked() {
	if s.onStatus == nil {
		return
	}
	s.onStatus(Snapshot{
		PendingDirect:   s.pendingDirect,
		PendingPriority: s.pendingPriority,
		CloseInterrupt:  s.closeInterrupt,
		Seeking:         s.seeking,
	})
}

// Open starts opening the given source. Rejected while disposed, while any
// direct command is pending, while a close-interrupt is pending, or while
// media is already open.
func (s *Scheduler) Open(src pipeline.Source) *Outcome {
	s.mu.Lock()
	if s.disposed || s.disposing ||
		s.pendingDirect != DirectNone || s.closeInterrupt ||
		s.deck.Status.IsOpen() {
		s.mu.Unlock()
		return failedOutcome()
	}
	s.pendingDirect = DirectOpen
	s.directCompleted = false
	s.openingSource = src
	o := newOutcome()
	s.reportStatusLocked()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"cmd": "open", "id": o.id, "source": src.String()}).Debug("command accepted")
	s.deck.Clock.Pause()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runDirect(DirectOpen, o, func() error { return s.openBody(src) })
	}()
	return o
}

// Close starts closing the open media. If a different direct command is
// mid-flight, Close does not queue behind it: it raises the
// close-interrupt flag, aborts in-flight reads and takes over as soon as
// the competing command reports completion.
func (s *Scheduler) Close() *Outcome {
	s.mu.Lock()
	if s.disposed || s.disposing || s.closeInterrupt || s.pendingDirect == DirectClose {
		s.mu.Unlock()
		return failedOutcome()
	}
	if s.pendingDirect != DirectNone {
		// Interrupt path: preempt the in-flight Open/Change.
		s.closeInterrupt = true
		o := newOutcome()
		src := s.openingSource
		s.reportStatusLocked()
		s.mu.Unlock()

		s.log.WithFields(logrus.Fields{"cmd": "close", "id": o.id}).Debug("close interrupt raised")
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runCloseInterrupt(o, src)
		}()
		return o
	}
	if !s.deck.Status.IsOpen() {
		s.mu.Unlock()
		return failedOutcome()
	}
	s.pendingDirect = DirectClose
	s.directCompleted = false
	o := newOutcome()
	s.reportStatusLocked()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"cmd": "close", "id": o.id}).Debug("command accepted")
	s.deck.Clock.Pause()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runDirect(DirectClose, o, s.closeBody)
	}()
	return o
}

// Change re-initializes the component set of the open media, re-establishing
// the playback position afterwards.
func (s *Scheduler) Change() *Outcome {
	s.mu.Lock()
	if s.disposed || s.disposing ||
		s.pendingDirect != DirectNone || s.closeInterrupt ||
		!s.deck.Status.IsOpen() {
		s.mu.Unlock()
		return failedOutcome()
	}
	s.pendingDirect = DirectChange
	s.directCompleted = false
	o := newOutcome()
	s.reportStatusLocked()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"cmd": "change", "id": o.id}).Debug("command accepted")
	s.deck.Clock.Pause()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runDirect(DirectChange, o, s.changeBody)
	}()
	return o
}

// Play requests playback. Serviced by the next scheduler cycle.
func (s *Scheduler) Play() *Outcome { return s.priority(PriorityPlay) }

// Pause requests a pause. Serviced by the next scheduler cycle.
func (s *Scheduler) Pause() *Outcome { return s.priority(PriorityPause) }

// Stop requests a stop, seeking back to the beginning of the stream.
func (s *Scheduler) Stop() *Outcome { return s.priority(PriorityStop) }

func (s *Scheduler) priority(kind PriorityKind) *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || s.disposing || !s.deck.Status.IsOpen() ||
		s.pendingDirect != DirectNone || s.pendingPriority != PriorityNone {
		return failedOutcome()
	}
	s.pendingPriority = kind
	o := newOutcome()
	s.priorityOutcome = o
	s.reportStatusLocked()
	s.log.WithFields(logrus.Fields{"cmd": kind.String(), "id": o.id}).Debug("command queued")
	return o
}

// Seek queues a seek to the target position, coalescing into the queued
// operation when one exists (last writer wins).
func (s *Scheduler) Seek(target time.Duration) *Outcome {
	return s.seek(target, SeekNormal)
}

// StepForward queues a seek to the next buffered block.
func (s *Scheduler) StepForward() *Outcome {
	return s.seek(0, SeekStepForward)
}

// StepBackward queues a seek to the previous buffered block.
func (s *Scheduler) StepBackward() *Outcome {
	return s.seek(0, SeekStepBackward)
}

func (s *Scheduler) seek(target time.Duration, mode SeekMode) *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || s.disposing ||
		!s.deck.Status.IsOpen() || !s.deck.Status.IsSeekable() ||
		s.pendingDirect != DirectNone || s.pendingPriority != PriorityNone {
		return failedOutcome()
	}
	if s.queuedSeek != nil {
		s.queuedSeek.Coalesce(target, mode)
		return s.queuedSeek.Outcome()
	}
	s.queuedSeek = newSeekOperation(target, mode)
	s.log.WithFields(logrus.Fields{"cmd": "seek", "mode": mode.String(), "target": target}).Debug("seek queued")
	return s.queuedSeek.Outcome()
}

// clearPriorityAndSeeks drains the priority slot and the queued seek,
// releasing their waiters with a failed result and reopening the block
// gate so nobody deadlocks.
func (s *Scheduler) clearPriorityAndSeeks() {
	s.mu.Lock()
	po := s.priorityOutcome
	s.priorityOutcome = nil
	s.pendingPriority = PriorityNone
	op := s.queuedSeek
	s.queuedSeek = nil
	s.seeking = false
	s.resumeAfterSeek = false
	s.reportStatusLocked()
	s.mu.Unlock()

	if po != nil {
		po.complete(false)
	}
	if op != nil {
		op.complete(false)
	}
	s.deck.BlockGate.Open()
}

// Dispose shuts the scheduler down: stops the cycle, waits out in-flight
// commands, force-closes any open media and releases every waiter. Safe to
// call more than once.
func (s *Scheduler) Dispose() {
	s.mu.Lock()
	if s.disposed || s.disposing {
		s.mu.Unlock()
		return
	}
	s.disposing = true
	src := s.openingSource
	s.mu.Unlock()

	close(s.cycleDone)

	// Abort any stalled reads so in-flight commands can finish.
	if c := s.deck.Container(); c != nil {
		c.SignalAbortReads(true)
	} else if a, ok := src.(interface{ SignalAbortReads(bool) }); ok && a != nil {
		a.SignalAbortReads(true)
	}
	s.wg.Wait()

	// The cycle goroutine may still be mid-body; wait it out before the
	// force close so a draining seek cannot republish over the reset clock.
	s.execMu.Lock()
	defer s.execMu.Unlock()

	// Force-close media; by definition there is nothing to escalate to.
	if s.deck.Status.IsOpen() || s.deck.Container() != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.WithField("panic", r).Error("close during dispose panicked")
				}
			}()
			if err := s.closeBody(); err != nil {
				s.log.WithError(err).Error("close during dispose failed")
			}
		}()
		prev := s.deck.Status.State()
		s.deck.Status.Reset()
		s.deck.Hub.NotifyState(prev, s.deck.Status.State())
		s.deck.Hub.NotifyLifecycle(engine.MediaClosed, nil)
	}

	s.clearPriorityAndSeeks()
	s.deck.BlockGate.Open()

	s.mu.Lock()
	s.disposed = true
	s.reportStatusLocked()
	s.mu.Unlock()

	s.deck.Hub.Close()
}
