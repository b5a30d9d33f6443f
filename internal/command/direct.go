package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmalenfant/reel/internal/buffer"
	"github.com/jmalenfant/reel/internal/engine"
	"github.com/jmalenfant/reel/internal/media"
	"github.com/jmalenfant/reel/internal/pipeline"
)

// ErrNoStreams is returned when an opened container exposes nothing
// decodable.
var ErrNoStreams = errors.New("no decodable streams")

// runDirect executes a direct command body with the workers quiesced and
// the priority/seek queues drained. Admission happens before the cycle
// goroutine yields, so runDirect first waits out any priority or seek body
// still executing there. The pending flag is cleared and the completed flag
// raised in a guaranteed-run block so a panicking body can never lock the
// scheduler permanently.
func (s *Scheduler) runDirect(kind DirectKind, o *Outcome, body func() error) {
	s.execMu.Lock()
	defer s.execMu.Unlock()

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s command panicked: %v", kind, r)
			}
		}()
		if w := s.deck.Workers(); w != nil {
			w.PauseAll()
		}
		s.clearPriorityAndSeeks()
		err = body()
	}()

	ok := err == nil
	func() {
		defer func() {
			if r := recover(); r != nil {
				ok = false
				s.log.WithField("panic", r).Error("post-processing panicked")
			}
		}()
		s.postProcess(kind, err)
	}()

	s.mu.Lock()
	s.pendingDirect = DirectNone
	s.directCompleted = true
	s.reportStatusLocked()
	s.mu.Unlock()

	if ok && s.deck.Status.IsOpen() {
		if w := s.deck.Workers(); w != nil {
			w.ResumeAll()
		}
	}
	o.complete(ok)
}

// runCloseInterrupt preempts an in-flight direct command: it aborts reads,
// polls until the competing command reports completion, then runs the
// close body directly.
func (s *Scheduler) runCloseInterrupt(o *Outcome, src pipeline.Source) {
	if c := s.deck.Container(); c != nil {
		c.SignalAbortReads(true)
	} else if a, ok := src.(interface{ SignalAbortReads(bool) }); ok && a != nil {
		a.SignalAbortReads(true)
	}

	for {
		s.mu.Lock()
		done := s.directCompleted
		s.mu.Unlock()
		if done {
			break
		}
		time.Sleep(s.opts.ClosePollInterval)
	}

	s.mu.Lock()
	s.pendingDirect = DirectClose
	s.directCompleted = false
	s.reportStatusLocked()
	s.mu.Unlock()

	s.deck.Clock.Pause()
	s.runDirect(DirectClose, o, s.closeBody)

	s.mu.Lock()
	s.closeInterrupt = false
	s.reportStatusLocked()
	s.mu.Unlock()
}

func (s *Scheduler) postProcess(kind DirectKind, err error) {
	d := s.deck
	switch kind {
	case DirectOpen:
		if err == nil {
			prev := d.Status.SetState(engine.StatePause)
			d.Hub.NotifyState(prev, engine.StatePause)
			d.Hub.NotifyLifecycle(engine.MediaOpened, nil)
			return
		}
		s.log.WithError(err).Error("open failed")
		d.Hub.NotifyLifecycle(engine.MediaFailed, err)
		// Leave the engine closed after a failed open.
		if cerr := s.closeBody(); cerr != nil {
			s.log.WithError(cerr).Warn("cleanup after failed open")
		}
		prev := d.Status.State()
		d.Status.Reset()
		d.Hub.NotifyState(prev, engine.StateClose)
		d.Hub.NotifyLifecycle(engine.MediaClosed, nil)

	case DirectClose:
		if err != nil {
			s.log.WithError(err).Error("close failed")
			d.Hub.NotifyLifecycle(engine.MediaFailed, err)
		}
		prev := d.Status.State()
		d.Status.Reset()
		d.Hub.NotifyState(prev, engine.StateClose)
		d.Hub.NotifyLifecycle(engine.MediaClosed, nil)

	case DirectChange:
		if err == nil {
			d.Hub.NotifyLifecycle(engine.MediaChanged, nil)
			// A change made while playing resumes the clock.
			if d.Status.State() == engine.StatePlay {
				d.Clock.Play()
			}
			return
		}
		s.log.WithError(err).Error("change failed")
		d.Hub.NotifyLifecycle(engine.MediaFailed, err)
		// Leave the engine paused after a failed change.
		prev := d.Status.SetState(engine.StatePause)
		d.Hub.NotifyState(prev, engine.StatePause)
	}
}

func (s *Scheduler) buildComponents(container pipeline.Container) (map[media.StreamType]*buffer.BlockBuffer, map[media.StreamType]pipeline.Renderer, media.StreamType, error) {
	streams := container.Streams()
	if len(streams) == 0 {
		return nil, nil, media.StreamNone, ErrNoStreams
	}

	buffers := make(map[media.StreamType]*buffer.BlockBuffer, len(streams))
	renderers := make(map[media.StreamType]pipeline.Renderer, len(streams))
	for _, st := range streams {
		buffers[st] = buffer.New(st, s.opts.BufferCapacity(st))
		renderers[st] = s.opts.NewRenderer(st)
	}

	// The seekable component is video when present, audio otherwise.
	main := media.StreamNone
	for _, st := range media.StreamTypes {
		if _, ok := buffers[st]; ok {
			main = st
			break
		}
	}
	return buffers, renderers, main, nil
}

func (s *Scheduler) openBody(src pipeline.Source) error {
	d := s.deck
	d.Hub.NotifyLifecycle(engine.MediaOpening, nil)

	container, err := src.OpenContainer()
	s.mu.Lock()
	s.openingSource = nil
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("open %s: %w", src.String(), err)
	}

	buffers, renderers, main, err := s.buildComponents(container)
	if err != nil {
		_ = container.Close()
		return fmt.Errorf("open %s: %w", src.String(), err)
	}

	_, hasAudio := buffers[media.StreamAudio]
	_, hasVideo := buffers[media.StreamVideo]
	d.SetMedia(container, buffers, renderers, main)
	d.Status.SetOpen(container.IsStreamSeekable(), hasAudio, hasVideo, container.CanPause())
	d.SetWorkers(s.opts.NewWorkers(d))
	d.Clock.Reset()
	d.BlockGate.Open()
	return nil
}

func (s *Scheduler) closeBody() error {
	d := s.deck
	if c := d.Container(); c != nil {
		c.SignalAbortReads(true)
	}
	if w := d.Workers(); w != nil {
		w.Dispose()
	}
	for _, r := range d.Renderers() {
		r.OnClose()
	}
	var err error
	if c := d.Container(); c != nil {
		if cerr := c.Close(); cerr != nil {
			err = fmt.Errorf("close container: %w", cerr)
		}
	}
	d.ClearMedia()
	d.Clock.Reset()
	d.BlockGate.Open()
	return err
}

func (s *Scheduler) changeBody() error {
	d := s.deck
	d.Hub.NotifyLifecycle(engine.MediaChanging, nil)

	container := d.Container()
	if container == nil {
		return errors.New("change: no open media")
	}

	buffers, renderers, main, err := s.buildComponents(container)
	if err != nil {
		return fmt.Errorf("change: %w", err)
	}
	// The worker set holds references to the old components; rebuild it.
	if w := d.Workers(); w != nil {
		w.Dispose()
	}
	d.SetComponents(buffers, renderers, main)
	d.SetWorkers(s.opts.NewWorkers(d))
	container.ClearQueuedPackets(true)

	// Re-establish the playback position through a normal-mode seek.
	op := newSeekOperation(d.Clock.Position(), SeekNormal)
	s.executeSeek(op)
	return nil
}
