package command

import (
	"time"

	"github.com/jmalenfant/reel/internal/engine"
	"github.com/jmalenfant/reel/internal/media"
)

// cycleLoop drives the scheduler's periodic execution cycle. The cycle
// body never overlaps its own next invocation.
func (s *Scheduler) cycleLoop() {
	ticker := time.NewTicker(s.opts.CycleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.cycleDone:
			return
		case <-ticker.C:
			s.runCycle()
		}
	}
}

func (s *Scheduler) runCycle() {
	if !s.cycleBusy.CompareAndSwap(false, true) {
		return
	}
	defer s.cycleBusy.Store(false)

	s.execMu.Lock()
	defer s.execMu.Unlock()

	s.mu.Lock()
	if s.disposed || s.disposing || s.pendingDirect != DirectNone {
		s.mu.Unlock()
		return
	}
	kind := s.pendingPriority
	po := s.priorityOutcome
	s.mu.Unlock()

	if kind != PriorityNone {
		s.servicePriority(kind, po)
		return
	}
	s.serviceSeeks()
}

// servicePriority runs the pending priority command with the workers
// paused. Priority commands always flush any queued seek before running.
func (s *Scheduler) servicePriority(kind PriorityKind, po *Outcome) {
	w := s.deck.Workers()
	if w != nil {
		w.PauseAll()
	}

	// Flush any queued seek before the body runs; priority is strictly
	// higher than seeking.
	s.mu.Lock()
	op := s.queuedSeek
	s.queuedSeek = nil
	wasSeeking := s.seeking
	s.seeking = false
	s.resumeAfterSeek = false
	s.reportStatusLocked()
	s.mu.Unlock()
	if op != nil {
		op.complete(false)
	}
	s.deck.BlockGate.Open()
	if wasSeeking {
		s.deck.Hub.NotifySeeking(false, s.deck.Clock.Position())
	}

	ok := s.runPriorityBody(kind)

	s.mu.Lock()
	s.pendingPriority = PriorityNone
	s.priorityOutcome = nil
	s.reportStatusLocked()
	s.mu.Unlock()

	if po != nil {
		po.complete(ok)
	}
	if w != nil {
		w.ResumeAll()
	}
}

func (s *Scheduler) runPriorityBody(kind PriorityKind) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			s.log.WithField("panic", r).Errorf("%s command panicked", kind)
		}
	}()

	d := s.deck
	switch kind {
	case PriorityPlay:
		for _, r := range d.Renderers() {
			r.OnPlay()
		}
		prev := d.Status.SetState(engine.StatePlay)
		d.Hub.NotifyState(prev, engine.StatePlay)
		d.Clock.Play()
		return true

	case PriorityPause:
		if !d.Status.CanPause() {
			return false
		}
		d.Clock.Pause()
		for _, r := range d.Renderers() {
			r.OnPause()
		}
		if main := d.MainBuffer(); main != nil {
			d.Clock.SetPosition(main.SnapPosition(d.Clock.Position()))
		}
		prev := d.Status.SetState(engine.StatePause)
		d.Hub.NotifyState(prev, engine.StatePause)
		return true

	case PriorityStop:
		if !d.Status.IsSeekable() {
			return false
		}
		d.Clock.Reset()
		s.executeSeek(newSeekOperation(media.SeekToStart, SeekStopMode))
		for _, r := range d.Renderers() {
			r.OnStop()
		}
		prev := d.Status.SetState(engine.StateStop)
		d.Hub.NotifyState(prev, engine.StateStop)
		return true
	}
	return false
}

// serviceSeeks runs the queued seek operation, or winds down the seeking
// session once the queue stays empty.
func (s *Scheduler) serviceSeeks() {
	s.mu.Lock()
	op := s.queuedSeek
	if op == nil {
		if !s.seeking {
			s.mu.Unlock()
			return
		}
		// Session over: no more queued targets.
		s.seeking = false
		resume := s.resumeAfterSeek
		s.resumeAfterSeek = false
		s.reportStatusLocked()
		s.mu.Unlock()

		s.deck.Hub.NotifySeeking(false, s.deck.Clock.Position())
		if w := s.deck.Workers(); w != nil {
			w.ResumePaused()
		}
		if resume && s.deck.Status.State() == engine.StatePlay {
			s.deck.Clock.Play()
		}
		return
	}

	s.queuedSeek = nil
	first := !s.seeking
	s.seeking = true
	if first {
		s.resumeAfterSeek = s.deck.Clock.IsRunning()
	}
	s.reportStatusLocked()
	s.mu.Unlock()

	if first {
		s.deck.Hub.NotifySeeking(true, op.Position())
		s.deck.Clock.Pause()
	}
	s.executeSeek(op)
}
