package command

import (
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/jmalenfant/reel/internal/buffer"
	"github.com/jmalenfant/reel/internal/media"
)

// stepFallback is the step offset used when the buffer cannot supply an
// average block duration.
const stepFallback = 500 * time.Millisecond

// executeSeek materializes the correct content block set for the
// operation's target. Fast path: the main buffer already covers the target
// and no pipeline work happens. Slow path: the read/decode workers are
// paused, the container seeks (with skew compensation for monotonic
// buffers) and the buffers refill until they can answer the target.
// Whatever happens, the block gate reopens, renderer caches are
// invalidated and the operation's waiters are released.
func (s *Scheduler) executeSeek(op *SeekOperation) {
	d := s.deck
	result := true
	defer func() {
		if r := recover(); r != nil {
			result = false
			s.log.WithField("panic", r).Error("seek panicked")
		}
		d.BlockGate.Open()
		for _, r := range d.Renderers() {
			r.InvalidateCache()
		}
		op.complete(result)
	}()

	main := d.MainBuffer()
	container := d.Container()
	if main == nil || container == nil {
		result = false
		return
	}

	initial := d.Clock.Position()
	target := op.Position()
	mode := op.Mode()
	switch mode {
	case SeekStepForward, SeekStepBackward:
		target = resolveStep(main, initial, mode)
	case SeekStopMode:
		target = media.SeekToStart
	}

	// Fast path: frame-accurate stepping without re-reading the source.
	if target != media.SeekToStart && main.IsInRange(target) {
		d.Clock.SetPosition(target)
		d.Hub.NotifyPosition(target)
		return
	}

	// Slow path.
	if w := d.Workers(); w != nil {
		w.PauseReadDecode()
	}
	d.BlockGate.Close()
	container.ClearQueuedPackets(true)

	adjusted := target
	if target == media.SeekToStart {
		adjusted = 0
	} else if main.IsMonotonic() {
		// Land early enough that the buffer fills symmetrically around the
		// true target instead of starting exactly at it.
		skew := time.Duration(main.Capacity()/2) * main.MonotonicDuration()
		if target >= skew {
			adjusted = target - skew
		}
	}

	s.log.WithFields(logrus.Fields{"mode": mode.String(), "target": target, "physical": adjusted}).Debug("physical seek")
	first := container.Seek(adjusted)
	if first != nil {
		if target == media.SeekToStart {
			target = first.StartTime
		}
		for st, buf := range d.Buffers() {
			if st == media.StreamSubtitle && d.SubtitlesPreloaded() {
				continue
			}
			buf.Clear()
		}
		if buf, ok := d.Buffers()[first.Stream]; ok {
			buf.Add(first)
		}
		s.fillBuffers(main, target)
	}

	if target == media.SeekToStart {
		target = 0
	}

	// Best-effort resolution.
	var published time.Duration
	switch {
	case main.Count() == 0:
		if target != 0 {
			// The seek had no effect; keep the position the clock held.
			published = initial
		}
	case !main.IsInRange(target):
		published = lo.Clamp(target, main.RangeStartTime(), main.RangeEndTime())
	default:
		published = target
	}
	d.Clock.SetPosition(published)
	d.Hub.NotifyPosition(published)
}

// fillBuffers pulls already-decoded frames into every stream buffer, then
// keeps reading raw packets, until the main buffer is full or the source
// runs dry. The block gate opens as soon as the target falls in range so
// waiters unblock promptly.
func (s *Scheduler) fillBuffers(main *buffer.BlockBuffer, target time.Duration) {
	d := s.deck
	container := d.Container()

	signalRange := func() {
		if target != media.SeekToStart && main.IsInRange(target) {
			d.BlockGate.Open()
		}
	}
	signalRange()

	// Drain whatever the decoders already queued.
	for !main.IsFull() {
		progress := false
		for st, buf := range d.Buffers() {
			if buf.IsFull() {
				continue
			}
			if frame := container.ReceiveNextFrame(st); frame != nil {
				buf.Add(frame)
				progress = true
			}
		}
		signalRange()
		if !progress {
			break
		}
	}

	// Keep reading raw packets, feeding whichever stream they belong to.
	for !main.IsFull() {
		st := container.Read()
		if st == media.StreamNone {
			break
		}
		if frame := container.ReceiveNextFrame(st); frame != nil {
			if buf, ok := d.Buffers()[frame.Stream]; ok {
				buf.Add(frame)
			}
		}
		signalRange()
	}
}

// resolveStep computes the real target of a frame-step from the buffer's
// neighbors around the current position.
func resolveStep(main *buffer.BlockBuffer, position time.Duration, mode SeekMode) time.Duration {
	prev, next, current := main.Neighbors(position)
	avg := main.AverageBlockDuration()

	base := position
	if current != nil {
		base = current.StartTime
	}

	if mode == SeekStepForward {
		if next != nil {
			return next.StartTime
		}
		if avg > 0 {
			return base + avg*3/2
		}
		return base + stepFallback
	}

	if prev != nil {
		return prev.StartTime
	}
	step := stepFallback
	if avg > 0 {
		step = avg * 4 / 5
	}
	target := base - step
	if target < 0 {
		return 0
	}
	return target
}
