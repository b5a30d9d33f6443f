package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jmalenfant/reel/internal/buffer"
	"github.com/jmalenfant/reel/internal/engine"
	"github.com/jmalenfant/reel/internal/media"
)

// parkTimeout bounds how long a pause call waits for a worker to reach its
// cycle boundary before giving up the synchronous guarantee.
const parkTimeout = 5 * time.Second

// PositionReader supplies the playback position to the render worker.
type PositionReader interface {
	Position() time.Duration
}

// WorkerSet runs the three continuous pipeline loops: packet reading, frame
// decoding into the block buffers, and block rendering. Pause calls are
// synchronous: they return once the targeted loops are parked at a cycle
// boundary. All calls are idempotent.
type WorkerSet struct {
	log       *logrus.Entry
	container Container
	buffers   map[media.StreamType]*buffer.BlockBuffer
	renderers map[media.StreamType]Renderer
	clock     PositionReader
	interval  time.Duration

	readLoop   *workerLoop
	decodeLoop *workerLoop
	renderLoop *workerLoop

	cancel context.CancelFunc
	group  *errgroup.Group
}

type workerLoop struct {
	name   string
	gate   *engine.Gate // open while the loop may run
	parked *engine.Gate // open while the loop is parked
	cycle  func()
}

// NewWorkerSet creates and starts the worker loops. The loops start in the
// paused position; call ResumeAll once the buffers are primed.
func NewWorkerSet(log *logrus.Logger, container Container, buffers map[media.StreamType]*buffer.BlockBuffer, renderers map[media.StreamType]Renderer, clock PositionReader, interval time.Duration) *WorkerSet {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	w := &WorkerSet{
		log:       log.WithField("component", "workers"),
		container: container,
		buffers:   buffers,
		renderers: renderers,
		clock:     clock,
		interval:  interval,
	}
	w.readLoop = &workerLoop{name: "read", cycle: w.readCycle}
	w.decodeLoop = &workerLoop{name: "decode", cycle: w.decodeCycle}
	w.renderLoop = &workerLoop{name: "render", cycle: w.renderCycle}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.group, ctx = errgroup.WithContext(ctx)
	for _, l := range []*workerLoop{w.readLoop, w.decodeLoop, w.renderLoop} {
		l.gate = engine.NewGate(false)
		l.parked = engine.NewGate(false)
		loop := l
		w.group.Go(func() error {
			loop.run(ctx, w.interval)
			return nil
		})
	}
	return w
}

func (l *workerLoop) run(ctx context.Context, interval time.Duration) {
	for {
		if ctx.Err() != nil {
			return
		}
		if !l.gate.IsOpen() {
			l.parked.Open()
			select {
			case <-ctx.Done():
				return
			case <-l.gate.WaitCh():
			}
			l.parked.Close()
			continue
		}
		l.cycle()
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

func (w *WorkerSet) readCycle() {
	for _, buf := range w.buffers {
		if !buf.IsFull() {
			w.container.Read()
			return
		}
	}
}

func (w *WorkerSet) decodeCycle() {
	for st, buf := range w.buffers {
		if buf.IsFull() {
			continue
		}
		if frame := w.container.ReceiveNextFrame(st); frame != nil {
			buf.Add(frame)
		}
	}
}

func (w *WorkerSet) renderCycle() {
	if w.clock == nil {
		return
	}
	pos := w.clock.Position()
	for st, r := range w.renderers {
		buf, ok := w.buffers[st]
		if !ok {
			continue
		}
		if _, _, current := buf.Neighbors(pos); current != nil {
			r.Render(current, pos)
		}
	}
}

func (w *WorkerSet) pause(loops ...*workerLoop) {
	for _, l := range loops {
		l.gate.Close()
	}
	for _, l := range loops {
		if !l.parked.Wait(parkTimeout) {
			w.log.WithField("worker", l.name).Warn("worker did not park in time")
		}
	}
}

// PauseAll parks every worker loop.
func (w *WorkerSet) PauseAll() {
	w.pause(w.readLoop, w.decodeLoop, w.renderLoop)
}

// PauseReadDecode parks the read and decode loops, leaving rendering alone.
func (w *WorkerSet) PauseReadDecode() {
	w.pause(w.readLoop, w.decodeLoop)
}

// ResumeAll releases every worker loop.
func (w *WorkerSet) ResumeAll() {
	for _, l := range []*workerLoop{w.readLoop, w.decodeLoop, w.renderLoop} {
		l.gate.Open()
	}
}

// ResumePaused releases only the loops currently parked.
func (w *WorkerSet) ResumePaused() {
	for _, l := range []*workerLoop{w.readLoop, w.decodeLoop, w.renderLoop} {
		if !l.gate.IsOpen() {
			l.gate.Open()
		}
	}
}

// Dispose stops the loops permanently and waits for them to exit.
func (w *WorkerSet) Dispose() {
	w.cancel()
	// Open the gates so parked loops observe cancellation.
	for _, l := range []*workerLoop{w.readLoop, w.decodeLoop, w.renderLoop} {
		l.gate.Open()
	}
	_ = w.group.Wait()
}

// Verify WorkerSet implements Workers at compile time.
var _ Workers = (*WorkerSet)(nil)
