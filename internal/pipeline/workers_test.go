package pipeline

import (
	"testing"
	"time"

	"github.com/jmalenfant/reel/internal/buffer"
	"github.com/jmalenfant/reel/internal/media"
)

type fixedPosition time.Duration

func (p fixedPosition) Position() time.Duration { return time.Duration(p) }

func newTestWorkers(t *testing.T, pos time.Duration) (*WorkerSet, *SyntheticContainer, *buffer.BlockBuffer, *MockRenderer) {
	t.Helper()
	src := NewSyntheticSource(40*time.Millisecond, time.Minute)
	c := mustOpen(t, src)
	buf := buffer.New(media.StreamVideo, 10)
	abuf := buffer.New(media.StreamAudio, 10)
	r := NewMockRenderer()
	buffers := map[media.StreamType]*buffer.BlockBuffer{
		media.StreamVideo: buf,
		media.StreamAudio: abuf,
	}
	renderers := map[media.StreamType]Renderer{media.StreamVideo: r}
	w := NewWorkerSet(nil, c, buffers, renderers, fixedPosition(pos), time.Millisecond)
	t.Cleanup(w.Dispose)
	return w, c, buf, r
}

func TestWorkerSet_StartsPaused(t *testing.T) {
	_, c, _, _ := newTestWorkers(t, 0)

	time.Sleep(30 * time.Millisecond)
	if n := c.ReadCalls(); n != 0 {
		t.Errorf("container read %d times before resume", n)
	}
}

func TestWorkerSet_ResumeFillsBuffers(t *testing.T) {
	w, _, buf, _ := newTestWorkers(t, 0)

	w.ResumeAll()
	deadline := time.Now().Add(2 * time.Second)
	for buf.Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("buffer never filled")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWorkerSet_PauseAllIsSynchronous(t *testing.T) {
	w, c, _, _ := newTestWorkers(t, 0)

	w.ResumeAll()
	time.Sleep(20 * time.Millisecond)
	w.PauseAll()

	before := c.ReadCalls()
	time.Sleep(30 * time.Millisecond)
	if after := c.ReadCalls(); after != before {
		t.Errorf("reads continued after pause: %d -> %d", before, after)
	}
}

func TestWorkerSet_PauseReadDecodeKeepsRendering(t *testing.T) {
	w, c, buf, r := newTestWorkers(t, 0)

	buf.Add(&media.Frame{Stream: media.StreamVideo, StartTime: 0, Duration: 40 * time.Millisecond})
	w.ResumeAll()
	time.Sleep(20 * time.Millisecond)
	w.PauseReadDecode()

	reads := c.ReadCalls()
	rendered := r.RenderedCount()
	time.Sleep(30 * time.Millisecond)
	if c.ReadCalls() != reads {
		t.Error("read loop kept running")
	}
	if r.RenderedCount() <= rendered {
		t.Error("render loop stopped")
	}
}

func TestWorkerSet_RendersBlockAtPosition(t *testing.T) {
	w, _, buf, r := newTestWorkers(t, 100*time.Millisecond)

	buf.Add(&media.Frame{Stream: media.StreamVideo, StartTime: 80 * time.Millisecond, Duration: 40 * time.Millisecond})
	w.ResumeAll()

	deadline := time.Now().Add(2 * time.Second)
	for r.RenderedCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("nothing rendered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := r.LastRendered(); got == nil || got.StartTime != 80*time.Millisecond {
		t.Errorf("rendered block = %+v, want the one covering 100ms", got)
	}
}

func TestWorkerSet_ResumePausedAfterPartialPause(t *testing.T) {
	w, c, _, _ := newTestWorkers(t, 0)

	w.ResumeAll()
	time.Sleep(10 * time.Millisecond)
	w.PauseReadDecode()
	before := c.ReadCalls()
	w.ResumePaused()

	deadline := time.Now().Add(2 * time.Second)
	for c.ReadCalls() == before {
		if time.Now().After(deadline) {
			t.Fatal("read loop never resumed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWorkerSet_DisposeStopsLoops(t *testing.T) {
	src := NewSyntheticSource(40*time.Millisecond, time.Minute)
	c := mustOpen(t, src)
	buffers := map[media.StreamType]*buffer.BlockBuffer{
		media.StreamVideo: buffer.New(media.StreamVideo, 10),
	}
	w := NewWorkerSet(nil, c, buffers, nil, fixedPosition(0), time.Millisecond)
	w.ResumeAll()
	time.Sleep(10 * time.Millisecond)

	w.Dispose()
	before := c.ReadCalls()
	time.Sleep(30 * time.Millisecond)
	if after := c.ReadCalls(); after != before {
		t.Errorf("reads continued after dispose: %d -> %d", before, after)
	}
	// Dispose again is a no-op.
	w.Dispose()
}
