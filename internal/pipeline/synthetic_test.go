package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/jmalenfant/reel/internal/media"
)

func TestSyntheticSource_Open(t *testing.T) {
	src := NewSyntheticSource(40*time.Millisecond, 2*time.Second)
	c, err := src.OpenContainer()
	if err != nil {
		t.Fatalf("OpenContainer: %v", err)
	}
	defer c.Close()

	if got := c.Streams(); len(got) != 2 {
		t.Errorf("Streams() = %v, want video+audio", got)
	}
	if !c.IsStreamSeekable() || !c.CanPause() {
		t.Error("expected a seekable, pausable container")
	}
	if c.Duration() != 2*time.Second {
		t.Errorf("Duration() = %v", c.Duration())
	}
}

func TestSyntheticSource_StallOpenAborts(t *testing.T) {
	src := NewSyntheticSource(40*time.Millisecond, 2*time.Second)
	src.StallOpen = true

	result := make(chan error, 1)
	go func() {
		_, err := src.OpenContainer()
		result <- err
	}()

	select {
	case err := <-result:
		t.Fatalf("open returned before abort: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	src.SignalAbortReads(true)
	select {
	case err := <-result:
		if !errors.Is(err, ErrOpenAborted) {
			t.Errorf("err = %v, want ErrOpenAborted", err)
		}
	case <-time.After(time.Second):
		t.Fatal("open did not unblock after abort")
	}
}

func TestSyntheticContainer_ReadInterleavesStreams(t *testing.T) {
	src := NewSyntheticSource(40*time.Millisecond, time.Second)
	c := mustOpen(t, src)

	counts := make(map[media.StreamType]int)
	for i := 0; i < 10; i++ {
		st := c.Read()
		if st == media.StreamNone {
			t.Fatal("unexpected end of stream")
		}
		counts[st]++
	}
	if counts[media.StreamVideo] != 5 || counts[media.StreamAudio] != 5 {
		t.Errorf("stream counts = %v, want even interleave", counts)
	}
}

func TestSyntheticContainer_ReceiveNextFrame(t *testing.T) {
	src := NewSyntheticSource(40*time.Millisecond, time.Second)
	c := mustOpen(t, src)

	st := c.Read()
	f := c.ReceiveNextFrame(st)
	if f == nil {
		t.Fatal("no decoded frame after read")
	}
	if f.Stream != st || f.StartTime != 0 || f.Duration != 40*time.Millisecond {
		t.Errorf("frame = %+v", f)
	}
	if c.ReceiveNextFrame(st) != nil {
		t.Error("queue should be empty after one receive")
	}
}

func TestSyntheticContainer_SeekAlignsAndReturnsMainFrame(t *testing.T) {
	src := NewSyntheticSource(40*time.Millisecond, time.Minute)
	c := mustOpen(t, src)

	f := c.Seek(1*time.Second + 25*time.Millisecond)
	if f == nil {
		t.Fatal("Seek returned nil")
	}
	if f.Stream != media.StreamVideo {
		t.Errorf("Stream = %v, want video", f.Stream)
	}
	if f.StartTime != 1*time.Second {
		t.Errorf("StartTime = %v, want aligned to 1s", f.StartTime)
	}

	// The next video packet continues past the returned frame.
	var videoNext *media.Frame
	for videoNext == nil {
		st := c.Read()
		if st == media.StreamNone {
			t.Fatal("unexpected end of stream")
		}
		if st == media.StreamVideo {
			videoNext = c.ReceiveNextFrame(st)
		} else {
			c.ReceiveNextFrame(st)
		}
	}
	if videoNext.StartTime != 1*time.Second+40*time.Millisecond {
		t.Errorf("next video frame at %v", videoNext.StartTime)
	}
}

func TestSyntheticContainer_SeekClampsAtEnd(t *testing.T) {
	src := NewSyntheticSource(40*time.Millisecond, time.Second)
	c := mustOpen(t, src)

	f := c.Seek(time.Hour)
	if f == nil {
		t.Fatal("Seek returned nil")
	}
	if f.StartTime != time.Second-40*time.Millisecond {
		t.Errorf("StartTime = %v, want last frame boundary", f.StartTime)
	}

	if got := c.Seek(-time.Second); got == nil || got.StartTime != 0 {
		t.Errorf("negative seek landed at %+v, want 0", got)
	}
}

func TestSyntheticContainer_EndOfStream(t *testing.T) {
	src := NewSyntheticSource(100*time.Millisecond, 300*time.Millisecond)
	c := mustOpen(t, src)

	total := 0
	for c.Read() != media.StreamNone {
		total++
		if total > 100 {
			t.Fatal("stream never ended")
		}
	}
	// 3 frames per stream, 2 streams.
	if total != 6 {
		t.Errorf("read %d packets, want 6", total)
	}
}

func TestSyntheticContainer_AbortStopsReads(t *testing.T) {
	src := NewSyntheticSource(40*time.Millisecond, time.Minute)
	c := mustOpen(t, src)

	c.SignalAbortReads(true)
	if st := c.Read(); st != media.StreamNone {
		t.Errorf("Read() = %v while aborted, want StreamNone", st)
	}
	c.SignalAbortReads(false)
	if st := c.Read(); st == media.StreamNone {
		t.Error("Read() should resume after abort is lowered")
	}
}

func TestSyntheticContainer_ClearQueuedPackets(t *testing.T) {
	src := NewSyntheticSource(40*time.Millisecond, time.Minute)
	c := mustOpen(t, src)

	st := c.Read()
	c.ClearQueuedPackets(true)
	if c.ReceiveNextFrame(st) != nil {
		t.Error("decoded queue should be flushed")
	}

	st = c.Read()
	c.ClearQueuedPackets(false)
	if c.ReceiveNextFrame(st) == nil {
		t.Error("decoded queue should survive a non-flushing clear")
	}
}

func mustOpen(t *testing.T, src *SyntheticSource) *SyntheticContainer {
	t.Helper()
	c, err := src.OpenContainer()
	if err != nil {
		t.Fatalf("OpenContainer: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	sc, ok := c.(*SyntheticContainer)
	if !ok {
		t.Fatalf("unexpected container type %T", c)
	}
	return sc
}
