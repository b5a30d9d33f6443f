package engine

import (
	"errors"
	"testing"
	"time"
)

func TestHub_DeliversEvents(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()

	h.NotifyLifecycle(MediaOpening, nil)
	h.NotifyState(StateClose, StatePause)
	h.NotifySeeking(true, 5*time.Second)
	h.NotifyPosition(5 * time.Second)

	select {
	case e := <-sub.Lifecycle:
		if e.Kind != MediaOpening {
			t.Errorf("Kind = %v, want Opening", e.Kind)
		}
	default:
		t.Fatal("lifecycle event not delivered")
	}
	select {
	case e := <-sub.StateChanged:
		if e.Previous != StateClose || e.Current != StatePause {
			t.Errorf("state change = %+v", e)
		}
	default:
		t.Fatal("state event not delivered")
	}
	select {
	case e := <-sub.Seeking:
		if !e.Started || e.Position != 5*time.Second {
			t.Errorf("seek event = %+v", e)
		}
	default:
		t.Fatal("seek event not delivered")
	}
	select {
	case e := <-sub.Position:
		if e.Position != 5*time.Second {
			t.Errorf("position = %v", e.Position)
		}
	default:
		t.Fatal("position event not delivered")
	}
}

func TestHub_FailedCarriesError(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()

	wantErr := errors.New("stream init failed")
	h.NotifyLifecycle(MediaFailed, wantErr)

	e := <-sub.Lifecycle
	if e.Kind != MediaFailed || !errors.Is(e.Err, wantErr) {
		t.Errorf("event = %+v, want Failed with error", e)
	}
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	h.Subscribe() // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < eventBufferSize+5; i++ {
			h.NotifyPosition(time.Second)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub blocked on a slow subscriber")
	}
}

func TestHub_CloseReleasesSubscribers(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()
	h.Close()

	select {
	case <-sub.Done:
	case <-time.After(time.Second):
		t.Fatal("Done not closed")
	}

	// Subscribing after close yields an already-done subscription.
	late := h.Subscribe()
	select {
	case <-late.Done:
	default:
		t.Error("late subscription should be done immediately")
	}
}
