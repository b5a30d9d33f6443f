package engine

import (
	"testing"
	"time"
)

func TestGate_StartsInRequestedPosition(t *testing.T) {
	if !NewGate(true).IsOpen() {
		t.Error("NewGate(true) should be open")
	}
	if NewGate(false).IsOpen() {
		t.Error("NewGate(false) should be closed")
	}
}

func TestGate_WaitReturnsImmediatelyWhenOpen(t *testing.T) {
	g := NewGate(true)
	if !g.Wait(10 * time.Millisecond) {
		t.Error("Wait() should succeed on an open gate")
	}
}

func TestGate_WaitTimesOutWhenClosed(t *testing.T) {
	g := NewGate(false)
	if g.Wait(10 * time.Millisecond) {
		t.Error("Wait() should time out on a closed gate")
	}
}

func TestGate_OpenReleasesWaiters(t *testing.T) {
	g := NewGate(false)
	done := make(chan bool)
	go func() { done <- g.Wait(time.Second) }()

	time.Sleep(10 * time.Millisecond)
	g.Open()

	select {
	case ok := <-done:
		if !ok {
			t.Error("waiter should be released with true")
		}
	case <-time.After(time.Second):
		t.Fatal("waiter not released")
	}
}

func TestGate_Reusable(t *testing.T) {
	g := NewGate(true)
	g.Close()
	if g.Wait(5 * time.Millisecond) {
		t.Error("gate should be closed again")
	}
	g.Open()
	if !g.Wait(5 * time.Millisecond) {
		t.Error("gate should reopen")
	}
}

func TestGate_Idempotent(t *testing.T) {
	g := NewGate(false)
	g.Open()
	g.Open()
	g.Close()
	g.Close()
	if g.IsOpen() {
		t.Error("gate should end closed")
	}
}
