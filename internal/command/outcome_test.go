package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOutcome_ResolvesOnce(t *testing.T) {
	o := newOutcome()
	assert.False(t, o.OK(), "unresolved outcome reports false")

	o.complete(true)
	assert.True(t, o.Wait())
	assert.True(t, o.OK())

	// Later completions do not overwrite the result.
	o.complete(false)
	assert.True(t, o.OK())
}

func TestOutcome_DoneReleasesAllWaiters(t *testing.T) {
	o := newOutcome()

	results := make(chan bool, 3)
	for i := 0; i < 3; i++ {
		go func() { results <- o.Wait() }()
	}
	o.complete(true)

	for i := 0; i < 3; i++ {
		select {
		case ok := <-results:
			assert.True(t, ok)
		case <-time.After(time.Second):
			t.Fatal("waiter never released")
		}
	}
}

func TestOutcome_FailedResolvesImmediately(t *testing.T) {
	o := failedOutcome()
	select {
	case <-o.Done():
	default:
		t.Fatal("failed outcome should already be done")
	}
	assert.False(t, o.OK())
}

func TestOutcome_DistinctIDs(t *testing.T) {
	assert.NotEqual(t, newOutcome().ID(), newOutcome().ID())
}

func TestSeekOperation_Coalesce(t *testing.T) {
	op := newSeekOperation(10*time.Second, SeekNormal)
	first := op.Outcome()

	op.Coalesce(20*time.Second, SeekStepForward)

	assert.Equal(t, 20*time.Second, op.Position(), "last writer wins")
	assert.Equal(t, SeekStepForward, op.Mode())
	assert.Same(t, first, op.Outcome(), "coalescing must not replace the completion handle")

	op.complete(true)
	assert.True(t, first.Wait(), "early waiters observe the coalesced completion")
}
