package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTimeout(t *testing.T) {
	cause := errors.New("playwright: Timeout 20000ms exceeded")
	err := Classify("https://jobs.test/search", 20*time.Second, cause)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "https://jobs.test/search", te.URL)
	assert.Equal(t, 20*time.Second, te.Elapsed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "not ready after")
}

func TestClassifyNavigation(t *testing.T) {
	for _, msg := range []string{
		"net::ERR_NAME_NOT_RESOLVED",
		"net::ERR_CONNECTION_REFUSED",
		"target closed",
	} {
		cause := errors.New(msg)
		err := Classify("https://jobs.test/search", time.Second, cause)

		var ne *NavigationError
		require.ErrorAs(t, err, &ne, "message %q", msg)
		assert.Equal(t, "https://jobs.test/search", ne.URL)
		assert.ErrorIs(t, err, cause)
	}
}

func TestClassifyDeadlineExceeded(t *testing.T) {
	err := Classify("https://jobs.test/search", 5*time.Second, errors.New("context deadline exceeded"))

	var te *TimeoutError
	assert.ErrorAs(t, err, &te)
}

func TestFetchCancelledBeforeStart(t *testing.T) {
	f := New(nil, ".ready")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.Fetch(ctx, "https://jobs.test/search", time.Second)

	var ne *NavigationError
	require.ErrorAs(t, err, &ne)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAwaitCancellationAbortsInFlightCall(t *testing.T) {
	f := New(nil, ".ready")

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	go func() {
		<-started
		cancel()
	}()

	// Stands in for a blocked Goto: a real call only returns once the
	// page underneath it is closed, which cancellation triggers.
	err := f.await(ctx, func() error {
		close(started)
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return errors.New("page closed")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestAwaitPanicResurfacesInCaller(t *testing.T) {
	f := New(nil, ".ready")

	assert.Panics(t, func() {
		_ = f.await(context.Background(), func() error { panic("renderer gone") })
	})
}

func TestWaitBudgetClampsToRemainder(t *testing.T) {
	rem, ok := waitBudget(20*time.Second, 19500*time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, 500*time.Millisecond, rem, "readiness wait never stretches the fetch budget")
}

func TestWaitBudgetExhaustedByNavigation(t *testing.T) {
	for _, elapsed := range []time.Duration{20 * time.Second, 25 * time.Second} {
		_, ok := waitBudget(20*time.Second, elapsed)
		assert.False(t, ok, "elapsed %s", elapsed)
	}
}
