package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, ch <-chan int, what string) int {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		return 0
	}
}

func TestRunFiresImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan int, 1)
	s := &Scheduler{
		TickChan: make(chan time.Time),
		Cycle: func(context.Context) error {
			ran <- 1
			return nil
		},
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitFor(t, ran, "initial cycle")
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, uint64(1), s.Stats().Started)
}

func TestFailuresNeverStopTicking(t *testing.T) {
	const failures = 5
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := make(chan time.Time)
	ran := make(chan int, failures+1)
	var calls atomic.Int32
	s := &Scheduler{
		TickChan: ticks,
		Cycle: func(context.Context) error {
			n := int(calls.Add(1))
			ran <- n
			switch {
			case n == 2:
				panic("decoder exploded")
			case n <= failures:
				return errors.New("backend unreachable")
			}
			return nil
		},
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitFor(t, ran, "initial cycle")
	for i := 2; i <= failures+1; i++ {
		ticks <- time.Now()
		waitFor(t, ran, "ticked cycle")
	}

	cancel()
	require.NoError(t, <-done)
	stats := s.Stats()
	assert.Equal(t, uint64(failures+1), stats.Started)
	assert.Equal(t, uint64(failures), stats.Failed)
	assert.Equal(t, int64(0), stats.InFlight)
}

func TestCyclesOverlap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := make(chan time.Time)
	release := make(chan struct{})
	started := make(chan int, 3)
	s := &Scheduler{
		TickChan: ticks,
		Cycle: func(context.Context) error {
			started <- 1
			<-release
			return nil
		},
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitFor(t, started, "first cycle")
	ticks <- time.Now()
	waitFor(t, started, "second cycle while first is blocked")
	ticks <- time.Now()
	waitFor(t, started, "third cycle while two are blocked")
	assert.Equal(t, int64(3), s.Stats().InFlight)

	close(release)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int64(0), s.Stats().InFlight)
}

func TestRunWaitsForInFlightCycles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var finished atomic.Bool
	entered := make(chan int, 1)
	s := &Scheduler{
		TickChan: make(chan time.Time),
		Cycle: func(ctx context.Context) error {
			entered <- 1
			<-ctx.Done()
			time.Sleep(10 * time.Millisecond)
			finished.Store(true)
			return ctx.Err()
		},
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	waitFor(t, entered, "cycle")
	cancel()

	require.NoError(t, <-done)
	assert.True(t, finished.Load())
}

func TestRunWithRealTicker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan int, 16)
	s := &Scheduler{
		Interval: 5 * time.Millisecond,
		Cycle: func(context.Context) error {
			select {
			case ran <- 1:
			default:
			}
			return nil
		},
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	for i := 0; i < 3; i++ {
		waitFor(t, ran, "cycle")
	}
	cancel()
	require.NoError(t, <-done)
	assert.GreaterOrEqual(t, s.Stats().Started, uint64(3))
}

func TestRunRequiresCycle(t *testing.T) {
	err := (&Scheduler{}).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoCycle)
}

func TestDefaults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Scheduler{TickChan: make(chan time.Time), Cycle: func(context.Context) error { return nil }}
	require.NoError(t, s.Run(ctx))
	assert.Equal(t, DefaultInterval, s.Interval)
	assert.NotNil(t, s.Logger)
}
