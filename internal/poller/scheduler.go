// Package poller drives the dashboard's fixed-interval poll cycles.
package poller

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cristianoliveira/smarthome-dash/internal/logging"
)

// DefaultInterval is the time between poll cycles.
const DefaultInterval = 5000 * time.Millisecond

// ErrNoCycle is returned by Run when no cycle function is configured.
var ErrNoCycle = errors.New("poller: no cycle function")

// CycleFunc performs one poll cycle.
type CycleFunc func(ctx context.Context) error

// Scheduler fires one cycle immediately and then one per tick. Cycles run on
// their own goroutines: a slow cycle never delays the next tick, and cycles
// may overlap. A failing or panicking cycle is logged and ticking continues.
type Scheduler struct {
	Interval time.Duration    // tick period (default 5s)
	TickChan <-chan time.Time // optional tick channel for testing (if nil, a ticker is created)
	Cycle    CycleFunc
	Logger   logging.Logger

	wg       sync.WaitGroup
	seq      atomic.Uint64
	failed   atomic.Uint64
	inFlight atomic.Int64
}

// Stats is a point-in-time view of the scheduler counters.
type Stats struct {
	Started  uint64
	Failed   uint64
	InFlight int64
}

// Stats returns the scheduler counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Started:  s.seq.Load(),
		Failed:   s.failed.Load(),
		InFlight: s.inFlight.Load(),
	}
}

// Run blocks until ctx is cancelled, then waits for in-flight cycles to
// return. Cancellation is the only way to stop the schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.Cycle == nil {
		return ErrNoCycle
	}
	if s.Logger == nil {
		s.Logger = logging.Nop()
	}
	if s.Interval <= 0 {
		s.Interval = DefaultInterval
	}

	var tickChan <-chan time.Time
	if s.TickChan != nil {
		tickChan = s.TickChan
	} else {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		tickChan = ticker.C
	}

	defer s.wg.Wait()

	s.Logger.Debug("poller started", "interval", s.Interval.String())
	s.launch(ctx)
	for {
		select {
		case <-ctx.Done():
			s.Logger.Debug("poller stopping", "cycles", s.seq.Load())
			return nil
		case _, ok := <-tickChan:
			if !ok {
				// An injected channel was closed; keep serving until cancelled.
				tickChan = nil
				continue
			}
			s.launch(ctx)
		}
	}
}

func (s *Scheduler) launch(ctx context.Context) {
	n := s.seq.Add(1)
	s.wg.Add(1)
	s.inFlight.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Add(-1)
		if err := s.run(ctx); err != nil {
			s.failed.Add(1)
			s.Logger.Warn("poll cycle failed", "cycle", n, "error", err)
		}
	}()
}

// run executes one cycle, converting a panic into an error.
func (s *Scheduler) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return s.Cycle(ctx)
}
