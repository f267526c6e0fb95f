package scheduler

import (
	"context"
	"sync"
	"time"

	"mediacontacts/internal/ports"
)

// TickerScheduler runs the import job on a fixed interval.
type TickerScheduler struct {
	interval   time.Duration
	runAtStart bool

	mu   sync.Mutex
	stop chan struct{}
}

var _ ports.Scheduler = (*TickerScheduler)(nil)

// NewTickerScheduler builds a scheduler ticking every interval. Non-positive
// intervals default to 24h. When runAtStart is set the job fires once
// immediately before the first tick.
func NewTickerScheduler(interval time.Duration, runAtStart bool) *TickerScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &TickerScheduler{interval: interval, runAtStart: runAtStart}
}

// Start launches the ticking goroutine. Calling Start twice is a no-op.
func (s *TickerScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	// The goroutine selects on its own captured channel; Stop only
	// touches the one held under the mutex.
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		if s.runAtStart {
			job(time.Now())
		}
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine. Safe to call concurrently or repeatedly.
func (s *TickerScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
