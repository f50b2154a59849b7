package tracker

import (
	"sync"
	"time"
)

// Handle identifies a periodic job started on a Scheduler
type Handle = uint64

// Scheduler runs a callback periodically until cancelled
type Scheduler interface {
	// Start runs fn immediately and then once per interval
	Start(interval time.Duration, fn func()) Handle
	// Cancel stops the job; fn is never invoked after Cancel returns
	Cancel(h Handle)
}

type tickerJob struct {
	stop chan struct{}
	done chan struct{}
}

// TickerScheduler is a Scheduler backed by time.Ticker. Invocations of one
// job never overlap: a tick that arrives while fn is running is dropped.
type TickerScheduler struct {
	mu   sync.Mutex
	next Handle
	jobs map[Handle]*tickerJob
}

// NewTickerScheduler creates a wall-clock scheduler
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{jobs: make(map[Handle]*tickerJob)}
}

// Start implements Scheduler
func (s *TickerScheduler) Start(interval time.Duration, fn func()) Handle {
	job := &tickerJob{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.next++
	h := s.next
	s.jobs[h] = job
	s.mu.Unlock()

	go func() {
		defer close(job.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fn()
		for {
			select {
			case <-job.stop:
				return
			case <-ticker.C:
				// stop wins over a tick that raced with it
				select {
				case <-job.stop:
					return
				default:
				}
				fn()
			}
		}
	}()

	return h
}

// Cancel implements Scheduler. It waits for a running invocation to
// finish, so it must not be called from inside fn.
func (s *TickerScheduler) Cancel(h Handle) {
	s.mu.Lock()
	job, ok := s.jobs[h]
	delete(s.jobs, h)
	s.mu.Unlock()

	if !ok {
		return
	}
	close(job.stop)
	<-job.done
}
