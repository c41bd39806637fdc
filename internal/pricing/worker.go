package pricing

import (
	"context"
	"log"
	"time"
)

// Worker runs a price refresh once a day at a fixed hour.
type Worker struct {
	hour int
	job  func(ctx context.Context) error
	now  func() time.Time
}

// NewWorker creates a Worker that runs job every day at hour (local time).
func NewWorker(hour int, job func(ctx context.Context) error) *Worker {
	return &Worker{hour: hour, job: job, now: time.Now}
}

// Run blocks until ctx is canceled. A failed refresh is logged and retried
// at the next scheduled hour.
func (w *Worker) Run(ctx context.Context) {
	for {
		next := NextRun(w.now(), w.hour)
		log.Printf("Next price refresh at %s", next.Format(time.RFC1123))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("Price worker stopped")
			return
		case <-timer.C:
		}

		start := time.Now()
		if err := w.job(ctx); err != nil {
			log.Printf("Price refresh failed: %v", err)
			continue
		}
		log.Printf("Price refresh finished in %s", time.Since(start).Round(time.Second))
	}
}

// NextRun returns the first time at hour:00 strictly after now.
func NextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
