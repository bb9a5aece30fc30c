// Package poller runs a comparison cycle on a fixed interval until the
// display is closed or the context is cancelled.
package poller

import (
	"context"
	"fmt"
	"log"
	"time"

	"settlement-compare/internal/observability/metrics"

	"github.com/google/uuid"
)

// Tick describes one cycle to the cycle function.
type Tick struct {
	ID          string
	Started     time.Time
	NextRefresh time.Time
}

// Closer is the part of a display the loop waits on.
type Closer interface {
	Closed() <-chan struct{}
}

type Loop struct {
	Task     string
	Interval time.Duration
	Cycle    func(ctx context.Context, tick Tick) error
	Display  Closer

	now func() time.Time
}

// Run executes a cycle immediately, then one per Interval. A close observed
// during a cycle takes effect after that cycle completes. A cycle error ends
// the loop and is returned; close and cancellation end it with nil.
func (l *Loop) Run(ctx context.Context) error {
	if l.Interval <= 0 {
		return fmt.Errorf("poll interval must be > 0, got %s", l.Interval)
	}
	if l.Cycle == nil || l.Display == nil {
		return fmt.Errorf("poll loop needs a cycle and a display")
	}
	now := l.now
	if now == nil {
		now = time.Now
	}

	for n := 1; ; n++ {
		started := now()
		tick := Tick{
			ID:          uuid.NewString(),
			Started:     started,
			NextRefresh: started.Add(l.Interval),
		}

		err := l.Cycle(ctx, tick)
		metrics.ObserveCycle(l.Task, metrics.ResultFor(err), now().Sub(started))
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("[Poller] %s cycle %d interrupted: %v", l.Task, n, ctx.Err())
				return nil
			}
			return fmt.Errorf("cycle %d (%s): %w", n, tick.ID, err)
		}
		log.Printf("[Poller] %s cycle %d (%s) updated at %s", l.Task, n, tick.ID, now().UTC().Format("15:04:05 UTC"))

		// A close that arrived during the cycle wins over an elapsed timer.
		select {
		case <-l.Display.Closed():
			log.Printf("[Poller] %s stopping: display closed", l.Task)
			return nil
		default:
		}

		timer := time.NewTimer(l.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Printf("[Poller] %s stopping: %v", l.Task, ctx.Err())
			return nil
		case <-l.Display.Closed():
			timer.Stop()
			log.Printf("[Poller] %s stopping: display closed", l.Task)
			return nil
		case <-timer.C:
		}
	}
}
