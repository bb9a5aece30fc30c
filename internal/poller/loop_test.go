package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"settlement-compare/internal/dashboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsUntilDisplayClosed(t *testing.T) {
	d := dashboard.NewDisplay()
	var cycles int32
	ids := map[string]bool{}

	l := &Loop{
		Task:     "imbalance",
		Interval: time.Millisecond,
		Display:  d,
		Cycle: func(_ context.Context, tick Tick) error {
			ids[tick.ID] = true
			if atomic.AddInt32(&cycles, 1) == 3 {
				d.Close()
			}
			return nil
		},
	}

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&cycles), "close during a cycle lets it finish, then exits")
	assert.Len(t, ids, 3)
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var cycles int32

	l := &Loop{
		Task:     "imbalance",
		Interval: time.Hour,
		Display:  dashboard.NewDisplay(),
		Cycle: func(context.Context, Tick) error {
			atomic.AddInt32(&cycles, 1)
			cancel()
			return nil
		},
	}

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop on cancel")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&cycles))
}

func TestLoopReturnsCycleError(t *testing.T) {
	boom := errors.New("upstream 503")
	var cycles int32
	l := &Loop{
		Task:     "imbalance",
		Interval: time.Millisecond,
		Display:  dashboard.NewDisplay(),
		Cycle: func(context.Context, Tick) error {
			if atomic.AddInt32(&cycles, 1) == 2 {
				return boom
			}
			return nil
		},
	}

	err := l.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), atomic.LoadInt32(&cycles))
}

func TestLoopTickTimes(t *testing.T) {
	d := dashboard.NewDisplay()
	fixed := time.Date(2025, 11, 13, 10, 0, 0, 0, time.UTC)
	var got Tick
	l := &Loop{
		Task:     "imbalance",
		Interval: 30 * time.Minute,
		Display:  d,
		now:      func() time.Time { return fixed },
		Cycle: func(_ context.Context, tick Tick) error {
			got = tick
			d.Close()
			return nil
		},
	}
	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, fixed, got.Started)
	assert.Equal(t, fixed.Add(30*time.Minute), got.NextRefresh)
}

func TestLoopValidates(t *testing.T) {
	assert.Error(t, (&Loop{}).Run(context.Background()))
	assert.Error(t, (&Loop{Interval: time.Second}).Run(context.Background()))
}
