package dashboard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayUpdateAndSnapshot(t *testing.T) {
	d := NewDisplay()
	_, ok := d.Snapshot()
	assert.False(t, ok)

	now := time.Now()
	d.Update(Snapshot{CycleID: "a", UpdatedAt: now})
	d.Update(Snapshot{CycleID: "b", UpdatedAt: now})

	s, ok := d.Snapshot()
	assert.True(t, ok)
	assert.Equal(t, "b", s.CycleID)
}

func TestDisplayCloseIsIdempotent(t *testing.T) {
	d := NewDisplay()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Close()
		}()
	}
	wg.Wait()

	select {
	case <-d.Closed():
	default:
		t.Fatal("Closed channel not closed")
	}
	assert.True(t, d.IsClosed())

	d.Update(Snapshot{CycleID: "late"})
	_, ok := d.Snapshot()
	assert.False(t, ok, "updates after close are dropped")
}
