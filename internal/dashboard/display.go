// Package dashboard holds the live display state shared between the polling
// loop, which writes it once per cycle, and the HTTP handlers that read it.
package dashboard

import (
	"log"
	"sync"
	"time"

	"settlement-compare/internal/compare"
)

// Snapshot is what one cycle published.
type Snapshot struct {
	CycleID     string
	Result      *compare.Result
	ChartPNG    []byte
	UpdatedAt   time.Time
	NextRefresh time.Time
}

// Display is acquired once before polling starts and updated in place.
// Closing it is idempotent and observable through Closed.
type Display struct {
	mu   sync.RWMutex
	snap *Snapshot

	closeOnce sync.Once
	closed    chan struct{}
}

func NewDisplay() *Display {
	return &Display{closed: make(chan struct{})}
}

// Update replaces the current snapshot. Updates after Close are dropped.
func (d *Display) Update(s Snapshot) {
	if d.IsClosed() {
		return
	}
	d.mu.Lock()
	d.snap = &s
	d.mu.Unlock()
}

// Snapshot returns the latest snapshot, if any cycle has completed.
func (d *Display) Snapshot() (Snapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.snap == nil {
		return Snapshot{}, false
	}
	return *d.snap, true
}

func (d *Display) Close() {
	d.closeOnce.Do(func() {
		log.Printf("[Dashboard] display closed")
		close(d.closed)
	})
}

// Closed is closed once the display is.
func (d *Display) Closed() <-chan struct{} { return d.closed }

func (d *Display) IsClosed() bool {
	select {
	case <-d.closed:
		return true
	default:
		return false
	}
}
