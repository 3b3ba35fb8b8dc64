package ledger

import (
	"sync"
	"time"
)

// IDGenerator hands out expense ids from the clock in milliseconds, bumped so
// every id is strictly greater than the previous one.
type IDGenerator struct {
	now  func() time.Time
	last int64
	mu   sync.Mutex
}

// NewIDGenerator creates a generator whose ids all exceed floor.
func NewIDGenerator(now func() time.Time, floor int64) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now, last: floor}
}

// Next returns a fresh id.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
