package event

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator hands out millisecond-timestamp ids that never go backwards,
// even when the clock does or two calls land in the same millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}

// NextFree returns the next id not already present in s.
func (g *IDGenerator) NextFree(s *Store) string {
	for {
		id := g.Next()
		if !s.Has(id) {
			return id
		}
	}
}
