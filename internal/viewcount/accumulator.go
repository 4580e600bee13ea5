package viewcount

import (
	"sync"

	"github.com/google/uuid"
)

// Accumulator holds pending view-count deltas between flushes. One
// instance is constructed per process and shared by the ingest path and
// the flush scheduler; a single mutex guards the map.
type Accumulator struct {
	mu     sync.Mutex
	counts map[uuid.UUID]int64
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		counts: make(map[uuid.UUID]int64),
	}
}

func (a *Accumulator) Add(videoID uuid.UUID, delta int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counts[videoID] += delta
}

// Swap atomically replaces the live map with an empty one and returns the
// old contents, so increments arriving during a flush land in the fresh
// map instead of being lost.
func (a *Accumulator) Swap() map[uuid.UUID]int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	counts := a.counts
	a.counts = make(map[uuid.UUID]int64)
	return counts
}

// MergeBack folds a failed flush batch into the live map so the next
// cycle retries it.
func (a *Accumulator) MergeBack(counts map[uuid.UUID]int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for videoID, delta := range counts {
		a.counts[videoID] += delta
	}
}

func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.counts)
}
