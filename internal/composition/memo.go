package composition

import (
	"slices"
	"sync"
)

// Memo caches the composition of the last slice it was given. The cached
// result is returned for as long as callers pass the same slice (same backing
// array start and length); any other slice triggers a recompute.
//
// Callers must not mutate a slice in place after passing it to Compute.
type Memo struct {
	mu     sync.Mutex
	last   []CardEntry
	result Composition
	valid  bool
	misses int
}

// Compute returns the composition of entries, reusing the cached result when
// entries is the slice seen on the previous call.
func (m *Memo) Compute(entries []CardEntry) Composition {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && sameSlice(m.last, entries) {
		return m.result.clone()
	}

	m.last = entries
	m.result = Aggregate(entries)
	m.valid = true
	m.misses++
	return m.result.clone()
}

// Reset drops the cached result.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = nil
	m.result = Composition{}
	m.valid = false
}

// Recomputes returns how many times Compute had to aggregate.
func (m *Memo) Recomputes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.misses
}

func sameSlice(a, b []CardEntry) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

func (c Composition) clone() Composition {
	c.ColorDistribution = slices.Clone(c.ColorDistribution)
	return c
}
