// Package metrics keeps in-process counters and latency histograms for the
// API server, the Scryfall client and the composition cache. A nil *Metrics
// records nothing, so components can take one optionally.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects service counters.
type Metrics struct {
	RequestLatency  *Histogram
	ScryfallLatency *Histogram

	Requests          atomic.Uint64
	ServerErrors      atomic.Uint64
	ScryfallRequests  atomic.Uint64
	ScryfallErrors    atomic.Uint64
	CompositionHits   atomic.Uint64
	CompositionMisses atomic.Uint64

	mu        sync.RWMutex
	startTime time.Time
	now       func() time.Time
}

// New creates an empty collector.
func New() *Metrics {
	return &Metrics{
		RequestLatency:  NewHistogram(defaultHistogramSize),
		ScryfallLatency: NewHistogram(defaultHistogramSize),
		startTime:       time.Now(),
		now:             time.Now,
	}
}

// RecordRequest records one HTTP request and whether it failed server side.
func (m *Metrics) RecordRequest(d time.Duration, status int) {
	if m == nil {
		return
	}
	m.Requests.Add(1)
	if status >= 500 {
		m.ServerErrors.Add(1)
	}
	m.RequestLatency.Record(d)
}

// RecordScryfall records one Scryfall call, retries included.
func (m *Metrics) RecordScryfall(d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.ScryfallRequests.Add(1)
	if failed {
		m.ScryfallErrors.Add(1)
	}
	m.ScryfallLatency.Record(d)
}

// RecordCompositionHit counts a composition served from the cache.
func (m *Metrics) RecordCompositionHit() {
	if m == nil {
		return
	}
	m.CompositionHits.Add(1)
}

// RecordCompositionMiss counts a composition that had to be aggregated.
func (m *Metrics) RecordCompositionMiss() {
	if m == nil {
		return
	}
	m.CompositionMisses.Add(1)
}

// Stats is a point-in-time copy of the collector.
type Stats struct {
	Requests        uint64       `json:"requests"`
	ServerErrors    uint64       `json:"server_errors"`
	RequestLatency  LatencyStats `json:"request_latency"`
	ScryfallCalls   uint64       `json:"scryfall_requests"`
	ScryfallErrors  uint64       `json:"scryfall_errors"`
	ScryfallLatency LatencyStats `json:"scryfall_latency"`
	ScryfallSuccess float64      `json:"scryfall_success_rate"` // percentage
	CacheHits       uint64       `json:"composition_cache_hits"`
	CacheMisses     uint64       `json:"composition_cache_misses"`
	CacheHitRate    float64      `json:"composition_cache_hit_rate"` // percentage
	Uptime          string       `json:"uptime"`
}

// Snapshot returns the current statistics. A nil collector yields nil.
func (m *Metrics) Snapshot() *Stats {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	scryfallCalls := m.ScryfallRequests.Load()
	scryfallErrors := m.ScryfallErrors.Load()
	hits := m.CompositionHits.Load()
	misses := m.CompositionMisses.Load()

	stats := &Stats{
		Requests:        m.Requests.Load(),
		ServerErrors:    m.ServerErrors.Load(),
		RequestLatency:  m.RequestLatency.Stats(),
		ScryfallCalls:   scryfallCalls,
		ScryfallErrors:  scryfallErrors,
		ScryfallLatency: m.ScryfallLatency.Stats(),
		CacheHits:       hits,
		CacheMisses:     misses,
		Uptime:          m.now().Sub(m.startTime).Round(time.Second).String(),
	}
	if scryfallCalls > 0 {
		stats.ScryfallSuccess = float64(scryfallCalls-scryfallErrors) / float64(scryfallCalls) * 100
	}
	if hits+misses > 0 {
		stats.CacheHitRate = float64(hits) / float64(hits+misses) * 100
	}
	return stats
}

// Reset clears every counter and restarts the uptime clock.
func (m *Metrics) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RequestLatency.Reset()
	m.ScryfallLatency.Reset()
	m.Requests.Store(0)
	m.ServerErrors.Store(0)
	m.ScryfallRequests.Store(0)
	m.ScryfallErrors.Store(0)
	m.CompositionHits.Store(0)
	m.CompositionMisses.Store(0)
	m.startTime = m.now()
}
