package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram_Stats(t *testing.T) {
	h := NewHistogram(0)
	assert.Equal(t, LatencyStats{}, h.Stats())

	for _, ms := range []int{5, 1, 4, 2, 3} {
		h.Record(time.Duration(ms) * time.Millisecond)
	}

	stats := h.Stats()
	assert.Equal(t, 5, stats.Count)
	assert.InDelta(t, 3.0, stats.Mean, 1e-9)
	assert.InDelta(t, 3.0, stats.P50, 1e-9)
	assert.InDelta(t, 4.8, stats.P95, 1e-9)
	assert.InDelta(t, 1.0, stats.Min, 1e-9)
	assert.InDelta(t, 5.0, stats.Max, 1e-9)
}

func TestHistogram_DropsOldestWhenFull(t *testing.T) {
	h := NewHistogram(10)
	for i := 1; i <= 11; i++ {
		h.Record(time.Duration(i) * time.Millisecond)
	}

	assert.Equal(t, 9, h.Count())
	assert.InDelta(t, 3.0, h.Stats().Min, 1e-9)

	h.Reset()
	assert.Equal(t, 0, h.Count())
}

func TestMetrics_Snapshot(t *testing.T) {
	m := New()
	start := m.startTime
	m.now = func() time.Time { return start.Add(90 * time.Second) }

	m.RecordRequest(10*time.Millisecond, 200)
	m.RecordRequest(20*time.Millisecond, 502)
	m.RecordScryfall(100*time.Millisecond, false)
	m.RecordScryfall(300*time.Millisecond, false)
	m.RecordScryfall(200*time.Millisecond, false)
	m.RecordScryfall(400*time.Millisecond, true)
	m.RecordCompositionMiss()
	m.RecordCompositionHit()
	m.RecordCompositionHit()
	m.RecordCompositionHit()

	stats := m.Snapshot()
	require.NotNil(t, stats)
	assert.Equal(t, uint64(2), stats.Requests)
	assert.Equal(t, uint64(1), stats.ServerErrors)
	assert.Equal(t, 2, stats.RequestLatency.Count)
	assert.Equal(t, uint64(4), stats.ScryfallCalls)
	assert.Equal(t, uint64(1), stats.ScryfallErrors)
	assert.InDelta(t, 75.0, stats.ScryfallSuccess, 1e-9)
	assert.InDelta(t, 250.0, stats.ScryfallLatency.Mean, 1e-9)
	assert.Equal(t, uint64(3), stats.CacheHits)
	assert.Equal(t, uint64(1), stats.CacheMisses)
	assert.InDelta(t, 75.0, stats.CacheHitRate, 1e-9)
	assert.Equal(t, "1m30s", stats.Uptime)

	m.Reset()
	stats = m.Snapshot()
	assert.Zero(t, stats.Requests)
	assert.Zero(t, stats.CacheHitRate)
	assert.Zero(t, stats.RequestLatency.Count)
}

func TestMetrics_NilRecordsNothing(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRequest(time.Millisecond, 500)
		m.RecordScryfall(time.Millisecond, true)
		m.RecordCompositionHit()
		m.RecordCompositionMiss()
		m.Reset()
	})
	assert.Nil(t, m.Snapshot())
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordRequest(time.Millisecond, 200)
				m.RecordCompositionHit()
				_ = m.Snapshot()
			}
		}()
	}
	wg.Wait()

	stats := m.Snapshot()
	assert.Equal(t, uint64(800), stats.Requests)
	assert.Equal(t, uint64(800), stats.CacheHits)
	assert.Equal(t, 800, stats.RequestLatency.Count)
}
