package composition

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemo_ReusesResultForSameSlice(t *testing.T) {
	var m Memo
	entries := []CardEntry{{Quantity: 2, ConvertedCost: 1, Colors: []string{"W"}}}

	first := m.Compute(entries)
	second := m.Compute(entries)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, m.Recomputes())
}

func TestMemo_RecomputesOnNewSlice(t *testing.T) {
	var m Memo
	entries := []CardEntry{{Quantity: 2, ConvertedCost: 1}}

	m.Compute(entries)

	updated := append([]CardEntry(nil), entries...)
	updated = append(updated, CardEntry{Quantity: 1, ConvertedCost: 3, Colors: []string{"U"}})
	got := m.Compute(updated)

	assert.Equal(t, 2, m.Recomputes())
	assert.Equal(t, 3, got.TotalCards())
}

func TestMemo_SubsliceIsDifferentInput(t *testing.T) {
	var m Memo
	entries := []CardEntry{{Quantity: 1}, {Quantity: 2}}

	m.Compute(entries)
	got := m.Compute(entries[:1])

	assert.Equal(t, 2, m.Recomputes())
	assert.Equal(t, 1, got.TotalCards())
}

func TestMemo_ResultIsolatedFromCallers(t *testing.T) {
	var m Memo
	entries := []CardEntry{{Quantity: 2, Colors: []string{"R"}}}

	first := m.Compute(entries)
	first.ColorDistribution[0].Count = 99

	second := m.Compute(entries)
	assert.Equal(t, 2, second.ColorDistribution[0].Count)
}

func TestMemo_Reset(t *testing.T) {
	var m Memo
	entries := []CardEntry{{Quantity: 1}}

	m.Compute(entries)
	m.Reset()
	m.Compute(entries)

	assert.Equal(t, 2, m.Recomputes())
}

func TestMemo_ConcurrentCompute(t *testing.T) {
	var m Memo
	entries := []CardEntry{{Quantity: 3, ConvertedCost: 2, Colors: []string{"G"}}}
	want := Aggregate(entries)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, m.Compute(entries))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, m.Recomputes())
}

func TestCache_GetOrCompute(t *testing.T) {
	c := NewCache(0)
	loads := 0
	load := func(rev int64) func() ([]CardEntry, int64, error) {
		return func() ([]CardEntry, int64, error) {
			loads++
			return []CardEntry{{Quantity: 4, ConvertedCost: 2, Colors: []string{"B"}}}, rev, nil
		}
	}

	first, rev, err := c.GetOrCompute("deck-1/main", 1, load(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)
	second, _, err := c.GetOrCompute("deck-1/main", 1, load(1))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads)

	_, _, err = c.GetOrCompute("deck-1/main", 2, load(2))
	require.NoError(t, err)
	assert.Equal(t, 2, loads, "new revision must reload")
}

func TestCache_StoresUnderLoadedRevision(t *testing.T) {
	c := NewCache(0)

	// The caller saw revision 3 but the entries were read after a change.
	comp, rev, err := c.GetOrCompute("deck-1/main", 3, func() ([]CardEntry, int64, error) {
		return []CardEntry{{Quantity: 2, ConvertedCost: 1, Colors: []string{"W"}}}, 4, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), rev)
	assert.Equal(t, 2, comp.TotalCards())

	_, ok := c.Get("deck-1/main", 3)
	assert.False(t, ok, "newer entries must not be cached under the older revision")
	cached, ok := c.Get("deck-1/main", 4)
	require.True(t, ok)
	assert.Equal(t, comp, cached)
}

func TestCache_LoadError(t *testing.T) {
	c := NewCache(0)
	boom := errors.New("boom")

	_, _, err := c.GetOrCompute("k", 1, func() ([]CardEntry, int64, error) { return nil, 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestCache_MaxSize(t *testing.T) {
	c := NewCache(2)

	c.Put("a", 1, Aggregate(nil))
	c.Put("b", 1, Aggregate(nil))
	c.Put("c", 1, Aggregate(nil))
	assert.Equal(t, 2, c.Len())

	// Replacing an existing key does not evict.
	c.Put("c", 2, Aggregate(nil))
	assert.Equal(t, 2, c.Len())
}

func TestCache_Invalidate(t *testing.T) {
	c := NewCache(0)
	c.Put("deck-1/main", 1, Aggregate(nil))
	c.Put("deck-1/maybeboard", 1, Aggregate(nil))
	c.Put("deck-2/main", 1, Aggregate(nil))

	c.Invalidate("deck-1/")

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("deck-2/main", 1)
	assert.True(t, ok)
}
