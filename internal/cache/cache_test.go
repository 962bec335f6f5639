package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyshade/internal/types"
)

func testEntry(value float64) Entry {
	return Entry{
		Series: []types.TimeSeriesPoint{
			{Timestamp: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), Value: value},
		},
		Field:     types.FieldTemperature,
		BaseDate:  types.NewDate(2024, time.June, 15),
		FetchedAt: time.Now().UTC(),
	}
}

func TestSeriesCache_StoreAndGet(t *testing.T) {
	c := New()

	gen := c.Begin("poly_1")
	assert.True(t, c.StoreIfCurrent("poly_1", gen, testEntry(1)))

	entry, ok := c.Get("poly_1")
	require.True(t, ok)
	assert.Equal(t, 1.0, entry.Series[0].Value)
	assert.Equal(t, 1, c.Len())
}

func TestSeriesCache_MissingEntry(t *testing.T) {
	c := New()
	_, ok := c.Get("poly_unknown")
	assert.False(t, ok)
}

func TestSeriesCache_WholeEntryReplace(t *testing.T) {
	c := New()

	gen1 := c.Begin("poly_1")
	require.True(t, c.StoreIfCurrent("poly_1", gen1, testEntry(1)))

	gen2 := c.Begin("poly_1")
	require.True(t, c.StoreIfCurrent("poly_1", gen2, testEntry(2)))

	entry, ok := c.Get("poly_1")
	require.True(t, ok)
	assert.Equal(t, 2.0, entry.Series[0].Value)
	assert.Equal(t, 1, c.Len())
}

func TestSeriesCache_StaleGenerationDiscarded(t *testing.T) {
	c := New()

	// First request starts, then a newer one begins before it lands.
	stale := c.Begin("poly_1")
	fresh := c.Begin("poly_1")

	require.True(t, c.StoreIfCurrent("poly_1", fresh, testEntry(2)))

	// The superseded response resolves late and must be discarded.
	assert.False(t, c.StoreIfCurrent("poly_1", stale, testEntry(1)))

	entry, ok := c.Get("poly_1")
	require.True(t, ok)
	assert.Equal(t, 2.0, entry.Series[0].Value)
}

func TestSeriesCache_Delete(t *testing.T) {
	c := New()

	gen := c.Begin("poly_1")
	require.True(t, c.StoreIfCurrent("poly_1", gen, testEntry(1)))

	c.Delete("poly_1")
	_, ok := c.Get("poly_1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	// A store from before the delete is stale relative to the reset state.
	assert.False(t, c.StoreIfCurrent("poly_1", gen, testEntry(1)))
}

func TestSeriesCache_IndependentPolygons(t *testing.T) {
	c := New()

	genA := c.Begin("poly_a")
	genB := c.Begin("poly_b")

	require.True(t, c.StoreIfCurrent("poly_a", genA, testEntry(10)))
	require.True(t, c.StoreIfCurrent("poly_b", genB, testEntry(20)))

	a, _ := c.Get("poly_a")
	b, _ := c.Get("poly_b")
	assert.Equal(t, 10.0, a.Series[0].Value)
	assert.Equal(t, 20.0, b.Series[0].Value)
}

func TestSeriesCache_ConcurrentAccess(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gen := c.Begin("poly_1")
			c.StoreIfCurrent("poly_1", gen, testEntry(float64(gen)))
			c.Get("poly_1")
		}()
	}
	wg.Wait()

	// The surviving entry must be from the highest generation.
	entry, ok := c.Get("poly_1")
	require.True(t, ok)
	assert.Equal(t, 50.0, entry.Series[0].Value)
}
