// Package cache provides the in-memory time series store keyed by polygon
// id. Entries are replaced wholesale on each fetch (no incremental merge)
// and there is no eviction policy: entries live until their polygon is
// deleted, which is acceptable for a single-session dashboard cache.
package cache

import (
	"sync"
	"time"

	"polyshade/internal/types"
)

// Entry is a cached hourly series for one polygon, together with the fetch
// parameters that produced it. Synthetic marks deterministic fallback data
// generated after an upstream failure; it is carried into overlay snapshots
// so fallback is distinguishable from real data.
type Entry struct {
	Series    []types.TimeSeriesPoint `json:"series"`
	Field     types.WeatherField      `json:"field"`
	BaseDate  types.Date              `json:"base_date"`
	Synthetic bool                    `json:"synthetic"`
	FetchedAt time.Time               `json:"fetched_at"`
}

// SeriesCache is a concurrency-safe polygon-id keyed series store with a
// per-polygon request generation counter. Rapid timeline changes can leave
// multiple fetches in flight for the same polygon with no cancellation; the
// generation counter lets late responses from superseded requests be
// discarded instead of overwriting fresher data.
type SeriesCache struct {
	mu          sync.RWMutex
	entries     map[string]Entry
	generations map[string]uint64
}

// New creates an empty SeriesCache.
func New() *SeriesCache {
	return &SeriesCache{
		entries:     make(map[string]Entry),
		generations: make(map[string]uint64),
	}
}

// Begin registers a new fetch for the polygon and returns its generation.
// Any fetch started earlier for the same polygon becomes stale: its
// StoreIfCurrent call will be rejected.
func (c *SeriesCache) Begin(polygonID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[polygonID]++
	return c.generations[polygonID]
}

// StoreIfCurrent replaces the polygon's entry if generation still matches
// the latest Begin call. Returns false when the response is stale and was
// discarded. The replace is atomic: readers never observe a partial series.
func (c *SeriesCache) StoreIfCurrent(polygonID string, generation uint64, entry Entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[polygonID] != generation {
		return false
	}
	c.entries[polygonID] = entry
	return true
}

// Get returns the polygon's cached entry, if any.
func (c *SeriesCache) Get(polygonID string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[polygonID]
	return entry, ok
}

// Delete removes the polygon's entry and generation state. Called when the
// polygon itself is deleted.
func (c *SeriesCache) Delete(polygonID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, polygonID)
	delete(c.generations, polygonID)
}

// Len returns the number of cached entries.
func (c *SeriesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
