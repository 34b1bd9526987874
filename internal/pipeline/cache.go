package pipeline

import (
	"sync"
	"time"

	"github.com/couchcryptid/storm-radar/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Entry is an immutable cached snapshot.
type Entry struct {
	Response        domain.Response
	FetchedAtMillis int64
	Index           *domain.Index
}

// Within returns the entry's response restricted to b. Metadata is copied with
// TotalPoints set to the filtered count.
func (e *Entry) Within(b domain.BBox) (domain.Response, error) {
	points, err := e.Index.Within(b)
	if err != nil {
		return domain.Response{}, err
	}
	resp := e.Response
	resp.Dataset.Points = points
	resp.Metadata.TotalPoints = len(points)
	return resp, nil
}

// Cache holds the most recent snapshot. An entry is fresh while
// now - FetchedAtMillis < ttl, both measured in milliseconds.
type Cache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	clock clockwork.Clock
	entry *Entry
}

// NewCache creates an empty cache. A nil clock uses real time.
func NewCache(ttl time.Duration, clock clockwork.Clock) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{ttl: ttl, clock: clock}
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Fresh returns the stored entry if it has not expired.
func (c *Cache) Fresh() (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil {
		return nil, false
	}
	age := c.clock.Now().UnixMilli() - c.entry.FetchedAtMillis
	if age >= c.ttl.Milliseconds() {
		return nil, false
	}
	return c.entry, true
}

// Store replaces the cached entry with resp fetched at fetchedAt.
func (c *Cache) Store(resp domain.Response, fetchedAt time.Time) *Entry {
	e := &Entry{
		Response:        resp,
		FetchedAtMillis: fetchedAt.UnixMilli(),
		Index:           domain.NewIndex(resp.Dataset.Points),
	}

	c.mu.Lock()
	c.entry = e
	c.mu.Unlock()

	return e
}
