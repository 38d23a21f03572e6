// Package fetchcache puts a freshness window in front of remote fetches.
// A fresh entry short-circuits the fetch; a failed fetch is returned as is and
// never falls back to a stale entry.
package fetchcache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/newsdesk/newsdesk/internal/metrics"
	"github.com/newsdesk/newsdesk/internal/store"
)

// Policy bounds how long a cached value may be served.
type Policy struct {
	MaxAge time.Duration
}

// Fresh reports whether a value stored at storedAt may still be served at now.
func (p Policy) Fresh(storedAt, now time.Time) bool {
	return now.Sub(storedAt) < p.MaxAge
}

type Cache struct {
	store   *store.Store
	now     func() time.Time
	log     *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Cache)

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

func New(s *store.Store, opts ...Option) *Cache {
	c := &Cache{store: s, now: s.Now, log: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Invalidate drops the cached value for key so the next Load fetches.
func (c *Cache) Invalidate(key string) {
	c.store.Remove(key)
}

// Keys lists cached keys starting with prefix.
func (c *Cache) Keys(prefix string) []string {
	return c.store.Keys(prefix)
}

// InvalidatePrefix drops every cached value whose key starts with prefix.
func (c *Cache) InvalidatePrefix(prefix string) int {
	return c.store.RemovePrefix(prefix)
}

// Age returns how long ago key was stored.
func (c *Cache) Age(key string) (time.Duration, bool) {
	e, ok := c.store.Lookup(key)
	if !ok {
		return 0, false
	}
	return c.now().Sub(e.StoredAt), true
}

// Load returns the cached value for key if it is fresh under p; otherwise it
// calls fetch, stores the result stamped with the current time, and returns
// it. hit reports whether fetch was skipped.
func Load[T any](ctx context.Context, c *Cache, key string, p Policy, fetch func(context.Context) (T, error)) (v T, hit bool, err error) {
	class := keyClass(key)

	if e, ok := c.store.Lookup(key); ok && p.Fresh(e.StoredAt, c.now()) {
		if err := json.Unmarshal(e.Value, &v); err == nil {
			c.metrics.CacheLookup(class, true)
			c.log.Debug("fetchcache: hit", "key", key, "age", c.now().Sub(e.StoredAt))
			return v, true, nil
		}
		c.log.Debug("fetchcache: undecodable entry, refetching", "key", key)
	}
	c.metrics.CacheLookup(class, false)

	v, err = fetch(ctx)
	c.metrics.Fetch(class, err)
	if err != nil {
		c.log.Warn("fetchcache: fetch failed", "key", key, "err", err)
		var zero T
		return zero, false, err
	}
	if !c.store.SetAt(key, v, c.now()) {
		c.log.Warn("fetchcache: result not cached", "key", key)
	}
	return v, false, nil
}

// keyClass trims per-entity suffixes so metric labels stay bounded:
// "current-weather:Caracas:metric" becomes "current-weather".
func keyClass(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
