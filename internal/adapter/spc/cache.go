package spc

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

// CachedSource wraps a ReportSource with a day-bucketed in-memory LRU cache.
// Alert windows overlap heavily (every alert in an outbreak queries roughly
// the same few days), so fetching whole UTC days once and filtering locally
// spares the report source.
//
// Only days that have fully elapsed are cached: the backing collection is
// append-only, and a day still in progress may gain reports.
type CachedSource struct {
	inner domain.ReportSource
	cache *lruCache
	clock clockwork.Clock
}

// NewCachedSource creates a cache decorator around a report source.
func NewCachedSource(inner domain.ReportSource, maxDays int, clock clockwork.Clock) *CachedSource {
	return &CachedSource{
		inner: inner,
		cache: newLRUCache(maxDays),
		clock: clock,
	}
}

func (c *CachedSource) ReportsBetween(ctx context.Context, from, to time.Time) ([]domain.SPCReport, error) {
	var out []domain.SPCReport

	day := from.UTC().Truncate(24 * time.Hour)
	for !day.After(to) {
		dayEnd := day.Add(24 * time.Hour)

		reports, ok := c.cache.get(day)
		if !ok {
			// The inner source is inclusive on both ends, so fetch up to the
			// last instant of the day: a report stamped exactly at midnight
			// belongs to the day it opens and must not appear in two buckets.
			var err error
			reports, err = c.inner.ReportsBetween(ctx, day, dayEnd.Add(-time.Nanosecond))
			if err != nil {
				return nil, err
			}
			if dayEnd.Before(c.clock.Now()) {
				c.cache.put(day, reports)
			}
		}

		for _, r := range reports {
			if !r.Time.Before(from) && !r.Time.After(to) {
				out = append(out, r)
			}
		}
		day = dayEnd
	}
	return out, nil
}

// lruCache is a small thread-safe LRU keyed by UTC day.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[time.Time]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   time.Time
	value []domain.SPCReport
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[time.Time]*entry),
	}
}

func (c *lruCache) get(key time.Time) ([]domain.SPCReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key time.Time, value []domain.SPCReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
