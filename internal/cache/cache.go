// Package cache is a keyed read cache for server resources with explicit
// invalidation.
//
// Entries are grouped by resource ("contacts", "user"). Invalidating a
// resource drops all of its entries and bumps its generation; a read that
// started before the bump still returns to its caller but is not stored, so a
// read issued after a write always observes that write.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"addressbook/internal/platform/metrics"
)

// Resources cached by the SDK.
const (
	ResourceUser     = "user"
	ResourceContacts = "contacts"
)

// Key identifies one cached read: a resource and the encoded parameters of
// the request that produced it.
type Key struct {
	Resource string
	Params   string
}

// Cache stores read results until their resource is invalidated.
type Cache struct {
	mu          sync.Mutex
	entries     map[Key]any
	generations map[string]uint64
	// epoch is bumped by Purge so reads in flight for any resource are discarded.
	epoch uint64

	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Cache.
type Option func(*Cache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:     make(map[Key]any),
		generations: make(map[string]uint64),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type stamp struct {
	epoch      uint64
	generation uint64
}

func (c *Cache) stampLocked(resource string) stamp {
	return stamp{epoch: c.epoch, generation: c.generations[resource]}
}

// Fetch returns the cached value for key or runs fn to produce it. Concurrent
// misses for the same key share a single call to fn. The shared call keeps
// ctx's values but not its cancellation, so one caller giving up does not
// fail the others; each caller stops waiting when its own ctx ends.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.mu.Unlock()
		if typed, ok := v.(T); ok {
			c.metrics.RecordCacheHit(key.Resource)
			return typed, nil
		}
		c.logger.Warn("cache entry has unexpected type; refetching", "resource", key.Resource)
		c.mu.Lock()
	}
	st := c.stampLocked(key.Resource)
	c.mu.Unlock()
	c.metrics.RecordCacheMiss(key.Resource)

	flightKey := key.Resource + "\x00" +
		strconv.FormatUint(st.epoch, 10) + "\x00" +
		strconv.FormatUint(st.generation, 10) + "\x00" +
		key.Params

	ch := c.group.DoChan(flightKey, func() (any, error) {
		v, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.stampLocked(key.Resource) != st {
			c.metrics.RecordCacheSuperseded(key.Resource)
			c.logger.Debug("discarding superseded read", "resource", key.Resource)
			return v, nil
		}
		c.entries[key] = v
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		typed, _ := res.Val.(T)
		return typed, nil
	}
}

// Get returns the stored value for key without fetching.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set stores v under key unconditionally.
func (c *Cache) Set(key Key, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

// Invalidate drops every entry of resource. Reads of resource that are in
// flight complete for their callers but are not stored.
func (c *Cache) Invalidate(resource string) {
	c.mu.Lock()
	c.generations[resource]++
	for k := range c.entries {
		if k.Resource == resource {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
	c.metrics.RecordCacheInvalidation(resource)
}

// Purge drops every entry of every resource.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	clear(c.entries)
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
