// Package querycache keeps the results of store reads under named query
// keys until they go stale or a mutation invalidates them.
package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campusconnect/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

type Key string

const (
	KeyUsers         Key = "users"
	KeyCurrentUser   Key = "currentUser"
	KeyActivities    Key = "activities"
	KeyRegistrations Key = "registrations"
)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache is safe for concurrent use. Concurrent fetches of the same key
// share one call to the fetch function.
type Cache struct {
	mu         sync.Mutex
	entries    map[Key]entry
	generation map[Key]uint64
	group      singleflight.Group
	staleTime  time.Duration
	now        func() time.Time
}

// New creates a cache whose entries are served for staleTime after they
// were fetched. A zero staleTime refetches on every call.
func New(staleTime time.Duration) *Cache {
	return &Cache{
		entries:    make(map[Key]entry),
		generation: make(map[Key]uint64),
		staleTime:  staleTime,
		now:        time.Now,
	}
}

// Fetch returns the cached value for key, calling fn when there is no
// fresh entry. A result fetched before an Invalidate or Set of the same
// key is returned to its callers but not cached.
func (c *Cache) Fetch(ctx context.Context, key Key, fn func(ctx context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Sub(e.fetchedAt) < c.staleTime {
		c.mu.Unlock()
		metrics.IncrementCacheHits(string(key))
		return e.value, nil
	}
	gen := c.generation[key]
	c.mu.Unlock()
	metrics.IncrementCacheMisses(string(key))

	// A fetch outlives the caller that started it, since others may be waiting on it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		v, err := fn(fetchCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generation[key] == gen {
			c.entries[key] = entry{value: v, fetchedAt: c.now()}
		}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Set stores v under key as freshly fetched.
func (c *Cache) Set(key Key, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation[key]++
	c.entries[key] = entry{value: v, fetchedAt: c.now()}
}

// Invalidate drops the given keys so the next Fetch calls through.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		c.generation[key]++
		delete(c.entries, key)
		metrics.IncrementCacheInvalidations(string(key))
	}
}

// Get is Fetch with a typed result.
func Get[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	var zero T
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("querycache: value for %q has type %T", key, v)
	}
	return t, nil
}
