package logapi

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/tinytelemetry/logdash/internal/model"
	"golang.org/x/sync/singleflight"
)

// Cache is the query layer between the views and the log service. Results
// are keyed by query params; any successful mutation invalidates all of them.
// Returned slices are shared with the cache and must not be modified.
type Cache struct {
	api   model.LogAPI
	group singleflight.Group

	// FetchTimeout bounds a shared list request once it no longer follows
	// the context of the caller that started it.
	FetchTimeout time.Duration

	mu         sync.RWMutex
	entries    map[string]cacheEntry
	generation uint64
}

type cacheEntry struct {
	logs      []model.LogRecord
	fetchedAt time.Time
}

var _ model.LogSource = (*Cache)(nil)

// NewCache wraps api.
func NewCache(api model.LogAPI) *Cache {
	return &Cache{
		api:          api,
		entries:      make(map[string]cacheEntry),
		FetchTimeout: model.DefaultRequestTimeout,
	}
}

// FetchLogs returns the cached set for params, fetching it when absent.
// Concurrent identical requests share one call to the service.
func (c *Cache) FetchLogs(ctx context.Context, params model.LogQueryParams) ([]model.LogRecord, error) {
	key := params.Key()
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return entry.logs, nil
	}
	return c.fetch(ctx, params)
}

// Refetch drops the entry for params and fetches it again. A failed refetch
// leaves nothing cached for params; callers keep showing what they had.
func (c *Cache) Refetch(ctx context.Context, params model.LogQueryParams) ([]model.LogRecord, error) {
	key := params.Key()
	c.mu.Lock()
	delete(c.entries, key)
	gen := c.generation
	c.mu.Unlock()
	c.group.Forget(flightKey(gen, key))
	return c.fetch(ctx, params)
}

// FetchedAt reports when the entry for params was stored.
func (c *Cache) FetchedAt(params model.LogQueryParams) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[params.Key()]
	return entry.fetchedAt, ok
}

// GetLog reads one log straight from the service.
func (c *Cache) GetLog(ctx context.Context, id string) (model.LogRecord, error) {
	return c.api.GetLog(ctx, id)
}

// DeleteLog deletes a log and invalidates the cache on success.
func (c *Cache) DeleteLog(ctx context.Context, id string) error {
	if err := c.api.DeleteLog(ctx, id); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// AddLog creates a log and invalidates the cache on success.
func (c *Cache) AddLog(ctx context.Context, rec model.LogRecord) (model.LogRecord, error) {
	out, err := c.api.CreateLog(ctx, rec)
	if err != nil {
		return model.LogRecord{}, err
	}
	c.Invalidate()
	return out, nil
}

// UpdateLog replaces a log and invalidates the cache on success.
func (c *Cache) UpdateLog(ctx context.Context, id string, rec model.LogRecord) (model.LogRecord, error) {
	out, err := c.api.UpdateLog(ctx, id, rec)
	if err != nil {
		return model.LogRecord{}, err
	}
	c.Invalidate()
	return out, nil
}

// Invalidate drops every entry. Fetches already in flight still answer their
// callers but no longer populate the cache.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.generation++
	c.mu.Unlock()
}

func (c *Cache) fetch(ctx context.Context, params model.LogQueryParams) ([]model.LogRecord, error) {
	key := params.Key()
	c.mu.RLock()
	gen := c.generation
	c.mu.RUnlock()

	// The generation is part of the flight key so a caller arriving after an
	// invalidation never joins a pre-invalidation request. The shared call is
	// detached from the caller that started it; each caller only stops
	// waiting on its own cancellation.
	ch := c.group.DoChan(flightKey(gen, key), func() (interface{}, error) {
		timeout := c.FetchTimeout
		if timeout <= 0 {
			timeout = model.DefaultRequestTimeout
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		logs, err := c.api.ListLogs(fctx, params)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.generation == gen {
			c.entries[key] = cacheEntry{logs: logs, fetchedAt: time.Now()}
		}
		c.mu.Unlock()
		return logs, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.LogRecord), nil
	}
}

func flightKey(gen uint64, key string) string {
	return strconv.FormatUint(gen, 10) + "|" + key
}
