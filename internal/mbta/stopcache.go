package mbta

import (
	"context"
	"sync"
)

// FetchFunc looks up a stop's display name from the upstream source.
type FetchFunc func(ctx context.Context, stopID string) (string, error)

// StopCache memoizes stop id → display name lookups. The mapping is pure
// (the same id always resolves to the same name), so concurrent population
// may duplicate a fetch but never produce a conflicting entry. Failed lookups
// are not cached; the next cycle retries them.
type StopCache struct {
	mu    sync.RWMutex
	names map[string]string
	fetch FetchFunc
}

// NewStopCache creates a cache backed by the given fetch function.
func NewStopCache(fetch FetchFunc) *StopCache {
	return &StopCache{
		names: make(map[string]string),
		fetch: fetch,
	}
}

// Name returns the display name for a stop id, fetching and memoizing it on
// first use.
func (c *StopCache) Name(ctx context.Context, stopID string) (string, error) {
	c.mu.RLock()
	name, ok := c.names[stopID]
	c.mu.RUnlock()
	if ok {
		return name, nil
	}

	name, err := c.fetch(ctx, stopID)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.names[stopID] = name
	c.mu.Unlock()
	return name, nil
}

// Prime fans out lookups for the given stop ids in parallel. The lookups are
// independent and idempotent; errors are ignored here because callers that
// need a name go through Name and handle the miss there.
func (c *StopCache) Prime(ctx context.Context, stopIDs []string) {
	seen := make(map[string]bool, len(stopIDs))

	var wg sync.WaitGroup
	for _, id := range stopIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		wg.Add(1)
		go func(stopID string) {
			defer wg.Done()
			_, _ = c.Name(ctx, stopID)
		}(id)
	}
	wg.Wait()
}
