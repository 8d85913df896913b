// Package catalog provides the session-scoped known-ticker snapshot used by
// validation. The cache is an explicit object owned by each upload session,
// with an injectable invalidation hook, rather than module-level state, so
// sessions are independently testable and can run in parallel.
package catalog

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fundperf-cli/internal/perf"
	"github.com/sells-group/fundperf-cli/internal/upload"
)

// LookupFunc fetches the ticker set for a kind from the backing catalog.
type LookupFunc func(ctx context.Context, kind perf.Kind) (map[string]struct{}, error)

// Cache memoizes ticker lookups per kind for the lifetime of the session.
// A ticker added to the backing catalog mid-session is not recognized until
// the snapshot is invalidated or a new session starts.
type Cache struct {
	mu           sync.Mutex
	lookup       LookupFunc
	snapshots    map[perf.Kind]upload.TickerSet
	onInvalidate func(perf.Kind)
}

// New creates a cache over the given lookup.
func New(lookup LookupFunc) *Cache {
	return &Cache{
		lookup:    lookup,
		snapshots: make(map[perf.Kind]upload.TickerSet),
	}
}

// OnInvalidate registers a hook fired whenever a kind's snapshot is dropped.
func (c *Cache) OnInvalidate(fn func(perf.Kind)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onInvalidate = fn
}

// Known returns the ticker snapshot for a kind, fetching it on first use.
func (c *Cache) Known(ctx context.Context, kind perf.Kind) (upload.TickerSet, error) {
	c.mu.Lock()
	if set, ok := c.snapshots[kind]; ok {
		c.mu.Unlock()
		return set, nil
	}
	c.mu.Unlock()

	raw, err := c.lookup(ctx, kind)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: lookup %s tickers", kind)
	}

	set := make(upload.TickerSet, len(raw))
	for t := range raw {
		set[t] = struct{}{}
	}

	c.mu.Lock()
	c.snapshots[kind] = set
	c.mu.Unlock()
	return set, nil
}

// Invalidate drops the snapshot for a kind and fires the invalidation hook.
func (c *Cache) Invalidate(kind perf.Kind) {
	c.mu.Lock()
	delete(c.snapshots, kind)
	fn := c.onInvalidate
	c.mu.Unlock()

	if fn != nil {
		fn(kind)
	}
}
