// Package cache memoizes athlete lookups for a bounded time.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/internal/domain/normalize"
	"github.com/okian/playerhunt/internal/domain/resolver"
	"github.com/okian/playerhunt/pkg/logger"
	"github.com/okian/playerhunt/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTTL     = time.Hour
	defaultMaxSize = 10000
)

type entry struct {
	entity  model.ResolvedEntity
	found   bool
	expires time.Time
}

// Lookup wraps a resolver.Lookuper and reuses results per normalized name.
// Absent results are cached as well. The least recently used name is
// evicted once the cache is full.
type Lookup struct {
	next    resolver.Lookuper
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	logger  logger.Logger

	items    *expirable.LRU[string, *entry]
	inflight singleflight.Group
}

// New creates a cache in front of next.
func New(next resolver.Lookuper, opts ...Option) *Lookup {
	c := &Lookup{
		next:    next,
		ttl:     defaultTTL,
		maxSize: defaultMaxSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxSize < 0 {
		c.maxSize = 0
	}
	c.items = expirable.NewLRU[string, *entry](c.maxSize, nil, c.ttl)
	c.logger = logger.OrNamed(c.logger, "cache")
	return c
}

// Lookup returns a cached result or delegates to the wrapped lookuper.
// Concurrent misses for the same name share one delegated call. The
// delegated call is detached from ctx so one caller giving up does not
// fail the lookup for the others, and a result obtained after ctx is
// done is returned but never cached.
func (c *Lookup) Lookup(ctx context.Context, name string) (model.ResolvedEntity, bool) {
	key := normalize.Key(name)
	if key == "" {
		return model.ResolvedEntity{}, false
	}

	if e, ok := c.get(key); ok {
		metrics.RecordLookupCacheHit()
		return e.entity, e.found
	}
	metrics.RecordLookupCacheMiss()

	v, _, _ := c.inflight.Do(key, func() (any, error) {
		ent, found := c.next.Lookup(context.WithoutCancel(ctx), name)
		e := &entry{entity: ent, found: found, expires: c.now().Add(c.ttl)}
		if ctx.Err() != nil {
			c.logger.Debug(ctx, "lookup not cached, caller done",
				logger.String("name", name), logger.Error(ctx.Err()))
			return e, nil
		}
		c.items.Add(key, e)
		return e, nil
	})
	e, _ := v.(*entry)
	if e == nil {
		return model.ResolvedEntity{}, false
	}
	return e.entity, e.found
}

// get also honours the injected clock, which the LRU's own expiry does not.
func (c *Lookup) get(key string) (*entry, bool) {
	e, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		c.items.Remove(key)
		return nil, false
	}
	return e, true
}

// Forget drops the cached result for name.
func (c *Lookup) Forget(name string) {
	c.items.Remove(normalize.Key(name))
}

// Purge drops every cached result.
func (c *Lookup) Purge() {
	c.items.Purge()
}

// Len returns the number of cached names, including expired ones not yet
// evicted.
func (c *Lookup) Len() int {
	return c.items.Len()
}
