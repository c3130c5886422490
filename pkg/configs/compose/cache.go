package compose

import (
	"context"
	"sync"

	"github.com/briney/FoldFlow/pkg/cmp"
	"github.com/briney/FoldFlow/pkg/configs/document"
	"github.com/briney/FoldFlow/pkg/utils/filewatch"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes compositions of a Resolver, keyed by entry.
//
// At most one resolution runs at once for each entry.
// A cached composition is evicted when one of its source files is modified.
// Failures are not cached.
type Cache struct {
	ctx      context.Context
	resolver *Resolver

	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]*Composition
}

// NewCache creates a Cache.
//
// File watching stops when ctx is done, and then cached compositions are evicted.
func NewCache(ctx context.Context, resolver *Resolver) *Cache {
	return &Cache{
		ctx:      ctx,
		resolver: resolver,
		entries:  map[string]*Composition{},
	}
}

// Get returns a composition of entry, resolving it if not cached.
//
// The returned Composition is a copy. Modifying it does not affect the cache.
func (c *Cache) Get(entry string) (*Composition, error) {
	if comp, ok := c.lookup(entry); ok {
		return comp, nil
	}

	v, err, _ := c.group.Do(entry, func() (any, error) {
		if comp, ok := c.lookup(entry); ok {
			return comp, nil
		}
		return c.resolve(entry)
	})
	if err != nil {
		return nil, err
	}
	return clone(v.(*Composition)), nil
}

// Len returns how many compositions are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(entry string) (*Composition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	comp, ok := c.entries[entry]
	if !ok {
		return nil, false
	}
	return clone(comp), true
}

// maxAttempts is how many times an entry is resolved again
// when its sources are modified during resolution.
const maxAttempts = 3

// resolve resolves entry and caches the composition.
//
// Sources are resolved again after watching starts, so that no modification is missed.
// If sources keep changing, the composition is returned without caching.
func (c *Cache) resolve(entry string) (*Composition, error) {
	comp, err := c.resolver.Resolve(entry)
	if err != nil {
		return nil, err
	}
	if len(comp.Sources) == 0 {
		c.put(entry, comp)
		return comp, nil
	}

	logger := c.resolver.logger.WithField("entry", entry)
	for range maxAttempts {
		if c.ctx.Err() != nil {
			return comp, nil
		}
		wctx, cancel, err := filewatch.UntilModifyContext(c.ctx, comp.Sources...)
		if err != nil {
			logger.WithError(err).Warn("cannot watch sources. composition is not cached")
			return comp, nil
		}

		again, err := c.resolver.Resolve(entry)
		if err != nil {
			cancel()
			return nil, err
		}
		if wctx.Err() == nil && cmp.SliceEq(again.Sources, comp.Sources) {
			c.put(entry, again)
			go func() {
				defer cancel()
				<-wctx.Done()
				logger.WithField("cause", context.Cause(wctx)).Debug("composition is evicted")
				c.evict(entry, again)
			}()
			return again, nil
		}
		cancel()
		comp = again
	}

	logger.Warn("sources are modified during resolution. composition is not cached")
	return comp, nil
}

func (c *Cache) put(entry string, comp *Composition) {
	if c.ctx.Err() != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry] = comp
}

func (c *Cache) evict(entry string, comp *Composition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[entry] == comp {
		delete(c.entries, entry)
	}
}

func clone(comp *Composition) *Composition {
	return &Composition{
		Entry:     comp.Entry,
		Tree:      document.Expand(comp.Tree),
		Fragments: append([]string{}, comp.Fragments...),
		Sources:   append([]string{}, comp.Sources...),
	}
}
