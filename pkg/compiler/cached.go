package compiler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sourcepath/pkg/cache"
	"github.com/matzehuels/sourcepath/pkg/observability"
)

// Cached wraps a compiler with an artifact cache. Cache failures are logged
// and treated as misses; they never fail a compilation.
type Cached struct {
	Inner   Compiler
	Cache   cache.Cache
	Keyer   cache.Keyer
	TTL     time.Duration
	Refresh bool        // skip cache reads, still write results
	Logger  *log.Logger // nil discards

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats counts cache lookups made through a Cached compiler.
type Stats struct {
	Hits   int
	Misses int
}

// NewCached wraps inner with c. A nil cache disables caching.
func NewCached(inner Compiler, c cache.Cache, ttl time.Duration) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Cached{Inner: inner, Cache: c, Keyer: cache.NewDefaultKeyer(), TTL: ttl}
}

// Compile returns a cached artifact when one exists, otherwise compiles and
// stores the result.
func (c *Cached) Compile(ctx context.Context, in Input) ([]byte, error) {
	key := c.keyer().ArtifactKey(c.Inner.ID(), in.Name.String(), cache.Hash(in.Source))
	hooks := observability.Cache()

	if !c.Refresh {
		data, ok, err := c.Cache.Get(ctx, key)
		if err != nil {
			c.logger().Warn("cache read failed", "unit", in.Name, "error", err)
		} else if ok {
			c.hits.Add(1)
			hooks.OnCacheHit(ctx, "artifact")
			c.logger().Debug("cache hit", "unit", in.Name)
			return data, nil
		}
	}
	c.misses.Add(1)
	hooks.OnCacheMiss(ctx, "artifact")

	data, err := c.Inner.Compile(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Set(ctx, key, data, c.TTL); err != nil {
		c.logger().Warn("cache write failed", "unit", in.Name, "error", err)
	} else {
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}
	return data, nil
}

// ID is the wrapped compiler's ID.
func (c *Cached) ID() string { return c.Inner.ID() }

// Stats returns the hit and miss counts so far.
func (c *Cached) Stats() Stats {
	return Stats{Hits: int(c.hits.Load()), Misses: int(c.misses.Load())}
}

func (c *Cached) keyer() cache.Keyer {
	if c.Keyer == nil {
		return cache.NewDefaultKeyer()
	}
	return c.Keyer
}

func (c *Cached) logger() *log.Logger {
	if c.Logger == nil {
		return discard
	}
	return c.Logger
}
