// Package cache stores compiled artifacts keyed by what produced them.
//
// A build that sees the same source text, unit name and compiler as an
// earlier build can take the artifact from the cache instead of invoking
// the compiler again. Three backends implement [Cache]:
//
//   - [FileCache]: hashed files under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer] so callers never build key strings by hand.
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long cached artifacts stay valid.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the data for key and whether it was present.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// NullCache stores nothing and misses on every Get. It backs --no-cache.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
