// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about builds, cache
// lookups and API requests. Nothing is reported unless hooks are registered.
// [Recorder] is a ready-made implementation that keeps per-unit compile
// timings and cache counts in memory.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBuildHooks(&myBuildHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Build().OnUnitCompiled(ctx, "com.example.Main", elapsed, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Build Hooks
// =============================================================================

// BuildHooks receives events from the build driver.
type BuildHooks interface {
	OnBuildStart(ctx context.Context, entries []string)
	OnUnitDiscovered(ctx context.Context, unit, root string, precompiled bool)
	OnUnitCompiled(ctx context.Context, unit string, duration time.Duration, err error)
	OnBuildComplete(ctx context.Context, compiled int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response sent for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(context.Context, []string)                       {}
func (NoopBuildHooks) OnUnitDiscovered(context.Context, string, string, bool)       {}
func (NoopBuildHooks) OnUnitCompiled(context.Context, string, time.Duration, error) {}
func (NoopBuildHooks) OnBuildComplete(context.Context, int, time.Duration, error)   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

// slot holds one registered hook set. Reads are lock-free so hot paths
// can fetch hooks per event.
type slot[T any] struct {
	def T
	cur atomic.Pointer[T]
}

func newSlot[T any](def T) *slot[T] { return &slot[T]{def: def} }

func (s *slot[T]) get() T {
	if p := s.cur.Load(); p != nil {
		return *p
	}
	return s.def
}

func (s *slot[T]) set(h T) { s.cur.Store(&h) }

func (s *slot[T]) reset() { s.cur.Store(nil) }

var (
	buildHooks = newSlot[BuildHooks](NoopBuildHooks{})
	cacheHooks = newSlot[CacheHooks](NoopCacheHooks{})
	httpHooks  = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetBuildHooks registers build hooks. A nil h is ignored.
func SetBuildHooks(h BuildHooks) {
	if h != nil {
		buildHooks.set(h)
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheHooks.set(h)
	}
}

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpHooks.set(h)
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks { return buildHooks.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheHooks.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpHooks.get() }

// Reset restores all hooks to their no-op defaults.
func Reset() {
	buildHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
}
