package observability

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// UnitTiming is one compiled unit and how long compiling it took.
type UnitTiming struct {
	Unit     string
	Duration time.Duration
	Failed   bool
}

// Recorder collects compile timings and cache counts for one or more builds.
// It implements [BuildHooks] and [CacheHooks] and is safe for concurrent use.
type Recorder struct {
	NoopBuildHooks

	mu         sync.Mutex
	timings    []UnitTiming
	discovered int
	hits       int
	misses     int
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// OnUnitDiscovered counts discovered units.
func (r *Recorder) OnUnitDiscovered(context.Context, string, string, bool) {
	r.mu.Lock()
	r.discovered++
	r.mu.Unlock()
}

// OnUnitCompiled records the unit's compile time.
func (r *Recorder) OnUnitCompiled(_ context.Context, unit string, d time.Duration, err error) {
	r.mu.Lock()
	r.timings = append(r.timings, UnitTiming{Unit: unit, Duration: d, Failed: err != nil})
	r.mu.Unlock()
}

func (r *Recorder) OnCacheHit(context.Context, string) {
	r.mu.Lock()
	r.hits++
	r.mu.Unlock()
}

func (r *Recorder) OnCacheMiss(context.Context, string) {
	r.mu.Lock()
	r.misses++
	r.mu.Unlock()
}

func (r *Recorder) OnCacheSet(context.Context, string, int) {}

// Slowest returns up to n timings, longest first. Ties keep compile order.
// n <= 0 returns all of them.
func (r *Recorder) Slowest(n int) []UnitTiming {
	r.mu.Lock()
	out := slices.Clone(r.timings)
	r.mu.Unlock()

	slices.SortStableFunc(out, func(a, b UnitTiming) int {
		return cmp.Compare(b.Duration, a.Duration)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Counts returns the number of discovered units, cache hits and cache misses.
func (r *Recorder) Counts() (discovered, hits, misses int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.discovered, r.hits, r.misses
}

var (
	_ BuildHooks = (*Recorder)(nil)
	_ CacheHooks = (*Recorder)(nil)
)
