package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sourcepath/pkg/build"
	"github.com/matzehuels/sourcepath/pkg/cache"
	"github.com/matzehuels/sourcepath/pkg/compiler"
	"github.com/matzehuels/sourcepath/pkg/history"
	"github.com/matzehuels/sourcepath/pkg/unit"
)

// Runner runs builds with caching and history.
//
// The Runner holds no per-build state. Multiple goroutines may share one,
// but builds writing to the same output root must be serialised by the caller.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	History history.Store
	TTL     time.Duration
	Logger  *log.Logger
}

// NewRunner creates a runner.
// A nil cache disables caching, a nil keyer selects DefaultKeyer and a nil
// store disables history.
func NewRunner(c cache.Cache, keyer cache.Keyer, store history.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if store == nil {
		store = history.NopStore{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		History: store,
		TTL:     cache.TTLArtifact,
		Logger:  logger,
	}
}

// Output is the outcome of Runner.Build.
type Output struct {
	Result *build.Result   // nil when the build failed
	Record *history.Record // always set
}

// Build runs a full build and records it. The returned error is the build
// error; a failure to save history is only logged.
func (r *Runner) Build(ctx context.Context, opts Options) (*Output, error) {
	started := time.Now()
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	d, entries, err := r.Driver(opts)
	if err != nil {
		return nil, err
	}

	res, buildErr := d.Build(ctx, entries...)
	rec := history.FromResult(started, entries, d.Options(), res, buildErr)
	if err := r.History.Save(ctx, rec); err != nil {
		r.Logger.Warn("failed to record build", "id", rec.ID, "error", err)
	}

	if buildErr != nil {
		return &Output{Record: rec}, buildErr
	}
	r.Logger.Info("build complete",
		"compiled", len(res.Compiled),
		"precompiled", len(res.Precompiled),
		"cache_hits", res.CacheHits,
		"duration", res.Duration)
	return &Output{Result: res, Record: rec}, nil
}

// Discover runs the discovery pass only.
func (r *Runner) Discover(ctx context.Context, opts Options) (*build.Plan, error) {
	d, entries, err := r.Driver(opts)
	if err != nil {
		return nil, err
	}
	return d.Discover(ctx, entries...)
}

// Driver builds a driver for opts and resolves its entry points.
func (r *Runner) Driver(opts Options) (*build.Driver, []unit.Name, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, fmt.Errorf("invalid options: %w", err)
	}

	sp := opts.SearchPath()
	entries, err := opts.EntryNames(sp)
	if err != nil {
		return nil, nil, err
	}
	d, err := build.New(build.Options{
		SearchPath:     sp,
		OutputRoot:     opts.Output,
		Compiler:       r.Compiler(opts),
		SourceSuffix:   opts.SourceSuffix,
		ArtifactSuffix: opts.ArtifactSuffix,
		External:       opts.External,
		Logger:         opts.Logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return d, entries, nil
}

// Compiler returns the cache-wrapped compiler selected by opts.
func (r *Runner) Compiler(opts Options) *compiler.Cached {
	var inner compiler.Compiler = compiler.NewDescriptor()
	if opts.CompilerCommand != "" {
		inner = compiler.NewExec(opts.CompilerCommand)
	}
	c := compiler.NewCached(inner, r.Cache, r.TTL)
	c.Keyer = r.Keyer
	c.Refresh = opts.Refresh
	c.Logger = opts.Logger
	return c
}

// Close releases the cache and history store.
func (r *Runner) Close() error {
	cerr := r.Cache.Close()
	herr := r.History.Close()
	if cerr != nil {
		return cerr
	}
	return herr
}

// applyLogger uses the runner's logger if opts has none.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
