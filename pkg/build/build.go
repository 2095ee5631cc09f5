// Package build implements the dependency-resolving build driver.
//
// Given entry-point unit names, an ordered search path and an output root,
// a [Driver] discovers every unit the entry points transitively reference,
// compiles each one exactly once and writes its artifact beneath the output
// root at the path derived from its namespace:
//
//	<output root>/<namespace dirs>/<Unit><artifact suffix>
//
// # Passes
//
// A build runs in two passes. Discovery walks an explicit queue seeded with
// the entry points, skipping names already resolved. Each name is located on
// the search path (first match wins), parsed, checked against its directory
// and its references are enqueued. The compile pass then hands every located
// source to the [compiler.Compiler] in discovery order.
//
// Missing units and namespace mismatches are therefore reported before the
// compiler runs at all. A compile failure stops the build; artifacts already
// written are left in place.
//
// # References
//
// Single-type imports must resolve. Simple and qualified type names used in
// the body are resolved when some root contains them and ignored otherwise,
// as are names under the configured external prefixes (the platform's own
// namespaces, "java." and "javax." by default).
//
// Units found on the search path only as artifacts are taken as precompiled:
// they are neither compiled nor traversed.
package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sourcepath/pkg/compiler"
	"github.com/matzehuels/sourcepath/pkg/depgraph"
	"github.com/matzehuels/sourcepath/pkg/errors"
	"github.com/matzehuels/sourcepath/pkg/observability"
	"github.com/matzehuels/sourcepath/pkg/searchpath"
	"github.com/matzehuels/sourcepath/pkg/unit"
)

// Default suffixes and external prefixes.
const (
	DefaultSourceSuffix   = ".java"
	DefaultArtifactSuffix = ".class"
)

// DefaultExternal lists the namespace prefixes provided by the platform.
var DefaultExternal = []string{"java.", "javax."}

// Options configures a Driver.
type Options struct {
	SearchPath     *searchpath.SearchPath // Roots searched in order (required)
	OutputRoot     string                 // Must exist when Build runs; unused by Discover
	Compiler       compiler.Compiler      // Defaults to the built-in descriptor compiler
	SourceSuffix   string                 // Defaults to ".java"
	ArtifactSuffix string                 // Defaults to ".class"
	// External holds namespace prefixes that are never resolved.
	// nil means DefaultExternal; an empty non-nil slice means none.
	External []string
	Logger   *log.Logger // nil discards
}

// WithDefaults returns a copy of o with zero fields filled in.
func (o Options) WithDefaults() Options {
	if o.Compiler == nil {
		o.Compiler = compiler.NewDescriptor()
	}
	if o.SourceSuffix == "" {
		o.SourceSuffix = DefaultSourceSuffix
	}
	if o.ArtifactSuffix == "" {
		o.ArtifactSuffix = DefaultArtifactSuffix
	}
	if o.External == nil {
		o.External = DefaultExternal
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

func (o Options) validate() error {
	if o.SearchPath == nil || o.SearchPath.Len() == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "search path is empty")
	}
	if err := errors.ValidateSuffix(o.SourceSuffix); err != nil {
		return err
	}
	if err := errors.ValidateSuffix(o.ArtifactSuffix); err != nil {
		return err
	}
	if o.SourceSuffix == o.ArtifactSuffix {
		return errors.New(errors.ErrCodeInvalidConfig, "source and artifact suffix are both %q", o.SourceSuffix)
	}
	return nil
}

// Driver runs builds. A Driver holds no per-build state, so one Driver may
// run many builds; builds sharing an output root must not run concurrently.
type Driver struct {
	opts Options
	log  *log.Logger
}

// New validates opts and returns a Driver.
func New(opts Options) (*Driver, error) {
	opts = opts.WithDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Driver{opts: opts, log: opts.Logger}, nil
}

// Options returns the driver's effective options.
func (d *Driver) Options() Options { return d.opts }

// Result describes a successful build.
type Result struct {
	ID          string
	Units       []*Unit     // every unit discovered, in discovery order
	Compiled    []unit.Name // units compiled, in compile order
	Precompiled []unit.Name // units taken from artifacts on the search path
	CacheHits   int         // compilations served from an artifact cache
	Graph       *depgraph.Graph
	Duration    time.Duration
}

// Artifact returns the output path of name's artifact.
func (d *Driver) Artifact(name unit.Name) string {
	return filepath.Join(d.opts.OutputRoot, name.Path(d.opts.ArtifactSuffix))
}

// Build discovers, compiles and writes artifacts for entries and everything
// they reference. On failure it returns a nil Result and an *Error.
func (d *Driver) Build(ctx context.Context, entries ...unit.Name) (*Result, error) {
	start := time.Now()
	hooks := observability.Build()
	hooks.OnBuildStart(ctx, unit.Strings(entries))

	res, err := d.build(ctx, entries)
	elapsed := time.Since(start)
	if err != nil {
		hooks.OnBuildComplete(ctx, len(err.Compiled), elapsed, err)
		return nil, err
	}
	res.Duration = elapsed
	hooks.OnBuildComplete(ctx, len(res.Compiled), elapsed, nil)
	d.log.Debug("build complete", "compiled", len(res.Compiled), "precompiled", len(res.Precompiled), "duration", elapsed)
	return res, nil
}

func (d *Driver) build(ctx context.Context, entries []unit.Name) (*Result, *Error) {
	if err := d.checkOutputRoot(); err != nil {
		return nil, &Error{Err: err}
	}

	plan, err := d.Discover(ctx, entries...)
	if err != nil {
		return nil, &Error{Err: err}
	}

	res := &Result{
		ID:    uuid.NewString(),
		Units: plan.Units,
		Graph: plan.Graph,
	}

	stats, _ := d.opts.Compiler.(interface{ Stats() compiler.Stats })
	var before compiler.Stats
	if stats != nil {
		before = stats.Stats()
	}

	for _, u := range plan.Units {
		if u.Precompiled {
			res.Precompiled = append(res.Precompiled, u.Name)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, &Error{Err: err, Compiled: res.Compiled}
		}
		if err := d.compile(ctx, u); err != nil {
			return nil, &Error{Err: err, Compiled: res.Compiled}
		}
		res.Compiled = append(res.Compiled, u.Name)
	}

	if stats != nil {
		res.CacheHits = stats.Stats().Hits - before.Hits
	}
	return res, nil
}

func (d *Driver) checkOutputRoot() error {
	info, err := os.Stat(d.opts.OutputRoot)
	if err != nil || !info.IsDir() {
		return &OutputRootMissingError{Path: d.opts.OutputRoot}
	}
	return nil
}

// compile runs the compiler for u and writes its artifact.
func (d *Driver) compile(ctx context.Context, u *Unit) error {
	start := time.Now()
	data, err := d.opts.Compiler.Compile(ctx, compiler.Input{
		Name:      u.Name,
		Namespace: u.Name.NamespaceString(),
		Source:    u.data,
		Path:      u.Location.Path,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		cerr := &CompileError{Unit: u.Name, Err: err}
		if exitErr, ok := err.(*compiler.ExitError); ok {
			cerr.Output = string(exitErr.Stderr)
		}
		observability.Build().OnUnitCompiled(ctx, u.Name.String(), time.Since(start), cerr)
		return cerr
	}

	path := d.Artifact(u.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact directory for %s: %w", u.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact for %s: %w", u.Name, err)
	}
	u.Compiled = true
	u.Artifact = path

	elapsed := time.Since(start)
	observability.Build().OnUnitCompiled(ctx, u.Name.String(), elapsed, nil)
	d.log.Debug("compiled", "unit", u.Name, "path", path, "duration", elapsed)
	return nil
}
