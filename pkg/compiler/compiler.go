// Package compiler defines the collaborator that turns one source unit into
// its artifact bytes.
//
// The build driver treats compilation as opaque: it hands a [Compiler] the
// unit's name, namespace and source text and writes whatever bytes come back.
// Implementations in this package:
//
//   - [Descriptor]: built-in, deterministic JSON descriptor of the unit
//   - [Exec]: an external command reading source on stdin
//   - [Func]: adapts a plain function (tests and embedding)
//   - [Cached]: wraps another compiler with an artifact cache
package compiler

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sourcepath/pkg/unit"
)

// Input is everything a compiler sees for one unit.
type Input struct {
	Name      unit.Name // fully qualified unit name
	Namespace string    // dotted namespace, "" for the root namespace
	Source    []byte    // source text
	Path      string    // file the source was read from
}

// Compiler produces an artifact for a single unit.
type Compiler interface {
	// Compile returns the artifact bytes for in.
	Compile(ctx context.Context, in Input) ([]byte, error)
	// ID identifies the compiler and its settings in cache keys.
	ID() string
}

// Func adapts a function to the Compiler interface.
type Func func(ctx context.Context, in Input) ([]byte, error)

// Compile calls f.
func (f Func) Compile(ctx context.Context, in Input) ([]byte, error) { return f(ctx, in) }

// ID returns "func". Func compilers should not share a cache.
func (f Func) ID() string { return "func" }

var discard = log.New(io.Discard)
