// Package history records the outcome of builds.
//
// Every build run through the CLI or the HTTP API produces a [Record]. Records
// are kept in a [Store]:
//   - [FileStore]: one JSON file per build (CLI default)
//   - [MongoStore]: a MongoDB collection, for a shared server
//
// # Usage
//
//	store, err := history.NewFileStore("")  // ~/.cache/sourcepath/history
//	rec := history.FromResult(start, entries, opts, res, err)
//	store.Save(ctx, rec)
//	recent, err := store.List(ctx, 20)
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/sourcepath/pkg/build"
	perrors "github.com/matzehuels/sourcepath/pkg/errors"
	"github.com/matzehuels/sourcepath/pkg/unit"
)

// ErrNotFound is returned by Get for unknown build IDs.
var ErrNotFound = errors.New("build not found")

// Record is one build's outcome.
type Record struct {
	ID          string        `json:"id" bson:"_id"`
	Started     time.Time     `json:"started" bson:"started"`
	Duration    time.Duration `json:"duration" bson:"duration"`
	Entries     []string      `json:"entries" bson:"entries"`
	SearchPath  []string      `json:"sourcepath" bson:"sourcepath"`
	OutputRoot  string        `json:"output" bson:"output"`
	Compiled    []string      `json:"compiled,omitempty" bson:"compiled,omitempty"`
	Precompiled []string      `json:"precompiled,omitempty" bson:"precompiled,omitempty"`
	CacheHits   int           `json:"cache_hits" bson:"cache_hits"`
	Error       string        `json:"error,omitempty" bson:"error,omitempty"`
	ErrorCode   string        `json:"error_code,omitempty" bson:"error_code,omitempty"`
}

// OK reports whether the build succeeded.
func (r *Record) OK() bool { return r.Error == "" }

// Store persists build records. Implementations must be safe for concurrent use.
type Store interface {
	// Save inserts or replaces the record with r.ID.
	Save(ctx context.Context, r *Record) error
	// Get returns the record with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)
	// List returns up to limit records, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Record, error)
	// Close releases backend resources.
	Close() error
}

// FromResult builds a record for a finished build. res is nil when err is
// set; units compiled before the failure are taken from the *build.Error.
func FromResult(started time.Time, entries []unit.Name, opts build.Options, res *build.Result, err error) *Record {
	r := &Record{
		ID:         uuid.NewString(),
		Started:    started.UTC(),
		Duration:   time.Since(started),
		Entries:    unit.Strings(entries),
		OutputRoot: opts.OutputRoot,
	}
	if opts.SearchPath != nil {
		r.SearchPath = opts.SearchPath.Roots()
	}
	if res != nil {
		r.ID = res.ID
		r.Duration = res.Duration
		r.Compiled = unit.Strings(res.Compiled)
		r.Precompiled = unit.Strings(res.Precompiled)
		r.CacheHits = res.CacheHits
	}
	if err != nil {
		r.Error = err.Error()
		r.ErrorCode = string(perrors.GetCode(err))
		var be *build.Error
		if errors.As(err, &be) {
			r.Compiled = unit.Strings(be.Compiled)
		}
	}
	return r
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Save(context.Context, *Record) error          { return nil }
func (NopStore) Get(context.Context, string) (*Record, error) { return nil, ErrNotFound }
func (NopStore) List(context.Context, int) ([]*Record, error) { return nil, nil }
func (NopStore) Close() error                                 { return nil }

var _ Store = NopStore{}
