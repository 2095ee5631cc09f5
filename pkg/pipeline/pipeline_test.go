package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/sourcepath/pkg/build"
	"github.com/matzehuels/sourcepath/pkg/cache"
	"github.com/matzehuels/sourcepath/pkg/compiler"
	"github.com/matzehuels/sourcepath/pkg/config"
	perrors "github.com/matzehuels/sourcepath/pkg/errors"
	"github.com/matzehuels/sourcepath/pkg/history"
	"github.com/matzehuels/sourcepath/pkg/unit"
)

func setup(t *testing.T) (src, out string) {
	t.Helper()
	src, out = t.TempDir(), t.TempDir()
	files := map[string]string{
		"com/example/Main.java":     "package com.example;\nimport com.example.util.Log;\nclass Main {}",
		"com/example/util/Log.java": "package com.example.util;\nclass Log {}",
		"com/example/Broken.java":   "package com.example;\nimport com.example.Gone;\nclass Broken {}",
	}
	for rel, content := range files {
		path := filepath.Join(src, rel)
		os.MkdirAll(filepath.Dir(path), 0o755)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return src, out
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code perrors.Code
	}{
		{"no entries", Options{SourcePath: []string{"src"}, Output: "out"}, perrors.ErrCodeInvalidInput},
		{"no sourcepath", Options{Entries: []string{"a.A"}, Output: "out"}, perrors.ErrCodeInvalidInput},
		{"no output", Options{Entries: []string{"a.A"}, SourcePath: []string{"src"}}, ""},
		{"ok", Options{Entries: []string{"a.A"}, SourcePath: []string{"src"}, Output: "out"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := perrors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}

	noOutput := Options{Entries: []string{"a.A"}, SourcePath: []string{"src"}}
	if err := noOutput.ValidateForBuild(); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("ValidateForBuild without output = %v", err)
	}

	o := Options{Entries: []string{"a.A"}, SourcePath: []string{"src"}, Output: "out"}
	o.ValidateAndSetDefaults()
	if o.SourceSuffix != ".java" || o.ArtifactSuffix != ".class" || o.Logger == nil {
		t.Errorf("defaults not set: %+v", o)
	}
}

func TestEntryNames(t *testing.T) {
	src, _ := setup(t)
	o := Options{
		Entries:      []string{"com.example.Main", filepath.Join(src, "com", "example", "util", "Log.java")},
		SourcePath:   []string{src},
		SourceSuffix: ".java",
	}
	names, err := o.EntryNames(o.SearchPath())
	if err != nil {
		t.Fatalf("EntryNames: %v", err)
	}
	if diff := cmp.Diff([]string{"com.example.Main", "com.example.util.Log"}, unit.Strings(names)); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}

	o.Entries = []string{"not..valid"}
	if _, err := o.EntryNames(o.SearchPath()); err == nil {
		t.Error("expected error for invalid entry")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.SourcePath = []string{"src"}
	cfg.Output = "out"
	cfg.Entries = []string{"a.A"}
	cfg.Compiler.Command = "cat"

	o := OptionsFromConfig(cfg)
	if o.CompilerCommand != "cat" || o.Output != "out" || len(o.Entries) != 1 {
		t.Errorf("OptionsFromConfig() = %+v", o)
	}
}

func TestRunnerBuildRecordsHistory(t *testing.T) {
	ctx := context.Background()
	src, out := setup(t)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store, err := history.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, store, nil)
	defer r.Close()

	opts := Options{Entries: []string{"com.example.Main"}, SourcePath: []string{src}, Output: out}
	res, err := r.Build(ctx, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Result.Compiled) != 2 {
		t.Errorf("compiled %v", res.Result.Compiled)
	}
	if _, err := os.Stat(filepath.Join(out, "com", "example", "util", "Log.class")); err != nil {
		t.Errorf("artifact missing: %v", err)
	}

	rec, err := store.Get(ctx, res.Record.ID)
	if err != nil {
		t.Fatalf("history Get: %v", err)
	}
	if !rec.OK() || len(rec.Compiled) != 2 {
		t.Errorf("record = %+v", rec)
	}

	// Second build into a fresh root is served from the cache.
	opts.Output = t.TempDir()
	again, err := r.Build(ctx, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if again.Result.CacheHits != 2 {
		t.Errorf("CacheHits = %d, want 2", again.Result.CacheHits)
	}
}

func TestRunnerBuildFailureRecorded(t *testing.T) {
	ctx := context.Background()
	src, out := setup(t)
	store, _ := history.NewFileStore(t.TempDir())
	r := NewRunner(nil, nil, store, nil)

	res, err := r.Build(ctx, Options{Entries: []string{"com.example.Broken"}, SourcePath: []string{src}, Output: out})
	var nf *build.UnitNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *build.UnitNotFoundError, got %v", err)
	}
	if res == nil || res.Result != nil || res.Record == nil {
		t.Fatalf("output = %+v", res)
	}
	rec, err := store.Get(ctx, res.Record.ID)
	if err != nil {
		t.Fatalf("history Get: %v", err)
	}
	if rec.ErrorCode != string(perrors.ErrCodeUnitNotFound) {
		t.Errorf("ErrorCode = %q", rec.ErrorCode)
	}
}

func TestRunnerDiscover(t *testing.T) {
	src, out := setup(t)
	r := NewRunner(nil, nil, nil, nil)
	plan, err := r.Discover(context.Background(), Options{Entries: []string{"com.example.Main"}, SourcePath: []string{src}, Output: out})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if plan.Graph.NodeCount() != 2 {
		t.Errorf("NodeCount = %d", plan.Graph.NodeCount())
	}
}

func TestRunnerCompiler(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	if _, ok := r.Compiler(Options{}).Inner.(*compiler.Descriptor); !ok {
		t.Error("empty command should select the descriptor compiler")
	}
	c := r.Compiler(Options{CompilerCommand: "cat", Refresh: true})
	if _, ok := c.Inner.(*compiler.Exec); !ok || !c.Refresh {
		t.Errorf("Compiler() = %+v", c)
	}
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()

	c, err := OpenCache(ctx, config.CacheConfig{Backend: config.BackendFile, Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("OpenCache(file) = %T", c)
	}
	if c, _ := OpenCache(ctx, config.CacheConfig{Backend: config.BackendNone}); c == nil {
		t.Error("OpenCache(none) returned nil")
	}
	if _, err := OpenCache(ctx, config.CacheConfig{Backend: "memcached"}); !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
		t.Errorf("unknown backend error = %v", err)
	}

	s, err := OpenHistory(ctx, config.HistoryConfig{Backend: config.BackendFile, Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	if _, ok := s.(*history.FileStore); !ok {
		t.Errorf("OpenHistory(file) = %T", s)
	}
	if s, _ := OpenHistory(ctx, config.HistoryConfig{Backend: config.BackendNone}); s != (history.NopStore{}) {
		t.Errorf("OpenHistory(none) = %T", s)
	}
}

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := DefaultCacheDir()
	if err != nil || dir != filepath.Join("/tmp/xdg", "sourcepath", "artifacts") {
		t.Errorf("DefaultCacheDir() = %q, %v", dir, err)
	}
}
