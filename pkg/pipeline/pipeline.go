// Package pipeline wires configuration, compiler, cache and history around
// the build driver.
//
// The CLI and the HTTP API both run builds through a [Runner] so that entry
// point handling, cache selection and history recording behave the same way
// everywhere.
//
// # Usage
//
//	runner := pipeline.NewRunner(artifactCache, nil, store, logger)
//	opts := pipeline.OptionsFromConfig(cfg)
//	opts.Entries = []string{"com.example.Main"}
//	out, err := runner.Build(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(out.Result.Compiled), "units compiled")
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sourcepath/pkg/build"
	"github.com/matzehuels/sourcepath/pkg/config"
	"github.com/matzehuels/sourcepath/pkg/errors"
	"github.com/matzehuels/sourcepath/pkg/searchpath"
	"github.com/matzehuels/sourcepath/pkg/unit"
)

// Options describes one build or discovery run.
type Options struct {
	Entries        []string `json:"entries"`    // unit names or source file paths
	SourcePath     []string `json:"sourcepath"` // search-path roots in order
	Output         string   `json:"output"`
	SourceSuffix   string   `json:"source_suffix,omitempty"`
	ArtifactSuffix string   `json:"artifact_suffix,omitempty"`
	External       []string `json:"external,omitempty"`

	CompilerCommand string `json:"compiler_command,omitempty"` // "" selects the descriptor compiler
	Refresh         bool   `json:"refresh,omitempty"`          // bypass cache reads

	Logger *log.Logger `json:"-"`
}

// OptionsFromConfig copies the build-related fields of cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Entries:         cfg.Entries,
		SourcePath:      cfg.SourcePath,
		Output:          cfg.Output,
		SourceSuffix:    cfg.SourceSuffix,
		ArtifactSuffix:  cfg.ArtifactSuffix,
		External:        cfg.External,
		CompilerCommand: cfg.Compiler.Command,
	}
}

// ValidateAndSetDefaults fills defaults and checks required fields.
func (o *Options) ValidateAndSetDefaults() error {
	if o.SourceSuffix == "" {
		o.SourceSuffix = build.DefaultSourceSuffix
	}
	if o.ArtifactSuffix == "" {
		o.ArtifactSuffix = build.DefaultArtifactSuffix
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if len(o.Entries) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no entry points given")
	}
	if len(o.SourcePath) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no search path given (use --sourcepath)")
	}
	return nil
}

// ValidateForBuild is ValidateAndSetDefaults plus the output root, which
// discovery alone does not need.
func (o *Options) ValidateForBuild() error {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if o.Output == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no output root given (use --output)")
	}
	return nil
}

// SearchPath returns the search path for o.
func (o *Options) SearchPath() *searchpath.SearchPath {
	return searchpath.New(o.SourcePath...)
}

// EntryNames resolves o.Entries. An entry ending in the source suffix or
// containing a path separator is treated as a file under some root.
func (o *Options) EntryNames(sp *searchpath.SearchPath) ([]unit.Name, error) {
	names := make([]unit.Name, 0, len(o.Entries))
	for _, e := range o.Entries {
		var (
			n   unit.Name
			err error
		)
		if unit.IsFileEntry(e, o.SourceSuffix) {
			n, err = sp.NameOf(e, o.SourceSuffix)
		} else {
			n, err = unit.Parse(e)
		}
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, nil
}
