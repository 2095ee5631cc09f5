package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sourcepath/pkg/buildinfo"
	"github.com/matzehuels/sourcepath/pkg/config"
	"github.com/matzehuels/sourcepath/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "sourcepath"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "sourcepath compiles a unit and everything it references",
		Long: `sourcepath is a dependency-resolving build driver. Given entry-point units,
an ordered search path and an output root, it finds every unit the entry points
reference, compiles each one once and writes artifacts under the output root at
paths derived from their namespaces.`,
		Version:      buildinfo.Read().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.FileName+" if present)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Runner Factory
// =============================================================================

// loadConfig reads the --config file, or ./sourcepath.toml when present.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, found, err := config.LoadOptional(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if found {
		c.Logger.Debug("loaded config", "path", c.configFile())
	}
	return cfg, nil
}

func (c *CLI) configFile() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.FileName
}

// newRunner opens the configured cache and history backends.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache, noHistory bool) (*pipeline.Runner, error) {
	if noCache {
		cfg.Cache.Backend = config.BackendNone
	}
	if noHistory {
		cfg.History.Backend = config.BackendNone
	}
	r, err := pipeline.NewRunnerFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	r.Logger = c.Logger
	return r, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the artifact cache directory using XDG standard
// (~/.cache/sourcepath/artifacts).
func cacheDir() (string, error) {
	return pipeline.DefaultCacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// splitList splits a search path given on the command line. Both the OS
// path-list separator and commas are accepted.
func splitList(s string) []string {
	var out []string
	for _, part := range filepath.SplitList(s) {
		for _, p := range strings.Split(part, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// sourceFlags are the flags shared by commands that read a search path.
type sourceFlags struct {
	sourcepath     string
	output         string
	sourceSuffix   string
	artifactSuffix string
	external       string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.sourcepath, "sourcepath", "s", "", "search path roots, separated by '"+string(os.PathListSeparator)+"' or ','")
	cmd.Flags().StringVarP(&f.output, "output", "d", "", "output root (must exist)")
	cmd.Flags().StringVar(&f.sourceSuffix, "source-suffix", "", "source file suffix (default .java)")
	cmd.Flags().StringVar(&f.artifactSuffix, "artifact-suffix", "", "artifact file suffix (default .class)")
	cmd.Flags().StringVar(&f.external, "external", "", "comma-separated namespace prefixes never resolved (default java.,javax.)")
}

// options merges config values with flags and positional entries.
// Flags win over the config file.
func (f *sourceFlags) options(cfg config.Config, args []string) pipeline.Options {
	opts := pipeline.OptionsFromConfig(cfg)
	if len(args) > 0 {
		opts.Entries = args
	}
	if f.sourcepath != "" {
		opts.SourcePath = splitList(f.sourcepath)
	}
	if f.output != "" {
		opts.Output = f.output
	}
	if f.sourceSuffix != "" {
		opts.SourceSuffix = f.sourceSuffix
	}
	if f.artifactSuffix != "" {
		opts.ArtifactSuffix = f.artifactSuffix
	}
	if f.external != "" {
		opts.External = strings.Split(f.external, ",")
	}
	return opts
}
