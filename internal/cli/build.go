package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sourcepath/pkg/build"
	"github.com/matzehuels/sourcepath/pkg/config"
	perrors "github.com/matzehuels/sourcepath/pkg/errors"
	"github.com/matzehuels/sourcepath/pkg/observability"
	"github.com/matzehuels/sourcepath/pkg/pipeline"
)

// buildFlags holds flags for the build command.
type buildFlags struct {
	sourceFlags
	compilerCmd string
	noCache     bool
	noHistory   bool
	refresh     bool
	list        bool
	timings     bool
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	flags := buildFlags{}

	cmd := &cobra.Command{
		Use:   "build [entries...]",
		Short: "Compile entry points and every unit they reference",
		Long: `Compile the given entry points and everything they reference, transitively.

Entries are unit names (com.example.Main) or source files inside a search path
root (src/com/example/Main.java). Units already present as artifacts on the
search path are used as-is and not compiled.

Flags override values from sourcepath.toml.`,
		Example: `  sourcepath build -s src -d out com.example.Main
  sourcepath build -s src:lib -d out src/com/example/Main.java
  sourcepath build --compiler-cmd 'javac -d out {path}' com.example.Main`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(cfg, args)
			if flags.compilerCmd != "" {
				opts.CompilerCommand = flags.compilerCmd
			}
			opts.Refresh = flags.refresh
			return c.runBuild(cmd, cfg, opts, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.compilerCmd, "compiler-cmd", "", "external compiler command ({unit}, {namespace}, {path} are expanded)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompile even when a cached artifact exists")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "do not record this build")
	cmd.Flags().BoolVarP(&flags.list, "list", "l", false, "list every artifact written")
	cmd.Flags().BoolVar(&flags.timings, "timings", false, "show the slowest units to compile")

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, cfg config.Config, opts pipeline.Options, flags buildFlags) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, cfg, flags.noCache, flags.noHistory)
	if err != nil {
		return err
	}
	defer runner.Close()

	var rec *observability.Recorder
	if flags.timings {
		rec = observability.NewRecorder()
		observability.SetBuildHooks(rec)
		observability.SetCacheHooks(rec)
		defer observability.Reset()
	}

	ui := newPrinter(cmd.OutOrStdout())
	prog := newProgress(c.Logger)
	out, err := runner.Build(ctx, opts)
	if err != nil {
		printBuildFailure(ui, err)
		if out != nil && out.Record != nil && !flags.noHistory {
			ui.detail("Recorded as %s", out.Record.ID)
		}
		return err
	}
	res := out.Result
	prog.done(fmt.Sprintf("Built %d units", len(res.Units)))

	ui.success("Build succeeded")
	ui.buildStats(len(res.Compiled), len(res.Precompiled), res.CacheHits)
	if flags.list {
		for _, u := range res.Units {
			if u.Compiled {
				ui.file(u.Artifact)
			}
		}
	}
	if rec != nil {
		printTimings(ui, rec.Slowest(slowestShown))
	}
	if !flags.noHistory {
		ui.nextStep("Inspect this build", appName+" history show "+res.ID)
	}
	return nil
}

// slowestShown is how many units --timings lists.
const slowestShown = 5

func printTimings(ui printer, timings []observability.UnitTiming) {
	if len(timings) == 0 {
		return
	}
	ui.info("Slowest units")
	for _, t := range timings {
		ui.keyValue(t.Duration.Round(time.Microsecond).String(), t.Unit)
	}
}

// printBuildFailure prints a one-line summary of a failed build plus the
// units compiled before it failed.
func printBuildFailure(ui printer, err error) {
	if code := perrors.GetCode(err); code != "" {
		ui.failure("Build failed %s", styleMuted.Render("("+string(code)+")"))
	} else {
		ui.failure("Build failed")
	}

	var be *build.Error
	if errors.As(err, &be) && len(be.Compiled) > 0 {
		ui.detail("%d units compiled before the failure", len(be.Compiled))
	}
	var ce *build.CompileError
	if errors.As(err, &ce) && ce.Output != "" {
		ui.block(ce.Output)
	}
}
