package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sourcepath/pkg/build"
	"github.com/matzehuels/sourcepath/pkg/render"
)

// Graph output formats.
const (
	formatDOT  = "dot"
	formatJSON = "json"
	formatSVG  = "svg"
)

// graphFlags holds flags for the graph command.
type graphFlags struct {
	sourceFlags
	format   string
	output   string
	detailed bool
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	flags := graphFlags{format: formatDOT}

	cmd := &cobra.Command{
		Use:   "graph [entries...]",
		Short: "Discover references and export the unit graph",
		Long: `Run discovery only and export the graph of units and references.

Nothing is compiled and no output root is needed. Units that would be taken
from precompiled artifacts are drawn dashed; reference cycles are drawn red.`,
		Example: `  sourcepath graph -s src com.example.Main
  sourcepath graph -s src --format svg -o graph.svg com.example.Main`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(cfg, args)

			runner, err := c.newRunner(cmd.Context(), cfg, true, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			plan, err := runner.Discover(cmd.Context(), opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Discovered %d units", len(plan.Units)))
			if cycles := plan.Graph.Cycles(); len(cycles) > 0 {
				c.Logger.Info("reference cycles found", "count", len(cycles))
			}

			return c.writeGraph(cmd, plan, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.format, "format", "f", formatDOT, "output format: dot, json, svg")
	cmd.Flags().StringVarP(&flags.output, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "include search path root and kind in node labels")

	return cmd
}

func (c *CLI) writeGraph(cmd *cobra.Command, plan *build.Plan, flags graphFlags) error {
	data, err := encodeGraph(cmd, plan, flags)
	if err != nil {
		return err
	}

	if flags.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(flags.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", flags.output, err)
	}
	ui := newPrinter(cmd.OutOrStdout())
	ui.success("Wrote %s graph", strings.ToUpper(flags.format))
	ui.file(flags.output)
	return nil
}

func encodeGraph(cmd *cobra.Command, plan *build.Plan, flags graphFlags) ([]byte, error) {
	switch strings.ToLower(flags.format) {
	case formatDOT:
		return []byte(render.ToDOT(plan.Graph, render.Options{Detailed: flags.detailed})), nil
	case formatSVG:
		return render.RenderSVG(cmd.Context(), render.ToDOT(plan.Graph, render.Options{Detailed: flags.detailed}))
	case formatJSON:
		var buf bytes.Buffer
		if err := render.WriteJSON(plan.Graph, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want dot, json or svg)", flags.format)
	}
}
