package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sourcepath/pkg/history"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded builds",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())

	return cmd
}

// historyListCommand creates the "history list" subcommand.
func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent builds, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), cfg, true, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			records, err := runner.History.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			ui := newPrinter(cmd.OutOrStdout())
			if len(records) == 0 {
				ui.info("No builds recorded")
				return nil
			}
			for _, r := range records {
				printRecordLine(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of builds to show (0 for all)")
	return cmd
}

// historyShowCommand creates the "history show" subcommand.
func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), cfg, true, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			r, err := runner.History.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRecord(newPrinter(cmd.OutOrStdout()), r)
			return nil
		},
	}
}

func printRecordLine(w io.Writer, r *history.Record) {
	status := styleOK.Render(markOK)
	if !r.OK() {
		status = styleFail.Render(markFail)
	}
	fmt.Fprintf(w, "%s %s  %s  %s\n",
		status,
		styleAccent.Render(r.ID),
		styleMuted.Render(r.Started.Local().Format(time.DateTime)),
		strings.Join(r.Entries, " "))
}

func printRecord(ui printer, r *history.Record) {
	if r.OK() {
		ui.success("Build %s", styleAccent.Render(r.ID))
	} else {
		ui.failure("Build %s", styleAccent.Render(r.ID))
	}
	ui.keyValue("started", r.Started.Local().Format(time.DateTime))
	ui.keyValue("duration", r.Duration.Round(time.Millisecond).String())
	ui.keyValue("entries", strings.Join(r.Entries, " "))
	ui.keyValue("sourcepath", strings.Join(r.SearchPath, " "))
	ui.keyValue("output", r.OutputRoot)
	ui.keyValue("compiled", fmt.Sprint(len(r.Compiled)))
	ui.keyValue("precompiled", fmt.Sprint(len(r.Precompiled)))
	ui.keyValue("cache hits", fmt.Sprint(r.CacheHits))
	if !r.OK() {
		ui.keyValue("error", styleWarn.Render(r.Error))
		ui.keyValue("code", r.ErrorCode)
	}
	for _, name := range r.Compiled {
		ui.detail("%s", name)
	}
}
