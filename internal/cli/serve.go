package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sourcepath/internal/api"
)

const shutdownTimeout = 10 * time.Second

// serveFlags holds flags for the serve command.
type serveFlags struct {
	sourceFlags
	addr      string
	noCache   bool
	noHistory bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	flags := serveFlags{addr: "127.0.0.1:8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the build HTTP API",
		Long: `Serve the build API over HTTP.

Requests to POST /builds run one build at a time. Fields missing from the
request body fall back to flags and sourcepath.toml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg, flags.noCache, flags.noHistory)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := &http.Server{
				Addr:              flags.addr,
				Handler:           api.New(runner, flags.options(cfg, nil), c.Logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				c.Logger.Info("listening", "addr", flags.addr)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			c.Logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.addr, "addr", flags.addr, "listen address")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "do not record builds")

	return cmd
}
