package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/auroramap/pkg/metrics"
	"github.com/matzehuels/auroramap/pkg/pipeline"
	"github.com/matzehuels/auroramap/pkg/server"
	"github.com/matzehuels/auroramap/pkg/watch"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		src     sourceFlags
		addr    string
		watchOn bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the star map over HTTP",
		Long: `Serve the star map over HTTP.

The map is loaded once at startup. With --watch the save is watched and the
map reloaded whenever the game writes it; connected websocket clients on
/api/events are told about every reload. Prometheus metrics are exposed on
/metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			src.apply(&opts)
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("watch") {
				watchOn = c.cfg.Watch.Enabled
			}
			return c.runServe(cmd.Context(), opts, src.noCache, addr, watchOn)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default: server.addr)")
	cmd.Flags().BoolVarP(&watchOn, "watch", "w", false, "reload when the save changes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts pipeline.Options, noCache bool, addr string, watchOn bool) error {
	reg := metrics.NewRegistry()
	reg.Install()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	loader := pipeline.NewLoader(runner, opts)
	prog := newProgress(c.Logger)
	res, _, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	prog.done("loaded star map", "systems", res.Stats.SystemCount, "layout", res.Document.ID)

	sc := c.cfg.Server
	srv := server.New(loader, runner,
		server.WithLogger(c.Logger),
		server.WithMetrics(reg.Handler()),
		server.WithConfig(server.Config{
			Addr:            addr,
			ReadTimeout:     sc.ReadTimeout,
			WriteTimeout:    sc.WriteTimeout,
			ShutdownTimeout: sc.ShutdownTimeout,
		}),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(ctx) })
	if watchOn {
		w, err := c.newWatcher(opts)
		if err != nil {
			return err
		}
		g.Go(func() error { return w.Run(ctx, reloadFunc(c, loader)) })
	}

	printSuccess("Serving on http://%s", addr)
	printDetail("Press Ctrl+C to stop")
	return g.Wait()
}

// newWatcher watches the save, or the dataset file when there is no save.
func (c *CLI) newWatcher(opts pipeline.Options) (*watch.Watcher, error) {
	path := opts.SavePath
	if path == "" {
		path = opts.DatasetPath
	}
	return watch.New(path,
		watch.WithDebounce(c.cfg.Watch.Debounce, c.cfg.Watch.MaxWait),
		watch.WithLogger(opts.Logger),
	)
}

// reloadFunc returns a watch callback that reloads the map. Failures are
// logged; the loader keeps serving the last good map.
func reloadFunc(c *CLI, loader *pipeline.Loader) func(context.Context) {
	return func(ctx context.Context) {
		res, ok, err := loader.Reload(ctx)
		switch {
		case err != nil:
			c.Logger.Error("reload failed", "err", err)
		case ok:
			c.Logger.Info("reloaded", "systems", res.Stats.SystemCount, "layout", res.Document.ID)
		}
	}
}
