package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/auroramap/pkg/graph"
	"github.com/matzehuels/auroramap/pkg/pipeline"
)

// viewCommand opens the interactive terminal map.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		src     sourceFlags
		watchOn bool
	)

	cmd := &cobra.Command{
		Use:   "view [layout.json]",
		Short: "Explore the star map in the terminal",
		Long: `Explore the star map in the terminal.

Drag to pan, scroll or use +/- to zoom, click a system to see its colonies
and jump links, and press / to search by name. With --watch the map follows
the save as the game writes it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return c.runViewLayout(cmd.Context(), args[0])
			}
			opts := c.baseOptions()
			src.apply(&opts)
			if !cmd.Flags().Changed("watch") {
				watchOn = c.cfg.Watch.Enabled
			}
			return c.runView(cmd.Context(), opts, src.noCache, watchOn)
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVarP(&watchOn, "watch", "w", false, "reload when the save changes")

	return cmd
}

func (c *CLI) runView(ctx context.Context, opts pipeline.Options, noCache, watchOn bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// Pipeline logs would tear the alternate screen.
	opts.Logger = newLogger(io.Discard, c.Logger.GetLevel())
	runner.Logger = opts.Logger

	loader := pipeline.NewLoader(runner, opts)
	spinner := newSpinnerWithContext(ctx, "Loading star map...")
	spinner.Start()
	res, _, err := loader.Load(ctx)
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}
	spinner.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	model := NewMapModel(ctx, res, loader, c.cfg.Viewport.MaxScale)
	if watchOn {
		w, err := c.newWatcher(opts)
		if err != nil {
			return err
		}
		g.Go(func() error {
			err := w.Run(ctx, func(ctx context.Context) { _, _, _ = loader.Reload(ctx) })
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		defer cancel()
		return runProgram(ctx, model)
	})
	return g.Wait()
}

func (c *CLI) runViewLayout(ctx context.Context, input string) error {
	doc, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	g, res := graph.Import(doc)
	result := &pipeline.Result{
		Graph:    g,
		Layout:   res,
		Document: doc,
		Stats: pipeline.Stats{
			SystemCount: g.Len(),
			EdgeCount:   len(g.Edges()),
		},
	}
	return runProgram(ctx, NewMapModel(ctx, result, nil, c.cfg.Viewport.MaxScale))
}

func runProgram(ctx context.Context, m tea.Model) error {
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
