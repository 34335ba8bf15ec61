package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/auroramap/pkg/errors"
	"github.com/matzehuels/auroramap/pkg/graph"
	"github.com/matzehuels/auroramap/pkg/pipeline"
)

const defaultLayoutFile = "starmap.layout.json"

// layoutCommand creates the layout command for computing ring layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		src        sourceFlags
		output     string
		iterations int
		radius     float64
		spacing    float64
		seed       uint64
		rootName   string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the ring layout of a star map",
		Long: `Compute the ring layout of a star map.

Systems are placed on rings by jump distance from the root system, then
relaxed so that neighbors on a ring keep apart. The output is a layout.json
file that 'render' and 'view' accept in place of a save.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			src.apply(&opts)
			if cmd.Flags().Changed("iterations") {
				if iterations < 1 {
					return errors.New(errors.ErrCodeInvalidInput, "--iterations must be at least 1, got %d", iterations)
				}
				opts.Layout.Iterations = iterations
			}
			if cmd.Flags().Changed("radius") {
				opts.Layout.BaseRadius = radius
			}
			if cmd.Flags().Changed("spacing") {
				opts.Layout.LevelSpacing = spacing
			}
			if rootName != "" {
				opts.Layout.RootName = rootName
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}
			return c.runLayout(cmd.Context(), opts, src.noCache, output)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", defaultLayoutFile, "output file")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "relaxation iterations")
	cmd.Flags().Float64Var(&radius, "radius", 0, "radius of the first ring")
	cmd.Flags().Float64Var(&spacing, "spacing", 0, "distance between rings")
	cmd.Flags().StringVar(&rootName, "root-name", "", "root system name when no root id is known")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "faction color seed")

	return cmd
}

// runLayout loads the dataset, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, noCache bool, output string) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()
	res, err := runner.ExecuteLayout(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := graph.WriteLayoutFile(res.Document, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(res.Stats.SystemCount, res.Stats.EdgeCount, res.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render %s", appName, output))

	return nil
}
