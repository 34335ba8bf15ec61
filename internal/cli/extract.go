package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/auroramap/pkg/pipeline"
	"github.com/matzehuels/auroramap/pkg/starmap"
)

const defaultDatasetFile = "starmap.json"

// extractCommand reads the map of one race out of a save.
func (c *CLI) extractCommand() *cobra.Command {
	var (
		src    sourceFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a race's star map from an Aurora save",
		Long: `Extract a race's star map from an Aurora save.

The dataset holds the systems the race knows, their jump connections and the
race's colonies. It can be laid out and rendered later without the save,
using --dataset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			src.apply(&opts)
			opts.DatasetPath = ""
			if opts.SavePath == "" {
				return fmt.Errorf("extract needs a save: pass --save or set source.save")
			}
			return c.runExtract(cmd.Context(), opts, src.noCache, output)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", defaultDatasetFile, "output file")

	return cmd
}

func (c *CLI) runExtract(ctx context.Context, opts pipeline.Options, noCache bool, output string) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Reading save...")
	spinner.Start()
	ds, _, cacheHit, err := runner.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Extract failed")
		return err
	}
	spinner.Stop()

	if err := starmap.WriteDatasetFile(ds, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	colonies := 0
	if ds.Population != nil {
		colonies = len(ds.Population.Colonies)
	}
	printSuccess("Extracted game %d, race %d", ds.GameID, ds.RaceID)
	printFile(output)
	printDetail("%d systems · %d colonies", len(ds.Systems), colonies)
	printCacheStatus(cacheHit)
	printNewline()
	printNextStep("Lay out", fmt.Sprintf("%s layout --dataset %s", appName, output))
	return nil
}
