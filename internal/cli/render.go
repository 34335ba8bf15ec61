package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/auroramap/pkg/graph"
	"github.com/matzehuels/auroramap/pkg/pipeline"
	"github.com/matzehuels/auroramap/pkg/render"
)

const defaultOutputBase = "starmap"

// renderFlags holds the output flags of the render command.
type renderFlags struct {
	formats     string
	output      string
	width       float64
	height      float64
	scale       float64
	labels      bool
	legend      bool
	interactive bool
}

// apply overlays the flags that were set on opts.
func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if changed("width") {
		opts.Width = f.width
	}
	if changed("height") {
		opts.Height = f.height
	}
	if changed("scale") {
		opts.Scale = f.scale
	}
	if changed("labels") {
		opts.NoLabels = !f.labels
	}
	if changed("legend") {
		opts.Legend = f.legend
	}
	if changed("interactive") {
		opts.Interactive = f.interactive
	}
}

// renderCommand creates the render command. It runs the whole pipeline from
// a save or dataset, or renders a layout file written by 'layout'.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		src  sourceFlags
		outf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a star map to SVG, PNG, PDF or DOT",
		Long: `Render a star map to SVG, PNG, PDF or DOT.

Without an argument the map is read from the save or dataset given by flags
or the config file. With a layout.json argument (produced by 'layout') only
the render step runs.

PNG and PDF output need rsvg-convert or Inkscape on the PATH.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			src.apply(&opts)
			outf.apply(cmd, &opts)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if len(args) == 1 {
				return c.runRenderLayout(cmd.Context(), args[0], opts, src.noCache, outf.output)
			}
			return c.runRender(cmd.Context(), opts, src.noCache, outf.output)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&outf.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVarP(&outf.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().Float64Var(&outf.width, "width", 0, "image width (default: fit the map)")
	cmd.Flags().Float64Var(&outf.height, "height", 0, "image height (default: fit the map)")
	cmd.Flags().Float64Var(&outf.scale, "scale", pipeline.DefaultPNGScale, "PNG scale factor")
	cmd.Flags().BoolVar(&outf.labels, "labels", true, "draw system names")
	cmd.Flags().BoolVar(&outf.legend, "legend", false, "draw the color legend")
	cmd.Flags().BoolVar(&outf.interactive, "interactive", false, "add hover tooltips to SVG output")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, noCache bool, output string) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	warnConverter(opts.Formats)
	spinner := newSpinnerWithContext(ctx, "Rendering star map...")
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		base:      defaultOutputBase,
		output:    output,
		systems:   res.Stats.SystemCount,
		links:     res.Stats.EdgeCount,
		cacheHit:  res.CacheInfo.RenderHit,
	})
}

func (c *CLI) runRenderLayout(ctx context.Context, input string, opts pipeline.Options, noCache bool, output string) error {
	doc, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	warnConverter(opts.Formats)
	spinner := newSpinnerWithContext(ctx, "Rendering layout...")
	spinner.Start()
	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	base := strings.TrimSuffix(input, filepath.Ext(input))
	base = strings.TrimSuffix(base, ".layout")
	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		base:      base,
		output:    output,
		systems:   len(doc.Nodes),
		links:     len(doc.Edges),
		cacheHit:  cacheHit,
	})
}

// warnConverter reports early when raster output cannot be produced.
func warnConverter(formats []string) {
	for _, f := range formats {
		if (f == pipeline.FormatPNG || f == pipeline.FormatPDF) && !render.HasConverter() {
			printWarning("%s output needs rsvg-convert or inkscape on the PATH", strings.ToUpper(f))
			return
		}
	}
}

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	base      string
	output    string
	systems   int
	links     int
	cacheHit  bool
}

// writeArtifacts writes each artifact to its output path.
func writeArtifacts(p artifactWriteParams) error {
	paths := outputPaths(p.formats, p.base, p.output)
	printSuccess("Rendered %s", strings.Join(p.formats, ", "))
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("no %s output produced", format)
		}
		path := paths[format]
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(p.systems, p.links, p.cacheHit)
	return nil
}

// outputPaths maps each format to a file. A single format is written to
// output as given; with several, output is a base path that gets the format
// as extension.
func outputPaths(formats []string, base, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	if output != "" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	for _, f := range formats {
		ext := f
		if f == pipeline.FormatJSON {
			ext = "layout.json"
		}
		paths[f] = base + "." + ext
	}
	return paths
}
