package pipeline

import (
	"context"

	"github.com/matzehuels/auroramap/pkg/errors"
	"github.com/matzehuels/auroramap/pkg/graph"
	"github.com/matzehuels/auroramap/pkg/render"
	"github.com/matzehuels/auroramap/pkg/render/sink"
)

// RenderLayout generates artifacts in the requested formats from a
// serialized layout. PNG and PDF need the rsvg-convert binary.
func RenderLayout(ctx context.Context, doc graph.Layout, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()

	g, res := graph.Import(doc)
	scene := render.Build(g, res, render.Focus{}, doc.Factions)

	var svg []byte
	svgData := func() []byte {
		if svg == nil {
			svg = sink.SVG(scene, svgOptions(opts)...)
		}
		return svg
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatSVG:
			data = svgData()
		case FormatDOT:
			data = []byte(sink.ToDOT(scene, sink.DOTOptions{Labels: !opts.NoLabels}))
		case FormatPNG:
			data, err = render.ToPNG(ctx, svgData(), opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, svgData())
		case FormatJSON:
			data, err = graph.MarshalLayout(doc)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}
		if err != nil {
			return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInternal), err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Width > 0 && opts.Height > 0 {
		out = append(out, sink.WithSize(opts.Width, opts.Height))
	}
	if opts.NoLabels {
		out = append(out, sink.WithoutLabels())
	}
	if opts.Legend {
		out = append(out, sink.WithLegend())
	}
	if opts.Interactive {
		out = append(out, sink.WithInteractive())
	}
	return out
}
