// Package render turns a laid-out star map into drawable primitives.
//
// # Overview
//
// [Build] converts a [starmap.Graph] and its [layout.Result] into a
// [Scene]: level rings, styled edges, styled nodes with labels, and a
// legend. The scene is independent of any output format; the [sink]
// subpackage writes it as SVG, Graphviz DOT or a terminal raster.
//
// # Style Rules
//
// Node color is decided in priority order: the root system is gold, a
// system holding a foreign-controlled colony takes that faction's color,
// colonized systems are tinted by population tier and uninhabited systems
// are grey. Node size grows with the logarithm of population.
//
// Edges are colored by jump gates: gated at both ends, gated at one end
// (a gradient from the gated end), or ungated.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := sink.SVG(scene)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
package render
