// Package sink writes a [render.Scene] in concrete output formats.
//
// # Overview
//
//   - SVG: standalone vector image with level rings, gate gradients,
//     glow, labels, tooltips and an optional legend ([SVG])
//   - DOT: Graphviz source with pinned positions ([ToDOT]), rendered by
//     the neato engine through go-graphviz ([RenderDOT])
//   - Terminal: a colored character grid for the interactive viewer
//     ([Terminal])
//
// PDF and PNG are produced from the SVG with [render.ToPDF] and
// [render.ToPNG].
//
// # SVG Options
//
//   - [WithSize]: Image size; the map is fitted to it
//   - [WithTransform]: Fixed pan and zoom from an interactive view
//   - [WithoutLabels]: Hide system labels
//   - [WithLegend]: Add the color legend
//   - [WithInteractive]: Dim unrelated systems on hover
package sink
