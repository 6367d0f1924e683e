// Package sink provides output format renderers for lattice snapshots.
//
// # Overview
//
// A "sink" transforms a computed [lattice.Snapshot] into a final output
// format. This package provides renderers for:
//
//   - SVG: Top-down heatmap of the lattice plane
//   - JSON: Snapshot data export for external tools
//   - DOT: Graphviz diagram of the lattice, convertible to SVG/PNG
//   - OBJ: Wavefront mesh of the fiber boxes for 3D viewers
//
// # SVG Output
//
// [RenderSVG] draws one square per fiber, sized by its planar scale and
// colored by its height scale, at the integrated world position:
//
//	svg := sink.RenderSVG(snapshot, sink.WithFillRatio(0.8))
//
// # DOT Output
//
// [ToDOT] produces a neato graph with pinned node positions; [RenderDOTSVG]
// and [RenderDOTPNG] rasterize it through the embedded Graphviz engine, so no
// external binary is needed.
//
// # OBJ Output
//
// [RenderOBJ] exports the vertex-level box mesh produced by
// [geometry.EmitBoxes], including the closed-form bottom-half height rule.
//
// [lattice.Snapshot]: github.com/poissonlab/fiberlat/pkg/lattice.Snapshot
// [geometry.EmitBoxes]: github.com/poissonlab/fiberlat/pkg/geometry.EmitBoxes
package sink
