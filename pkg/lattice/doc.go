// Package lattice provides the core data model for fiber lattices.
//
// A lattice is a fixed Size×Size grid of parallel rigid columns ("fibers").
// Each fiber occupies one cell in base space (the 2D grid of fiber centers)
// and deforms only in cross-section: a per-cell deformation factor scales the
// planar extent, while the height axis compensates to keep fiber volume
// constant.
//
// # Core Types
//
//   - [Config]: immutable lattice topology (size, spacing), validated at
//     construction
//   - [Field]: immutable grid of per-cell deformation factors produced by a
//     solver pass
//   - [Snapshot]: the canonical serialization format for a fully computed
//     frame (positions + anisotropic scales per cell)
//   - [Selection]: an optional deformation target cell
//
// # Coordinate Convention
//
// The lattice plane spans the X and Y axes (rows map to X, columns to Y);
// fiber height runs along Z. The lattice is centered at the origin: cell
// (0,0) sits at the anchor -((Size-1)/2)*Spacing on both planar axes.
//
// # Concurrency
//
// All types in this package are immutable after construction. A recompute
// pass produces a fresh Snapshot; consumers hold a reference to the latest
// complete snapshot and never observe a partially updated grid.
package lattice
