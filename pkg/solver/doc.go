// Package solver computes per-cell deformation factor fields for a fiber
// lattice from a single scalar deformation input.
//
// Two models implement the [Model] interface:
//
//   - [ClosedForm]: exact cross-sectional area conservation on a fixed 3×3
//     lattice with an implicit center fiber. Expanding the center forces the
//     eight neighbors to contract so the total occupied area stays constant,
//     unless the anti-overlap clamp fires (non-overlap always wins over exact
//     conservation).
//   - [Decay]: an arbitrary N×N lattice with an explicit selected cell. The
//     selected cell takes the input directly; the effect falls off with
//     exponential spatial decay. Per-cell volume conservation is exact, but
//     there is no lattice-wide area conservation law.
//
// Both models are pure: a field is recomputed from scratch from the current
// input, with no accumulated state across frames.
package solver
