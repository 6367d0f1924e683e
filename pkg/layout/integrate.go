// Package layout derives world positions for lattice cells from a
// deformation factor field.
//
// In the decay model, cell positions cannot stay on the rest grid: a swollen
// fiber needs more room than its neighbors. Instead of clamping scales after
// the fact, the integrator accumulates spacing row-by-row and column-by-column
// so that the gap between adjacent centers grows with their average
// deformation. Positive factors therefore yield strictly monotonic
// coordinates, and overlap is prevented by construction rather than by a
// post-hoc clamp.
//
// The closed-form model keeps its static anchored grid and does not use this
// package; see [Static].
package layout

import (
	"github.com/poissonlab/fiberlat/pkg/lattice"
)

// Position is a cell center in the lattice plane.
type Position struct {
	X float64
	Y float64
}

// Grid holds one position per lattice cell in row-major order.
type Grid struct {
	size      int
	positions []Position
}

// Size returns the lattice side length.
func (g Grid) Size() int { return g.size }

// At returns the position of cell (row, col). Out-of-range access panics on
// the underlying slice.
func (g Grid) At(row, col int) Position {
	return g.positions[row*g.size+col]
}

// Integrate converts a deformation factor field into cell positions.
//
// Row 0 and column 0 are pinned at the lattice anchor. Every further step
// advances by the spacing unit scaled with the average factor of the two
// adjacent cells:
//
//	x(i,j) = x(i-1,j) + spacing * (f(i-1,j) + f(i,j)) / 2
//	y(i,j) = y(i,j-1) + spacing * (f(i,j-1) + f(i,j)) / 2
//
// The left-to-right / top-to-bottom order is load-bearing: row i depends on
// row i-1, so the accumulation is not commutative.
func Integrate(cfg lattice.Config, field lattice.Field) Grid {
	size := cfg.Size
	anchor := cfg.Anchor()
	positions := make([]Position, size*size)

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			idx := row*size + col
			if row == 0 {
				positions[idx].X = anchor
			} else {
				step := cfg.Spacing * (field.At(row-1, col) + field.At(row, col)) / 2
				positions[idx].X = positions[(row-1)*size+col].X + step
			}
			if col == 0 {
				positions[idx].Y = anchor
			} else {
				step := cfg.Spacing * (field.At(row, col-1) + field.At(row, col)) / 2
				positions[idx].Y = positions[row*size+col-1].Y + step
			}
		}
	}
	return Grid{size: size, positions: positions}
}

// Static returns the undeformed anchored grid positions. This is the
// closed-form model's position field: fiber centers never move there.
func Static(cfg lattice.Config) Grid {
	size := cfg.Size
	positions := make([]Position, size*size)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			x, y := cfg.BasePosition(row, col)
			positions[row*size+col] = Position{X: x, Y: y}
		}
	}
	return Grid{size: size, positions: positions}
}
