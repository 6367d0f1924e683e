package lattice

import (
	"fmt"

	"github.com/poissonlab/fiberlat/pkg/errors"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Deformation model modes.
const (
	ModeClosedForm = "closedform"
	ModeDecay      = "decay"
)

// ValidModes is the set of supported deformation modes.
var ValidModes = map[string]bool{
	ModeClosedForm: true,
	ModeDecay:      true,
}

// ValidateMode checks that a mode string is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return errors.New(errors.ErrCodeInvalidMode,
			"invalid mode: %q (must be one of: closedform, decay)", mode)
	}
	return nil
}

// =============================================================================
// Config - Lattice Topology
// =============================================================================

// Config describes the fixed topology of a lattice: the number of cells per
// side and the rest distance between adjacent fiber centers. Topology never
// changes after construction; only per-cell deformation state does.
type Config struct {
	Size    int     `json:"size" bson:"size"`       // cells per side (N in an N×N lattice)
	Spacing float64 `json:"spacing" bson:"spacing"` // center-to-center rest distance
}

// Validate rejects configurations the solvers cannot operate on.
// Invalid values are rejected outright, never clamped.
func (c Config) Validate() error {
	if c.Size < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "lattice size must be >= 1, got %d", c.Size)
	}
	if c.Spacing <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "spacing must be > 0, got %g", c.Spacing)
	}
	return nil
}

// Anchor returns the planar coordinate of cell (0,0): the lattice is centered
// at the origin, so the anchor is -((Size-1)/2) * Spacing on both axes.
func (c Config) Anchor() float64 {
	return -float64(c.Size-1) / 2 * c.Spacing
}

// BasePosition returns the undeformed world position of a cell's center.
// Row indexes the X axis, column the Y axis.
func (c Config) BasePosition(row, col int) (x, y float64) {
	c.checkBounds(row, col)
	anchor := c.Anchor()
	return anchor + float64(row)*c.Spacing, anchor + float64(col)*c.Spacing
}

// CellCount returns the total number of cells (Size²).
func (c Config) CellCount() int {
	return c.Size * c.Size
}

// Contains reports whether (row, col) addresses a cell inside the lattice.
func (c Config) Contains(row, col int) bool {
	return row >= 0 && row < c.Size && col >= 0 && col < c.Size
}

// checkBounds panics on out-of-range access. Indexing outside the lattice is
// a caller defect, not a recoverable runtime condition.
func (c Config) checkBounds(row, col int) {
	if !c.Contains(row, col) {
		panic(fmt.Sprintf("lattice: cell (%d,%d) outside %dx%d lattice", row, col, c.Size, c.Size))
	}
}

// =============================================================================
// Selection - Deformation Target
// =============================================================================

// Selection identifies the cell targeted by a deformation input.
// A nil *Selection means no active deformation target.
type Selection struct {
	Row int `json:"row" bson:"row"`
	Col int `json:"col" bson:"col"`
}

// =============================================================================
// Field - Immutable Deformation Factor Grid
// =============================================================================

// Field is an immutable Size×Size grid of per-cell deformation factors.
// A solver pass produces a complete Field in one shot, so consumers never
// observe a half-updated grid.
type Field struct {
	size    int
	factors []float64
}

// NewField builds a field from a row-major factor slice.
// The slice is copied. len(factors) must equal size², and every factor must
// be positive; violations are caller defects and panic.
func NewField(size int, factors []float64) Field {
	if len(factors) != size*size {
		panic(fmt.Sprintf("lattice: field length %d does not match %dx%d lattice", len(factors), size, size))
	}
	for i, f := range factors {
		if f <= 0 {
			panic(fmt.Sprintf("lattice: non-positive deformation factor %g at index %d", f, i))
		}
	}
	out := make([]float64, len(factors))
	copy(out, factors)
	return Field{size: size, factors: out}
}

// UniformField returns a field with every factor at the neutral value 1.
func UniformField(size int) Field {
	factors := make([]float64, size*size)
	for i := range factors {
		factors[i] = 1
	}
	return Field{size: size, factors: factors}
}

// Size returns the lattice side length.
func (f Field) Size() int { return f.size }

// At returns the deformation factor of cell (row, col).
// Out-of-range access panics.
func (f Field) At(row, col int) float64 {
	if row < 0 || row >= f.size || col < 0 || col >= f.size {
		panic(fmt.Sprintf("lattice: cell (%d,%d) outside %dx%d field", row, col, f.size, f.size))
	}
	return f.factors[row*f.size+col]
}

// Factors returns a copy of the row-major factor slice.
func (f Field) Factors() []float64 {
	out := make([]float64, len(f.factors))
	copy(out, f.factors)
	return out
}
