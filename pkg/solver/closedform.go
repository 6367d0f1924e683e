package solver

import (
	"math"

	"github.com/poissonlab/fiberlat/pkg/errors"
	"github.com/poissonlab/fiberlat/pkg/lattice"
)

const (
	// closedFormSize is the only lattice size the closed-form model supports:
	// one center fiber plus its eight-neighbor ring.
	closedFormSize = 3

	// totalArea is the unconstrained cross-sectional area budget of the 3×3
	// lattice (nine unit fibers).
	totalArea = 9.0

	// neighborCount is the number of fibers compensating for the center.
	neighborCount = 8

	// fiberHalfWidth is the planar half-extent of a unit fiber, used to
	// locate the expanding center's far edge in the anti-overlap bound.
	fiberHalfWidth = 0.2

	// minNeighborArea is the smallest cross-sectional area a neighbor may be
	// squeezed to. MaxExpansion must satisfy
	// MaxExpansion² <= totalArea - neighborCount*minNeighborArea, otherwise
	// exact conservation would force negative neighbor area.
	minNeighborArea = 0.5
)

// ClosedForm implements exact area conservation on a fixed 3×3 lattice.
//
// The center fiber (the cell nearest the origin) expands isotropically in the
// plane; the eight neighbors contract so the total occupied area stays at
// totalArea. When the area-exact contraction would push a neighbor into the
// expanding center, the anti-overlap bound wins and exact conservation is
// deliberately sacrificed: neighbors keep more of their area than the budget
// allows, so total occupied area exceeds totalArea rather than letting fibers
// touch.
type ClosedForm struct {
	cfg    lattice.Config
	tuning Tuning
}

// NewClosedForm constructs the closed-form model. The lattice must be exactly
// 3×3, and the tuning constants must keep neighbor areas positive at full
// expansion.
func NewClosedForm(cfg lattice.Config, tuning Tuning) (*ClosedForm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Size != closedFormSize {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"closed-form model requires a 3x3 lattice, got %dx%d", cfg.Size, cfg.Size)
	}
	tuning.SetDefaults()
	if tuning.MinSpacing < MinSpacingFloor {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"min spacing %g below floor %g", tuning.MinSpacing, MinSpacingFloor)
	}
	if maxArea := totalArea - neighborCount*minNeighborArea; tuning.MaxExpansion*tuning.MaxExpansion > maxArea {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"max expansion %g would squeeze neighbors below minimum area (max expansion² must be <= %g)",
			tuning.MaxExpansion, maxArea)
	}
	return &ClosedForm{cfg: cfg, tuning: tuning}, nil
}

// Mode returns lattice.ModeClosedForm.
func (m *ClosedForm) Mode() string { return lattice.ModeClosedForm }

// ComputeField computes the nine deformation factors for input in [0,1].
// The selection is ignored: the deformation target is always the implicit
// center fiber.
func (m *ClosedForm) ComputeField(input float64, _ *lattice.Selection) (lattice.Field, error) {
	if input < ClosedFormInputMin || input > ClosedFormInputMax {
		return lattice.Field{}, errors.New(errors.ErrCodeInvalidInput,
			"closed-form input %g outside [%g, %g]", input, ClosedFormInputMin, ClosedFormInputMax)
	}

	expansion := 1 + input*(m.tuning.MaxExpansion-1)

	// Contraction that would exactly conserve total area if all eight
	// neighbors contracted uniformly.
	remainingArea := totalArea - expansion*expansion
	areaBased := math.Sqrt(remainingArea / neighborCount)

	factors := make([]float64, m.cfg.CellCount())
	for row := 0; row < m.cfg.Size; row++ {
		for col := 0; col < m.cfg.Size; col++ {
			x, y := m.cfg.BasePosition(row, col)
			d := math.Hypot(x, y)
			if d == 0 {
				// Center fiber: the cell at the origin.
				factors[row*m.cfg.Size+col] = expansion
				continue
			}
			factors[row*m.cfg.Size+col] = m.contraction(d, expansion, areaBased)
		}
	}
	return lattice.NewField(m.cfg.Size, factors), nil
}

// contraction returns the neighbor factor at planar distance d from the
// center: area-exact unless that would overlap the expanded center, in which
// case the largest safe contraction wins.
func (m *ClosedForm) contraction(d, expansion, areaBased float64) float64 {
	// Largest contraction keeping this neighbor's near edge at least
	// MinSpacing away from the expanding center's far edge.
	maxSafe := (d - expansion*fiberHalfWidth - m.tuning.MinSpacing) / d
	return math.Max(maxSafe, areaBased)
}
