package solver

import (
	"math"

	"github.com/poissonlab/fiberlat/pkg/errors"
	"github.com/poissonlab/fiberlat/pkg/lattice"
)

// Decay implements the selection-plus-decay model on an arbitrary N×N
// lattice. The selected cell takes the deformation input directly; every
// other cell is pulled toward it with exponentially decaying influence over
// Euclidean grid distance. Per-cell volume conservation is exact; there is no
// lattice-wide area conservation law in this model.
type Decay struct {
	cfg    lattice.Config
	tuning Tuning
}

// NewDecay constructs the decay model for any valid lattice configuration.
func NewDecay(cfg lattice.Config, tuning Tuning) (*Decay, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tuning.SetDefaults()
	if tuning.DecayRate <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"decay rate must be > 0, got %g", tuning.DecayRate)
	}
	return &Decay{cfg: cfg, tuning: tuning}, nil
}

// Mode returns lattice.ModeDecay.
func (m *Decay) Mode() string { return lattice.ModeDecay }

// ComputeField computes the factor field for input in [0.5, 2].
// A nil selection means no active deformation target: every factor collapses
// to the neutral value 1 and the input is not consulted.
func (m *Decay) ComputeField(input float64, sel *lattice.Selection) (lattice.Field, error) {
	if sel == nil {
		return lattice.UniformField(m.cfg.Size), nil
	}
	if !m.cfg.Contains(sel.Row, sel.Col) {
		return lattice.Field{}, errors.New(errors.ErrCodeInvalidSelection,
			"selected cell (%d,%d) outside %dx%d lattice", sel.Row, sel.Col, m.cfg.Size, m.cfg.Size)
	}
	if input < DecayInputMin || input > DecayInputMax {
		return lattice.Field{}, errors.New(errors.ErrCodeInvalidInput,
			"decay input %g outside [%g, %g]", input, DecayInputMin, DecayInputMax)
	}

	factors := make([]float64, m.cfg.CellCount())
	for row := 0; row < m.cfg.Size; row++ {
		for col := 0; col < m.cfg.Size; col++ {
			idx := row*m.cfg.Size + col
			if row == sel.Row && col == sel.Col {
				factors[idx] = input
				continue
			}
			dr := float64(row - sel.Row)
			dc := float64(col - sel.Col)
			influence := math.Exp(-m.tuning.DecayRate * math.Hypot(dr, dc))
			factors[idx] = 1 + (input-1)*influence
		}
	}
	return lattice.NewField(m.cfg.Size, factors), nil
}
