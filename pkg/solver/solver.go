package solver

import (
	"github.com/poissonlab/fiberlat/pkg/errors"
	"github.com/poissonlab/fiberlat/pkg/lattice"
)

// =============================================================================
// Tunable Constants - Single Source of Truth
// =============================================================================

const (
	// DefaultMaxExpansion is the center fiber's planar scale at full input.
	DefaultMaxExpansion = 2.1

	// DefaultMinSpacing is the minimum edge-to-edge gap kept between the
	// expanding center and a contracting neighbor.
	DefaultMinSpacing = 0.1

	// MinSpacingFloor is the smallest permitted MinSpacing; below this,
	// neighbors become invisibly thin slivers.
	MinSpacingFloor = 0.05

	// DefaultDecayRate controls how tightly the decay model localizes the
	// deformation effect. Larger values decay faster.
	DefaultDecayRate = 1.5
)

// Input ranges per model.
const (
	ClosedFormInputMin = 0.0
	ClosedFormInputMax = 1.0
	DecayInputMin      = 0.5
	DecayInputMax      = 2.0
)

// =============================================================================
// Tuning - Model Parameters
// =============================================================================

// Tuning holds the adjustable constants of both models. Zero values are
// replaced with defaults; out-of-bounds values are rejected at model
// construction, never clamped.
type Tuning struct {
	MaxExpansion float64 `json:"max_expansion,omitempty" bson:"max_expansion,omitempty"`
	MinSpacing   float64 `json:"min_spacing,omitempty" bson:"min_spacing,omitempty"`
	DecayRate    float64 `json:"decay_rate,omitempty" bson:"decay_rate,omitempty"`
}

// SetDefaults fills unset tuning values. Idempotent.
func (t *Tuning) SetDefaults() {
	if t.MaxExpansion == 0 {
		t.MaxExpansion = DefaultMaxExpansion
	}
	if t.MinSpacing == 0 {
		t.MinSpacing = DefaultMinSpacing
	}
	if t.DecayRate == 0 {
		t.DecayRate = DefaultDecayRate
	}
}

// =============================================================================
// Model - Deformation Strategy
// =============================================================================

// Model computes a complete deformation factor field from a scalar input and
// an optional target cell. Implementations are stateless with respect to the
// input: each call recomputes the field from scratch.
type Model interface {
	// ComputeField returns the per-cell deformation factors for the given
	// input. sel may be nil (no active deformation target).
	ComputeField(input float64, sel *lattice.Selection) (lattice.Field, error)

	// Mode returns the lattice mode string this model implements.
	Mode() string
}

// New constructs the model for the given mode.
func New(mode string, cfg lattice.Config, tuning Tuning) (Model, error) {
	switch mode {
	case lattice.ModeClosedForm:
		return NewClosedForm(cfg, tuning)
	case lattice.ModeDecay:
		return NewDecay(cfg, tuning)
	default:
		return nil, errors.New(errors.ErrCodeInvalidMode,
			"invalid mode: %q (must be one of: closedform, decay)", mode)
	}
}
