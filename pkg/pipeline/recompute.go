package pipeline

import (
	"context"
	"time"

	"github.com/poissonlab/fiberlat/pkg/errors"
	"github.com/poissonlab/fiberlat/pkg/geometry"
	"github.com/poissonlab/fiberlat/pkg/lattice"
	"github.com/poissonlab/fiberlat/pkg/layout"
	"github.com/poissonlab/fiberlat/pkg/observability"
	"github.com/poissonlab/fiberlat/pkg/render/sink"
	"github.com/poissonlab/fiberlat/pkg/solver"
)

// Recompute runs the solve stage without caching: factor field, cell
// positions, snapshot assembly. Options must already be validated.
//
// The closed-form model keeps the static anchored grid; the decay model runs
// the spacing integrator. In both, a cell's height scale is 1/Factor², so
// per-fiber volume is conserved exactly.
func Recompute(ctx context.Context, opts Options) (*lattice.Snapshot, error) {
	cfg := opts.Config()

	solveStart := time.Now()
	observability.Solver().OnSolveStart(ctx, opts.Mode, opts.Size)

	model, err := solver.New(opts.Mode, cfg, opts.Tuning)
	if err != nil {
		observability.Solver().OnSolveComplete(ctx, opts.Mode, opts.Size, time.Since(solveStart), err)
		return nil, err
	}
	field, err := model.ComputeField(opts.Input, opts.Selected)
	observability.Solver().OnSolveComplete(ctx, opts.Mode, opts.Size, time.Since(solveStart), err)
	if err != nil {
		return nil, err
	}

	layoutStart := time.Now()
	observability.Solver().OnLayoutStart(ctx, opts.Size)
	var grid layout.Grid
	if opts.Mode == lattice.ModeClosedForm {
		grid = layout.Static(cfg)
	} else {
		grid = layout.Integrate(cfg, field)
	}
	observability.Solver().OnLayoutComplete(ctx, opts.Size, time.Since(layoutStart), nil)

	return assemble(opts, field, grid), nil
}

// assemble builds the canonical snapshot from a factor field and positions.
func assemble(opts Options, field lattice.Field, grid layout.Grid) *lattice.Snapshot {
	s := &lattice.Snapshot{
		Mode:     opts.Mode,
		Size:     opts.Size,
		Spacing:  opts.Spacing,
		Input:    opts.Input,
		Selected: opts.Selected,
		Cells:    make([]lattice.Cell, 0, opts.Size*opts.Size),
	}
	for row := 0; row < opts.Size; row++ {
		for col := 0; col < opts.Size; col++ {
			f := field.At(row, col)
			pos := grid.At(row, col)
			s.Cells = append(s.Cells, lattice.Cell{
				Row:     row,
				Col:     col,
				Factor:  f,
				ScaleXY: f,
				ScaleZ:  1 / (f * f),
				X:       pos.X,
				Y:       pos.Y,
			})
		}
	}
	return s
}

// RenderArtifact renders a snapshot into one output format without caching.
func RenderArtifact(ctx context.Context, s *lattice.Snapshot, format string, opts Options) ([]byte, error) {
	start := time.Now()
	observability.Solver().OnRenderStart(ctx, format)

	data, err := renderArtifact(s, format, opts)
	observability.Solver().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

func renderArtifact(s *lattice.Snapshot, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return sink.RenderJSON(s, sink.WithJSONTransforms())
	case FormatSVG:
		return sink.RenderSVG(s, sink.WithFillRatio(opts.FillRatio)), nil
	case FormatDOT:
		return []byte(sink.ToDOT(s, sink.WithDOTEdges())), nil
	case FormatPNG:
		return sink.RenderDOTPNG(sink.ToDOT(s, sink.WithDOTEdges()))
	case FormatOBJ:
		return sink.RenderOBJ(s, geometry.Params{
			FiberWidth:  opts.FiberWidth,
			FiberHeight: opts.FiberHeight,
		}), nil
	default:
		// Unreachable after ValidateAndSetDefaults; kept for direct callers.
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
}
