package layout

import (
	"math"
	"testing"

	"github.com/poissonlab/fiberlat/pkg/lattice"
	"github.com/poissonlab/fiberlat/pkg/solver"
)

func TestStaticMatchesBasePositions(t *testing.T) {
	cfg := lattice.Config{Size: 3, Spacing: 1.5}
	grid := Static(cfg)

	for row := 0; row < cfg.Size; row++ {
		for col := 0; col < cfg.Size; col++ {
			x, y := cfg.BasePosition(row, col)
			got := grid.At(row, col)
			if got.X != x || got.Y != y {
				t.Fatalf("At(%d,%d) = %+v, want (%v, %v)", row, col, got, x, y)
			}
		}
	}
}

func TestIntegrateUniformFieldIsRestGrid(t *testing.T) {
	cfg := lattice.Config{Size: 5, Spacing: 1.0}
	grid := Integrate(cfg, lattice.UniformField(cfg.Size))
	want := Static(cfg)

	for row := 0; row < cfg.Size; row++ {
		for col := 0; col < cfg.Size; col++ {
			got, exp := grid.At(row, col), want.At(row, col)
			if math.Abs(got.X-exp.X) > 1e-12 || math.Abs(got.Y-exp.Y) > 1e-12 {
				t.Fatalf("At(%d,%d) = %+v, want %+v", row, col, got, exp)
			}
		}
	}
}

func TestIntegrateAnchorsFirstRowAndColumn(t *testing.T) {
	cfg := lattice.Config{Size: 4, Spacing: 2.0}
	factors := make([]float64, cfg.CellCount())
	for i := range factors {
		factors[i] = 1.7
	}
	grid := Integrate(cfg, lattice.NewField(cfg.Size, factors))

	anchor := cfg.Anchor()
	for i := 0; i < cfg.Size; i++ {
		if grid.At(0, i).X != anchor {
			t.Errorf("row 0 X = %v, want anchor %v", grid.At(0, i).X, anchor)
		}
		if grid.At(i, 0).Y != anchor {
			t.Errorf("col 0 Y = %v, want anchor %v", grid.At(i, 0).Y, anchor)
		}
	}
}

func TestIntegrateAveragedSteps(t *testing.T) {
	cfg := lattice.Config{Size: 2, Spacing: 1.0}
	// Row-major: (0,0)=1.0, (0,1)=2.0, (1,0)=1.5, (1,1)=0.5
	field := lattice.NewField(2, []float64{1.0, 2.0, 1.5, 0.5})
	grid := Integrate(cfg, field)

	anchor := cfg.Anchor()

	// X steps along rows: x(1,j) = x(0,j) + spacing*avg(f(0,j), f(1,j)).
	if got, want := grid.At(1, 0).X, anchor+(1.0+1.5)/2; math.Abs(got-want) > 1e-12 {
		t.Errorf("At(1,0).X = %v, want %v", got, want)
	}
	if got, want := grid.At(1, 1).X, anchor+(2.0+0.5)/2; math.Abs(got-want) > 1e-12 {
		t.Errorf("At(1,1).X = %v, want %v", got, want)
	}

	// Y steps along columns: y(i,1) = y(i,0) + spacing*avg(f(i,0), f(i,1)).
	if got, want := grid.At(0, 1).Y, anchor+(1.0+2.0)/2; math.Abs(got-want) > 1e-12 {
		t.Errorf("At(0,1).Y = %v, want %v", got, want)
	}
	if got, want := grid.At(1, 1).Y, anchor+(1.5+0.5)/2; math.Abs(got-want) > 1e-12 {
		t.Errorf("At(1,1).Y = %v, want %v", got, want)
	}
}

func TestIntegrateMonotonicUnderDeformation(t *testing.T) {
	// A swollen cell in the middle must push later rows and columns outward,
	// never fold them back.
	cfg := lattice.Config{Size: 5, Spacing: 1.0}
	model, err := solver.NewDecay(cfg, solver.Tuning{})
	if err != nil {
		t.Fatalf("NewDecay: %v", err)
	}
	field, err := model.ComputeField(2.0, &lattice.Selection{Row: 2, Col: 2})
	if err != nil {
		t.Fatalf("ComputeField: %v", err)
	}

	grid := Integrate(cfg, field)
	for col := 0; col < cfg.Size; col++ {
		for row := 1; row < cfg.Size; row++ {
			if grid.At(row, col).X <= grid.At(row-1, col).X {
				t.Fatalf("X not strictly increasing at (%d,%d)", row, col)
			}
		}
	}
	for row := 0; row < cfg.Size; row++ {
		for col := 1; col < cfg.Size; col++ {
			if grid.At(row, col).Y <= grid.At(row, col-1).Y {
				t.Fatalf("Y not strictly increasing at (%d,%d)", row, col)
			}
		}
	}

	// The swollen center pushes its following neighbor further than a rest
	// step.
	gap := grid.At(3, 2).X - grid.At(2, 2).X
	if gap <= cfg.Spacing {
		t.Errorf("gap after swollen cell = %v, want > %v", gap, cfg.Spacing)
	}
}
