package geometry

import (
	"math"
	"testing"

	"github.com/poissonlab/fiberlat/pkg/lattice"
)

func singleCellSnapshot(factor float64) *lattice.Snapshot {
	return &lattice.Snapshot{
		Mode:    lattice.ModeClosedForm,
		Size:    1,
		Spacing: 1.0,
		Input:   1.0,
		Cells: []lattice.Cell{{
			Row: 0, Col: 0,
			Factor:  factor,
			ScaleXY: factor,
			ScaleZ:  1 / (factor * factor),
			X:       2.0, Y: -1.0,
		}},
	}
}

func TestTransforms(t *testing.T) {
	s := singleCellSnapshot(1.5)
	ts := Transforms(s)
	if len(ts) != 1 {
		t.Fatalf("len = %d, want 1", len(ts))
	}
	got := ts[0]
	if got.X != 2.0 || got.Y != -1.0 || got.ScaleXY != 1.5 {
		t.Errorf("Transform = %+v", got)
	}
	if math.Abs(got.ScaleZ-1/(1.5*1.5)) > 1e-12 {
		t.Errorf("ScaleZ = %v, want %v", got.ScaleZ, 1/(1.5*1.5))
	}
}

func TestEmitBoxesCounts(t *testing.T) {
	s := &lattice.Snapshot{Mode: lattice.ModeClosedForm, Size: 2, Spacing: 1.0}
	cfg := s.Config()
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			x, y := cfg.BasePosition(row, col)
			s.Cells = append(s.Cells, lattice.Cell{
				Row: row, Col: col, Factor: 1, ScaleXY: 1, ScaleZ: 1, X: x, Y: y,
			})
		}
	}

	mesh := EmitBoxes(s, Params{})
	if len(mesh.Vertices) != 4*8 {
		t.Errorf("vertices = %d, want 32", len(mesh.Vertices))
	}
	if len(mesh.Quads) != 4*6 {
		t.Errorf("quads = %d, want 24", len(mesh.Quads))
	}
	for _, q := range mesh.Quads {
		for _, idx := range q {
			if idx < 0 || idx >= len(mesh.Vertices) {
				t.Fatalf("quad index %d out of range", idx)
			}
		}
	}
}

func TestEmitBoxesTopPinnedBottomScaled(t *testing.T) {
	factor := 2.0
	mesh := EmitBoxes(singleCellSnapshot(factor), Params{})

	halfH := DefaultFiberHeight / 2
	wantBottom := -halfH / (factor * factor)

	var tops, bottoms int
	for _, v := range mesh.Vertices {
		switch {
		case v.Z > 0:
			if math.Abs(v.Z-halfH) > 1e-12 {
				t.Errorf("top vertex z = %v, want pinned at %v", v.Z, halfH)
			}
			tops++
		case v.Z < 0:
			if math.Abs(v.Z-wantBottom) > 1e-12 {
				t.Errorf("bottom vertex z = %v, want %v", v.Z, wantBottom)
			}
			bottoms++
		}
	}
	if tops != 4 || bottoms != 4 {
		t.Errorf("tops = %d, bottoms = %d, want 4 and 4", tops, bottoms)
	}
}

func TestEmitBoxesScalesAboutCellCenter(t *testing.T) {
	factor := 1.5
	mesh := EmitBoxes(singleCellSnapshot(factor), Params{})

	// Planar extent scales about the cell center, so the vertex centroid in
	// the plane stays at the fiber position.
	var cx, cy float64
	for _, v := range mesh.Vertices {
		cx += v.X
		cy += v.Y
	}
	cx /= float64(len(mesh.Vertices))
	cy /= float64(len(mesh.Vertices))
	if math.Abs(cx-2.0) > 1e-12 || math.Abs(cy+1.0) > 1e-12 {
		t.Errorf("centroid = (%v, %v), want (2, -1)", cx, cy)
	}

	// Planar half extent is halfW * ScaleXY.
	wantHalf := DefaultFiberWidth / 2 * factor
	var maxDX float64
	for _, v := range mesh.Vertices {
		if dx := math.Abs(v.X - 2.0); dx > maxDX {
			maxDX = dx
		}
	}
	if math.Abs(maxDX-wantHalf) > 1e-12 {
		t.Errorf("planar half extent = %v, want %v", maxDX, wantHalf)
	}
}

func TestEmitBoxesCustomParams(t *testing.T) {
	mesh := EmitBoxes(singleCellSnapshot(1.0), Params{FiberWidth: 1.0, FiberHeight: 4.0})

	var maxZ float64
	for _, v := range mesh.Vertices {
		if v.Z > maxZ {
			maxZ = v.Z
		}
	}
	if maxZ != 2.0 {
		t.Errorf("max z = %v, want 2 for height 4", maxZ)
	}
}
