// Package geometry turns lattice snapshots into renderable primitives.
//
// Two consumption styles are supported, mirroring how the two deformation
// models apply their scales:
//
//   - [Transforms]: rigid per-cell transforms (position + anisotropic scale)
//     for instanced renderers. Sufficient for the decay model, where every
//     cell deforms as a rigid anisotropic scale about its own center.
//   - [EmitBoxes]: explicit box meshes with the closed-form height rule
//     applied per vertex. Only the bottom half of a column is compressed or
//     stretched, so top faces stay pinned at their rest height.
package geometry

import (
	"github.com/poissonlab/fiberlat/pkg/lattice"
)

// Default fiber dimensions, in world units.
const (
	// DefaultFiberWidth is the rest cross-section side of a fiber column.
	DefaultFiberWidth = 0.4

	// DefaultFiberHeight is the rest height of a fiber column.
	DefaultFiberHeight = 2.0
)

// =============================================================================
// Transforms - Rigid Per-Cell Output
// =============================================================================

// Transform is the rigid per-cell output consumed by instanced renderers:
// a fiber center position in the lattice plane plus the anisotropic scale.
type Transform struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	ScaleXY float64 `json:"scale_xy"`
	ScaleZ  float64 `json:"scale_z"`
}

// Transforms extracts the rigid transform of every cell in row-major order.
func Transforms(s *lattice.Snapshot) []Transform {
	out := make([]Transform, len(s.Cells))
	for i, c := range s.Cells {
		out[i] = Transform{X: c.X, Y: c.Y, ScaleXY: c.ScaleXY, ScaleZ: c.ScaleZ}
	}
	return out
}

// =============================================================================
// Mesh - Vertex-Level Output
// =============================================================================

// Vec3 is a point in world space. The lattice plane spans X/Y; Z is height.
type Vec3 struct {
	X, Y, Z float64
}

// Mesh is a quad mesh of fiber boxes. Quads index into Vertices.
type Mesh struct {
	Vertices []Vec3
	Quads    [][4]int
}

// Params configures box emission.
type Params struct {
	FiberWidth  float64 // rest cross-section side; 0 means DefaultFiberWidth
	FiberHeight float64 // rest column height; 0 means DefaultFiberHeight
}

func (p *Params) setDefaults() {
	if p.FiberWidth == 0 {
		p.FiberWidth = DefaultFiberWidth
	}
	if p.FiberHeight == 0 {
		p.FiberHeight = DefaultFiberHeight
	}
}

// boxQuads lists the six faces of a box given its eight corner indices in
// the order produced by emitBox (z-major, then y, then x).
var boxQuads = [6][4]int{
	{0, 1, 3, 2}, // bottom
	{4, 6, 7, 5}, // top
	{0, 2, 6, 4}, // -x
	{1, 5, 7, 3}, // +x
	{0, 4, 5, 1}, // -y
	{2, 3, 7, 6}, // +y
}

// EmitBoxes produces one box per fiber with deformation applied in the
// vertex-local frame.
//
// Planar extent always scales by the cell's ScaleXY about the fiber center,
// so centers never drift. Height is asymmetric: vertices in the bottom half
// of the column (local z < 0) scale by 1/Factor², while the top half is left
// untouched and the top face stays pinned at +FiberHeight/2. Applying this in
// world coordinates instead would drag fiber centers along; the subtraction/
// re-addition of the cell center is what keeps them anchored.
func EmitBoxes(s *lattice.Snapshot, params Params) Mesh {
	params.setDefaults()

	mesh := Mesh{
		Vertices: make([]Vec3, 0, len(s.Cells)*8),
		Quads:    make([][4]int, 0, len(s.Cells)*6),
	}
	for _, cell := range s.Cells {
		emitBox(&mesh, cell, params)
	}
	return mesh
}

func emitBox(mesh *Mesh, cell lattice.Cell, params Params) {
	halfW := params.FiberWidth / 2
	halfH := params.FiberHeight / 2
	base := len(mesh.Vertices)

	bottomScale := 1 / (cell.Factor * cell.Factor)

	for _, lz := range []float64{-halfH, halfH} {
		z := lz
		if lz < 0 {
			z = lz * bottomScale
		}
		for _, ly := range []float64{-halfW, halfW} {
			for _, lx := range []float64{-halfW, halfW} {
				mesh.Vertices = append(mesh.Vertices, Vec3{
					X: cell.X + lx*cell.ScaleXY,
					Y: cell.Y + ly*cell.ScaleXY,
					Z: z,
				})
			}
		}
	}

	for _, q := range boxQuads {
		mesh.Quads = append(mesh.Quads, [4]int{base + q[0], base + q[1], base + q[2], base + q[3]})
	}
}
