package sink

import (
	"bytes"
	"fmt"

	"github.com/poissonlab/fiberlat/pkg/geometry"
	"github.com/poissonlab/fiberlat/pkg/lattice"
)

// RenderOBJ exports the snapshot's fiber boxes as a Wavefront OBJ document.
//
// The mesh comes from [geometry.EmitBoxes], so the closed-form bottom-half
// height rule is already applied per vertex. Faces are quads; OBJ indices are
// 1-based. One named object is emitted per fiber so viewers can toggle
// individual columns.
func RenderOBJ(s *lattice.Snapshot, params geometry.Params) []byte {
	mesh := geometry.EmitBoxes(s, params)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# fiberlat lattice %dx%d, mode %s\n", s.Size, s.Size, s.Mode)

	// Eight vertices and six quads per fiber, in cell emission order.
	const vertsPerBox = 8
	const quadsPerBox = 6

	for i, cell := range s.Cells {
		fmt.Fprintf(&buf, "o fiber_%d_%d\n", cell.Row, cell.Col)
		for _, v := range mesh.Vertices[i*vertsPerBox : (i+1)*vertsPerBox] {
			fmt.Fprintf(&buf, "v %.6f %.6f %.6f\n", v.X, v.Y, v.Z)
		}
		for _, q := range mesh.Quads[i*quadsPerBox : (i+1)*quadsPerBox] {
			fmt.Fprintf(&buf, "f %d %d %d %d\n", q[0]+1, q[1]+1, q[2]+1, q[3]+1)
		}
	}
	return buf.Bytes()
}
