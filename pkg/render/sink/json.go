package sink

import (
	"encoding/json"

	"github.com/poissonlab/fiberlat/pkg/geometry"
	"github.com/poissonlab/fiberlat/pkg/lattice"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	transforms bool
	mesh       bool
	meshParams geometry.Params
}

// WithJSONTransforms includes the per-cell rigid transforms alongside the raw
// cells, saving instanced renderers the derivation.
func WithJSONTransforms() JSONOption { return func(r *jsonRenderer) { r.transforms = true } }

// WithJSONMesh includes the full vertex-level box mesh. Heavyweight; intended
// for tools that cannot run the geometry emitter themselves.
func WithJSONMesh(params geometry.Params) JSONOption {
	return func(r *jsonRenderer) { r.mesh = true; r.meshParams = params }
}

type jsonOutput struct {
	Mode     string             `json:"mode"`
	Size     int                `json:"size"`
	Spacing  float64            `json:"spacing"`
	Input    float64            `json:"input"`
	Selected *lattice.Selection `json:"selected,omitempty"`
	Cells    []lattice.Cell     `json:"cells"`

	Transforms []geometry.Transform `json:"transforms,omitempty"`
	Mesh       *jsonMesh            `json:"mesh,omitempty"`
}

type jsonMesh struct {
	Vertices []geometry.Vec3 `json:"vertices"`
	Quads    [][4]int        `json:"quads"`
}

// RenderJSON exports a snapshot and optional derived geometry as a
// pretty-printed JSON document. This is the primary data interchange format,
// enabling:
//
//   - Integration with external visualization tools
//   - Caching computed frames for fast re-rendering
//   - Round-trip rendering (re-import and render identically)
//
// The base document is the snapshot itself; options add derived data on top.
// RenderJSON does not modify the snapshot and is safe to call concurrently.
func RenderJSON(s *lattice.Snapshot, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Mode:     s.Mode,
		Size:     s.Size,
		Spacing:  s.Spacing,
		Input:    s.Input,
		Selected: s.Selected,
		Cells:    s.Cells,
	}

	if r.transforms {
		out.Transforms = geometry.Transforms(s)
	}
	if r.mesh {
		m := geometry.EmitBoxes(s, r.meshParams)
		out.Mesh = &jsonMesh{Vertices: m.Vertices, Quads: m.Quads}
	}

	return json.MarshalIndent(out, "", "  ")
}
