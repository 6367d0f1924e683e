package sink

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/poissonlab/fiberlat/pkg/geometry"
	"github.com/poissonlab/fiberlat/pkg/lattice"
)

func testSnapshot(t *testing.T) *lattice.Snapshot {
	t.Helper()
	s := &lattice.Snapshot{
		Mode:     lattice.ModeDecay,
		Size:     2,
		Spacing:  1.0,
		Input:    1.5,
		Selected: &lattice.Selection{Row: 0, Col: 0},
	}
	cfg := s.Config()
	factors := []float64{1.5, 1.1, 1.1, 1.0}
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			f := factors[row*2+col]
			x, y := cfg.BasePosition(row, col)
			s.Cells = append(s.Cells, lattice.Cell{
				Row: row, Col: col,
				Factor: f, ScaleXY: f, ScaleZ: 1 / (f * f),
				X: x, Y: y,
			})
		}
	}
	return s
}

func TestRenderJSONBase(t *testing.T) {
	data, err := RenderJSON(testSnapshot(t))
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out["mode"] != "decay" {
		t.Errorf("mode = %v", out["mode"])
	}
	if cells, ok := out["cells"].([]any); !ok || len(cells) != 4 {
		t.Errorf("cells = %v", out["cells"])
	}
	if _, present := out["transforms"]; present {
		t.Error("transforms should be omitted without the option")
	}
	if _, present := out["mesh"]; present {
		t.Error("mesh should be omitted without the option")
	}
}

func TestRenderJSONOptions(t *testing.T) {
	data, err := RenderJSON(testSnapshot(t), WithJSONTransforms(), WithJSONMesh(geometry.Params{}))
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var out struct {
		Transforms []geometry.Transform `json:"transforms"`
		Mesh       *struct {
			Vertices []geometry.Vec3 `json:"vertices"`
			Quads    [][4]int        `json:"quads"`
		} `json:"mesh"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Transforms) != 4 {
		t.Errorf("transforms = %d, want 4", len(out.Transforms))
	}
	if out.Mesh == nil || len(out.Mesh.Vertices) != 32 || len(out.Mesh.Quads) != 24 {
		t.Errorf("mesh = %+v", out.Mesh)
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testSnapshot(t)))

	if !strings.HasPrefix(svg, "<svg xmlns=") {
		t.Error("output should start with an svg tag")
	}
	// One background rect plus one square per cell.
	if got := strings.Count(svg, "<rect"); got != 5 {
		t.Errorf("rect count = %d, want 5", got)
	}
	if strings.Contains(svg, "<text") {
		t.Error("labels should be off by default")
	}

	labeled := string(RenderSVG(testSnapshot(t), WithCellLabels()))
	if got := strings.Count(labeled, "<text"); got != 4 {
		t.Errorf("text count = %d, want 4", got)
	}
}

func TestRenderSVGFillRatio(t *testing.T) {
	narrow := RenderSVG(testSnapshot(t), WithFillRatio(0.5))
	wide := RenderSVG(testSnapshot(t), WithFillRatio(1.0))
	if bytes.Equal(narrow, wide) {
		t.Error("fill ratio should change the output")
	}
}

func TestHeightColor(t *testing.T) {
	if got := heightColor(1.0); got != "#e0e0e0" {
		t.Errorf("neutral color = %q, want #e0e0e0", got)
	}
	compressed := heightColor(0.25)
	stretched := heightColor(2.0)
	if compressed == stretched || compressed == heightColor(1.0) {
		t.Errorf("compressed %q and stretched %q should differ from neutral", compressed, stretched)
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testSnapshot(t))

	if !strings.Contains(dot, "layout=neato;") {
		t.Error("DOT should use the neato engine")
	}
	for _, id := range []string{`"c0_0"`, `"c0_1"`, `"c1_0"`, `"c1_1"`} {
		if !strings.Contains(dot, id) {
			t.Errorf("DOT missing node %s", id)
		}
	}
	// Positions are pinned.
	if !strings.Contains(dot, `pos="-0.500,-0.500!"`) {
		t.Error("DOT should pin node positions")
	}
	if strings.Contains(dot, " -- ") {
		t.Error("edges should be off by default")
	}

	withEdges := ToDOT(testSnapshot(t), WithDOTEdges())
	if got := strings.Count(withEdges, " -- "); got != 4 {
		t.Errorf("edge count = %d, want 4 for a 2x2 lattice", got)
	}
}

func TestRenderOBJ(t *testing.T) {
	obj := string(RenderOBJ(testSnapshot(t), geometry.Params{}))

	if got := strings.Count(obj, "\no "); got+boolToInt(strings.HasPrefix(obj, "o ")) != 4 {
		t.Errorf("object count = %d, want 4", got)
	}
	if got := strings.Count(obj, "\nv "); got != 32 {
		t.Errorf("vertex count = %d, want 32", got)
	}
	if got := strings.Count(obj, "\nf "); got != 24 {
		t.Errorf("face count = %d, want 24", got)
	}
	// OBJ faces are 1-based.
	if strings.Contains(obj, "f 0 ") {
		t.Error("face indices must be 1-based")
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
