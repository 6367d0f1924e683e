package lattice

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/poissonlab/fiberlat/pkg/errors"
)

func testSnapshot() *Snapshot {
	s := &Snapshot{
		Mode:     ModeDecay,
		Size:     2,
		Spacing:  1.0,
		Input:    1.5,
		Selected: &Selection{Row: 0, Col: 1},
	}
	cfg := s.Config()
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			x, y := cfg.BasePosition(row, col)
			s.Cells = append(s.Cells, Cell{
				Row: row, Col: col,
				Factor: 1.2, ScaleXY: 1.2, ScaleZ: 1.0 / (1.2 * 1.2),
				X: x, Y: y,
			})
		}
	}
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := testSnapshot()

	data, err := MarshalSnapshot(s)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}

	got, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}

	if got.Mode != s.Mode || got.Size != s.Size || got.Input != s.Input {
		t.Errorf("round trip changed header: %+v", got)
	}
	if got.Selected == nil || *got.Selected != *s.Selected {
		t.Errorf("round trip changed selection: %+v", got.Selected)
	}
	if len(got.Cells) != 4 || got.Cell(0, 1).Factor != 1.2 {
		t.Errorf("round trip changed cells: %+v", got.Cells)
	}
}

func TestMarshalSnapshotDeterministic(t *testing.T) {
	s := testSnapshot()

	a, err := MarshalSnapshot(s)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}
	b, err := MarshalSnapshot(s)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical snapshots should marshal to identical bytes")
	}
}

func TestUnmarshalSnapshotRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
		code   errors.Code
	}{
		{"unknown mode", func(s *Snapshot) { s.Mode = "quadratic" }, errors.ErrCodeInvalidMode},
		{"cell count mismatch", func(s *Snapshot) { s.Cells = s.Cells[:3] }, errors.ErrCodeInvalidSnapshot},
		{"non-positive scale", func(s *Snapshot) { s.Cells[0].ScaleZ = 0 }, errors.ErrCodeInvalidSnapshot},
		{"selection out of range", func(s *Snapshot) { s.Selected = &Selection{Row: 5, Col: 0} }, errors.ErrCodeInvalidSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSnapshot()
			tt.mutate(s)
			data, err := MarshalSnapshot(s)
			if err != nil {
				t.Fatalf("MarshalSnapshot: %v", err)
			}
			_, err = UnmarshalSnapshot(data)
			if errors.GetCode(err) != tt.code {
				t.Errorf("code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		_, err := UnmarshalSnapshot([]byte("{not json"))
		if errors.GetCode(err) != errors.ErrCodeInvalidSnapshot {
			t.Errorf("code = %v, want INVALID_SNAPSHOT", errors.GetCode(err))
		}
	})
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	s := testSnapshot()
	path := filepath.Join(t.TempDir(), "snapshot.json")

	if err := WriteSnapshotFile(s, path); err != nil {
		t.Fatalf("WriteSnapshotFile: %v", err)
	}

	got, err := ReadSnapshotFile(path)
	if err != nil {
		t.Fatalf("ReadSnapshotFile: %v", err)
	}
	if got.Size != s.Size || len(got.Cells) != len(s.Cells) {
		t.Errorf("file round trip changed snapshot: %+v", got)
	}
}

func TestReadSnapshotFileNotFound(t *testing.T) {
	_, err := ReadSnapshotFile(filepath.Join(t.TempDir(), "missing.json"))
	if errors.GetCode(err) != errors.ErrCodeFileNotFound {
		t.Errorf("code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestSnapshotField(t *testing.T) {
	s := testSnapshot()
	f := s.Field()
	if f.Size() != 2 || f.At(1, 1) != 1.2 {
		t.Errorf("Field() = %+v", f)
	}
}
