package lattice

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/poissonlab/fiberlat/pkg/errors"
)

// =============================================================================
// Snapshot - Canonical Serialization Format
// =============================================================================

// Snapshot is the canonical serialization format for a fully computed lattice
// frame. Used for CLI output files, API responses, session storage, and
// caching.
//
// A snapshot is immutable: each recompute pass produces a fresh one, and a
// renderer holds a reference to the latest complete snapshot only. The format
// is designed for round-trip fidelity: write → read produces an identical
// snapshot.
type Snapshot struct {
	Mode    string  `json:"mode" bson:"mode"`
	Size    int     `json:"size" bson:"size"`
	Spacing float64 `json:"spacing" bson:"spacing"`

	// Inputs that produced this frame. Selected is nil when no cell is
	// targeted (decay mode collapses to the neutral field).
	Input    float64    `json:"input" bson:"input"`
	Selected *Selection `json:"selected,omitempty" bson:"selected,omitempty"`

	// Cells in row-major order, one per lattice cell.
	Cells []Cell `json:"cells" bson:"cells"`
}

// Cell is the per-fiber output of a recompute pass: the raw deformation
// factor, the derived anisotropic scale, and the world position of the fiber
// center in the lattice plane.
//
// Factor is carried alongside the derived scales so the geometry emitter can
// apply the closed-form vertex-level height rule (bottom-half z scaled by
// 1/Factor²) without re-deriving it.
type Cell struct {
	Row int `json:"row" bson:"row"`
	Col int `json:"col" bson:"col"`

	Factor  float64 `json:"factor" bson:"factor"`
	ScaleXY float64 `json:"scale_xy" bson:"scale_xy"`
	ScaleZ  float64 `json:"scale_z" bson:"scale_z"`

	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Config returns the lattice topology this snapshot was computed for.
func (s *Snapshot) Config() Config {
	return Config{Size: s.Size, Spacing: s.Spacing}
}

// Cell returns the cell at (row, col). Out-of-range access panics.
func (s *Snapshot) Cell(row, col int) Cell {
	if row < 0 || row >= s.Size || col < 0 || col >= s.Size {
		panic(fmt.Sprintf("lattice: cell (%d,%d) outside %dx%d snapshot", row, col, s.Size, s.Size))
	}
	return s.Cells[row*s.Size+col]
}

// Field reconstructs the deformation factor grid from the snapshot cells.
func (s *Snapshot) Field() Field {
	factors := make([]float64, len(s.Cells))
	for i, c := range s.Cells {
		factors[i] = c.Factor
	}
	return NewField(s.Size, factors)
}

// validate checks structural invariants after deserialization.
func (s *Snapshot) validate() error {
	if err := ValidateMode(s.Mode); err != nil {
		return err
	}
	if err := s.Config().Validate(); err != nil {
		return err
	}
	if len(s.Cells) != s.Size*s.Size {
		return errors.New(errors.ErrCodeInvalidSnapshot,
			"snapshot has %d cells, want %d for a %dx%d lattice", len(s.Cells), s.Size*s.Size, s.Size, s.Size)
	}
	for _, c := range s.Cells {
		if c.ScaleXY <= 0 || c.ScaleZ <= 0 {
			return errors.New(errors.ErrCodeInvalidSnapshot,
				"cell (%d,%d) has non-positive scale (%g, %g)", c.Row, c.Col, c.ScaleXY, c.ScaleZ)
		}
	}
	if s.Selected != nil && !s.Config().Contains(s.Selected.Row, s.Selected.Col) {
		return errors.New(errors.ErrCodeInvalidSnapshot,
			"selected cell (%d,%d) outside %dx%d lattice", s.Selected.Row, s.Selected.Col, s.Size, s.Size)
	}
	return nil
}

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// MarshalSnapshot serializes a snapshot to pretty-printed JSON bytes.
// Cells are already in deterministic row-major order, so identical inputs
// produce byte-identical output.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// UnmarshalSnapshot deserializes JSON bytes into a snapshot and validates
// its structural invariants.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "unmarshal snapshot")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// WriteSnapshot writes a snapshot as JSON to an io.Writer.
func WriteSnapshot(s *Snapshot, w io.Writer) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteSnapshotFile writes a snapshot to a JSON file.
func WriteSnapshotFile(s *Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSnapshot(s, f)
}

// ReadSnapshot decodes a JSON snapshot from an io.Reader.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return UnmarshalSnapshot(data)
}

// ReadSnapshotFile reads a snapshot from a JSON file.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}
