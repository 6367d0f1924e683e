package pipeline

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/poissonlab/fiberlat/pkg/cache"
	"github.com/poissonlab/fiberlat/pkg/lattice"
)

func quietRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestValidateAndSetDefaults(t *testing.T) {
	t.Run("decay defaults", func(t *testing.T) {
		opts := Options{}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("ValidateAndSetDefaults: %v", err)
		}
		if opts.Mode != lattice.ModeDecay || opts.Size != 20 || opts.Spacing != 1.0 {
			t.Errorf("defaults = %+v", opts)
		}
		if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
			t.Errorf("formats = %v, want [json]", opts.Formats)
		}
		if opts.Tuning.DecayRate == 0 {
			t.Error("tuning defaults should be filled")
		}
	})

	t.Run("closedform default size", func(t *testing.T) {
		opts := Options{Mode: lattice.ModeClosedForm}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("ValidateAndSetDefaults: %v", err)
		}
		if opts.Size != 3 {
			t.Errorf("size = %d, want 3", opts.Size)
		}
	})

	t.Run("rejects", func(t *testing.T) {
		bad := []Options{
			{Mode: "quadratic"},
			{Size: -1},
			{Spacing: -0.5},
			{Formats: []string{"gif"}},
		}
		for _, opts := range bad {
			if err := opts.ValidateAndSetDefaults(); err == nil {
				t.Errorf("options %+v should be rejected", opts)
			}
		}
	})
}

func TestRecomputeClosedForm(t *testing.T) {
	opts := Options{Mode: lattice.ModeClosedForm, Input: 1.0}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	s, err := Recompute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	if len(s.Cells) != 9 {
		t.Fatalf("cells = %d, want 9", len(s.Cells))
	}

	// Fiber centers stay on the static grid.
	cfg := s.Config()
	for _, c := range s.Cells {
		x, y := cfg.BasePosition(c.Row, c.Col)
		if c.X != x || c.Y != y {
			t.Errorf("cell (%d,%d) at (%v,%v), want rest position (%v,%v)", c.Row, c.Col, c.X, c.Y, x, y)
		}
		if math.Abs(c.ScaleZ-1/(c.Factor*c.Factor)) > 1e-12 {
			t.Errorf("cell (%d,%d) ScaleZ = %v, want 1/Factor²", c.Row, c.Col, c.ScaleZ)
		}
	}

	center := s.Cell(1, 1)
	if center.Factor != 2.1 {
		t.Errorf("center factor = %v, want 2.1 at full input", center.Factor)
	}
	if math.Abs(center.ScaleZ-1/(2.1*2.1)) > 1e-12 {
		t.Errorf("center ScaleZ = %v", center.ScaleZ)
	}
}

func TestRecomputeDecay(t *testing.T) {
	sel := &lattice.Selection{Row: 2, Col: 2}
	opts := Options{Mode: lattice.ModeDecay, Size: 5, Input: 2.0, Selected: sel}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	s, err := Recompute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	if got := s.Cell(2, 2).Factor; got != 2.0 {
		t.Errorf("selected factor = %v, want 2.0", got)
	}

	// Positions come from the integrator: the swollen center pushes the next
	// row beyond a rest step.
	gap := s.Cell(3, 2).X - s.Cell(2, 2).X
	if gap <= opts.Spacing {
		t.Errorf("gap after selected cell = %v, want > %v", gap, opts.Spacing)
	}
}

func TestRunnerExecuteCaching(t *testing.T) {
	r := quietRunner(t)
	defer r.Close()
	ctx := context.Background()

	opts := Options{
		Mode:     lattice.ModeDecay,
		Size:     5,
		Input:    1.5,
		Selected: &lattice.Selection{Row: 1, Col: 1},
		Formats:  []string{FormatJSON, FormatSVG},
	}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.SnapshotHit || first.CacheInfo.RenderHit {
		t.Error("first run should not hit the cache")
	}
	if len(first.Artifacts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(first.Artifacts))
	}
	if first.SnapshotHash == "" {
		t.Error("snapshot hash should be set")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.SnapshotHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit both caches: %+v", second.CacheInfo)
	}
	if second.SnapshotHash != first.SnapshotHash {
		t.Error("identical inputs should produce identical snapshot hashes")
	}

	// Refresh bypasses the snapshot cache.
	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if third.CacheInfo.SnapshotHit {
		t.Error("refresh run should recompute the snapshot")
	}
}

func TestRunnerSolveRoundTrip(t *testing.T) {
	r := quietRunner(t)
	defer r.Close()
	ctx := context.Background()

	opts := Options{Mode: lattice.ModeClosedForm, Input: 0.5}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	fresh, err := r.Solve(ctx, opts)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	cached, hit, err := r.SolveWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatalf("SolveWithCacheInfo: %v", err)
	}
	if !hit {
		t.Fatal("second solve should be a cache hit")
	}

	if cached.Cell(1, 1).Factor != fresh.Cell(1, 1).Factor {
		t.Error("cached snapshot should round-trip exactly")
	}
}

func TestRunnerNilDependencies(t *testing.T) {
	r := NewRunner(nil, nil, log.New(io.Discard))
	defer r.Close()

	// Null cache: everything recomputes, nothing breaks.
	res, err := r.Execute(context.Background(), Options{Size: 3, Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.CacheInfo.SnapshotHit {
		t.Error("null cache should never hit")
	}
	if len(res.Artifacts[FormatDOT]) == 0 {
		t.Error("dot artifact should be rendered")
	}
}
