// Package pipeline orchestrates the solve → layout → render flow.
//
// The pipeline has two stages:
//
//  1. Solve: compute the deformation factor field, integrate cell positions,
//     and assemble the canonical [lattice.Snapshot].
//  2. Render: turn the snapshot into one or more output artifacts (JSON, SVG,
//     PNG, DOT, OBJ).
//
// Both stages are cached content-addressed: the snapshot under a key derived
// from all solve inputs, each artifact under the snapshot's content hash plus
// the render options. [Runner] wires the stages to a cache backend so the CLI
// and the HTTP API share one caching policy.
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/poissonlab/fiberlat/pkg/cache"
	"github.com/poissonlab/fiberlat/pkg/errors"
	"github.com/poissonlab/fiberlat/pkg/geometry"
	"github.com/poissonlab/fiberlat/pkg/lattice"
	"github.com/poissonlab/fiberlat/pkg/render/sink"
	"github.com/poissonlab/fiberlat/pkg/solver"
)

// Output format identifiers.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatOBJ  = "obj"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatOBJ:  true,
}

// Default lattice sizes per mode, used when Options.Size is zero.
const (
	defaultClosedFormSize = 3
	defaultDecaySize      = 20
)

// Options configures a pipeline run: the lattice, the deformation inputs,
// and the artifacts to produce.
type Options struct {
	// Lattice and model.
	Mode    string  `json:"mode"`
	Size    int     `json:"size"`
	Spacing float64 `json:"spacing"`

	// Deformation inputs.
	Input    float64            `json:"input"`
	Selected *lattice.Selection `json:"selected,omitempty"`

	// Model tuning. Zero values mean defaults.
	Tuning solver.Tuning `json:"tuning"`

	// Formats lists the artifacts to render. Empty means JSON only.
	Formats []string `json:"formats,omitempty"`

	// Render options.
	FillRatio   float64 `json:"fill_ratio,omitempty"`
	FiberWidth  float64 `json:"fiber_width,omitempty"`
	FiberHeight float64 `json:"fiber_height,omitempty"`

	// Refresh bypasses the snapshot cache and recomputes from scratch.
	Refresh bool `json:"refresh,omitempty"`

	// Logger used during execution; nil means the runner's logger.
	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks options and fills unset values.
// Invalid values are rejected, never corrected.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Mode == "" {
		o.Mode = lattice.ModeDecay
	}
	if err := lattice.ValidateMode(o.Mode); err != nil {
		return err
	}

	if o.Size == 0 {
		if o.Mode == lattice.ModeClosedForm {
			o.Size = defaultClosedFormSize
		} else {
			o.Size = defaultDecaySize
		}
	}
	if o.Spacing == 0 {
		o.Spacing = 1.0
	}
	if err := (lattice.Config{Size: o.Size, Spacing: o.Spacing}).Validate(); err != nil {
		return err
	}

	o.Tuning.SetDefaults()

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat,
				"invalid format: %q (must be one of: json, svg, png, dot, obj)", f)
		}
	}

	if o.FillRatio == 0 {
		o.FillRatio = sink.DefaultFillRatio
	}
	if o.FillRatio < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "fill ratio must be > 0, got %g", o.FillRatio)
	}
	if o.FiberWidth == 0 {
		o.FiberWidth = geometry.DefaultFiberWidth
	}
	if o.FiberHeight == 0 {
		o.FiberHeight = geometry.DefaultFiberHeight
	}
	if o.FiberWidth < 0 || o.FiberHeight < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "fiber dimensions must be > 0")
	}

	return nil
}

// Config returns the lattice configuration described by the options.
func (o *Options) Config() lattice.Config {
	return lattice.Config{Size: o.Size, Spacing: o.Spacing}
}

// SnapshotKeyOpts maps the solve inputs to cache key components.
func (o *Options) SnapshotKeyOpts() cache.SnapshotKeyOpts {
	k := cache.SnapshotKeyOpts{
		Mode:         o.Mode,
		Size:         o.Size,
		Spacing:      o.Spacing,
		Input:        o.Input,
		MaxExpansion: o.Tuning.MaxExpansion,
		MinSpacing:   o.Tuning.MinSpacing,
		DecayRate:    o.Tuning.DecayRate,
	}
	if o.Selected != nil {
		k.HasSelection = true
		k.SelectedRow = o.Selected.Row
		k.SelectedCol = o.Selected.Col
	}
	return k
}

// ArtifactKeyOpts maps the render options for one format to cache key
// components.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		FillRatio:   o.FillRatio,
		FiberWidth:  o.FiberWidth,
		FiberHeight: o.FiberHeight,
	}
}

// Result is the output of a full pipeline run.
type Result struct {
	// Snapshot is the computed frame.
	Snapshot *lattice.Snapshot

	// SnapshotHash is the content hash of the serialized snapshot, used as
	// the artifact cache key base and exposed to API clients as an ETag.
	SnapshotHash string

	// Artifacts maps format name to rendered bytes.
	Artifacts map[string][]byte

	// Stats records per-stage timing.
	Stats struct {
		SolveTime  time.Duration
		RenderTime time.Duration
	}

	// CacheInfo records which stages were served from cache.
	CacheInfo struct {
		SnapshotHit bool
		RenderHit   bool
	}
}
