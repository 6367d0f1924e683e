package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/poissonlab/fiberlat/pkg/cache"
	"github.com/poissonlab/fiberlat/pkg/lattice"
	"github.com/poissonlab/fiberlat/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete solve → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Solve
	solveStart := time.Now()
	snapshot, solveHit, err := r.SolveWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	result.Snapshot = snapshot
	result.Stats.SolveTime = time.Since(solveStart)
	result.CacheInfo.SnapshotHit = solveHit

	// Content hash for artifact cache keys and API responses.
	if data, err := lattice.MarshalSnapshot(snapshot); err == nil {
		result.SnapshotHash = cache.Hash(data)
	}

	r.Logger.Info("computed snapshot",
		"mode", opts.Mode,
		"size", opts.Size,
		"hash", cache.ShortHash(result.SnapshotHash),
		"cached", solveHit,
		"duration", result.Stats.SolveTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, snapshot, result.SnapshotHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SolveWithCacheInfo computes the snapshot with caching and reports whether
// the cache served it.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, opts Options) (*lattice.Snapshot, bool, error) {
	cacheKey := r.Keyer.SnapshotKey(opts.SnapshotKeyOpts())

	// Try cache first (unless refresh requested).
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if s, err := lattice.UnmarshalSnapshot(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "snapshot")
				return s, true, nil
			}
			// Corrupt entry: fall through to recompute.
		}
		observability.Cache().OnCacheMiss(ctx, "snapshot")
	}

	snapshot, err := Recompute(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := lattice.MarshalSnapshot(snapshot); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLSnapshot)
		observability.Cache().OnCacheSet(ctx, "snapshot", len(data))
	}

	return snapshot, false, nil
}

// Solve is a convenience wrapper that discards the cache hit info.
func (r *Runner) Solve(ctx context.Context, opts Options) (*lattice.Snapshot, error) {
	s, _, err := r.SolveWithCacheInfo(ctx, opts)
	return s, err
}

// RenderWithCacheInfo renders all requested formats with caching and reports
// whether every artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s *lattice.Snapshot, snapshotHash string, opts Options) (map[string][]byte, bool, error) {
	// Try to get all formats from cache.
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(snapshotHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		} else {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	// Render all formats.
	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderArtifact(ctx, s, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		rendered[format] = data
	}

	// Cache each format.
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(snapshotHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
