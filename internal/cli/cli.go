// Package cli implements the fiberlat command-line interface.
//
// This package provides commands for computing lattice deformations, rendering
// them as visual or mesh artifacts, exploring a lattice interactively, serving
// the HTTP API, and managing the snapshot cache. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - solve: Compute a deformation snapshot and render artifacts
//   - render: Re-render an existing snapshot file into other formats
//   - explore: Interactive terminal lattice explorer
//   - serve: Run the HTTP API
//   - cache: Manage the snapshot and artifact cache
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/poissonlab/fiberlat/pkg/buildinfo"
	"github.com/poissonlab/fiberlat/pkg/cache"
	"github.com/poissonlab/fiberlat/pkg/errors"
	"github.com/poissonlab/fiberlat/pkg/lattice"
	"github.com/poissonlab/fiberlat/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "fiberlat"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Fiberlat simulates Poisson-effect deformation on fiber lattices",
		Long:         `Fiberlat computes how a lattice of elastic fibers deforms when one fiber is squeezed or stretched, and renders the result as images, diagrams, or 3D meshes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/fiberlat/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Flag Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parseSelection parses a "row,col" flag value. Empty means no selection.
func parseSelection(s string) (*lattice.Selection, error) {
	if s == "" {
		return nil, nil
	}
	var row, col int
	if n, err := fmt.Sscanf(s, "%d,%d", &row, &col); err != nil || n != 2 {
		return nil, errors.New(errors.ErrCodeInvalidSelection,
			"invalid selection %q (expected row,col)", s)
	}
	return &lattice.Selection{Row: row, Col: col}, nil
}

// =============================================================================
// Output Helpers
// =============================================================================

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// basePath derives the base output path for multi-format writes. If output is
// empty, fallback is used. A known format extension on output is stripped.
func basePath(output, fallback string) string {
	if output == "" {
		return fallback
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
