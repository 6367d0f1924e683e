package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/poissonlab/fiberlat/pkg/lattice"
	"github.com/poissonlab/fiberlat/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	formatsStr  string  // comma-separated output formats
	output      string  // output file or base path
	fillRatio   float64 // fraction of the cell pitch a square fills (svg)
	fiberWidth  float64 // fiber cross-section width (obj)
	fiberHeight float64 // fiber length (obj)
}

// renderCommand creates the render command: re-render a stored snapshot file
// into other formats without recomputing the deformation.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render <snapshot.json>",
		Short: "Render a stored snapshot to other formats",
		Long: `Render a stored snapshot to other formats.

Examples:
  fiberlat render lattice.json                  # SVG next to the input
  fiberlat render lattice.json -f obj,png
  fiberlat render lattice.json -f svg -o out.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formatsStr, "format", "f", "", "output format(s): svg (default), json, png, dot, obj (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().Float64Var(&opts.fillRatio, "fill-ratio", 0, "fraction of the cell pitch a square fills (default 0.8)")
	cmd.Flags().Float64Var(&opts.fiberWidth, "fiber-width", 0, "fiber cross-section width for meshes (default 0.4)")
	cmd.Flags().Float64Var(&opts.fiberHeight, "fiber-height", 0, "fiber length for meshes (default 2.0)")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	snapshot, err := lattice.ReadSnapshotFile(input)
	if err != nil {
		return err
	}
	c.Logger.Info("loaded snapshot", "mode", snapshot.Mode, "size", snapshot.Size)

	popts := pipeline.Options{
		Mode:        snapshot.Mode,
		Size:        snapshot.Size,
		Spacing:     snapshot.Spacing,
		Formats:     parseFormats(opts.formatsStr),
		FillRatio:   opts.fillRatio,
		FiberWidth:  opts.fiberWidth,
		FiberHeight: opts.fiberHeight,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	artifacts := make(map[string][]byte, len(popts.Formats))
	for _, format := range popts.Formats {
		data, err := pipeline.RenderArtifact(cmd.Context(), snapshot, format, popts)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	prog.done(fmt.Sprintf("Rendered %d formats", len(artifacts)))

	// Default the base path to the input file name.
	fallback := strings.TrimSuffix(input, filepath.Ext(input))
	output := opts.output
	if output == "" && len(popts.Formats) > 1 {
		output = fallback
	}
	if output == "" {
		output = fallback + "." + popts.Formats[0]
	}

	paths, err := writeArtifacts(artifacts, popts.Formats, output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	printKeyValue("Mode", snapshot.Mode)
	printKeyValue("Lattice", fmt.Sprintf("%dx%d", snapshot.Size, snapshot.Size))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
