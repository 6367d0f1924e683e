package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poissonlab/fiberlat/pkg/lattice"
	"github.com/poissonlab/fiberlat/pkg/pipeline"
	"github.com/poissonlab/fiberlat/pkg/solver"
)

// solveOpts holds the command-line flags for the solve command.
type solveOpts struct {
	mode         string  // deformation model: closedform or decay
	size         int     // lattice side length
	spacing      float64 // rest spacing between fiber centers
	input        float64 // deformation input value
	selection    string  // selected fiber as "row,col"
	formatsStr   string  // comma-separated output formats
	output       string  // output file or base path
	maxExpansion float64 // closed-form expansion ceiling
	minSpacing   float64 // minimum clear gap between fibers
	decayRate    float64 // exponential falloff rate
	noCache      bool    // disable the snapshot/artifact cache
	refresh      bool    // recompute even on a cache hit
}

// solveCommand creates the solve command: compute a deformation snapshot and
// write the requested artifacts.
//
// Default options:
//   - mode: decay (closedform requires a 3x3 lattice)
//   - input: 0 for closedform (rest state), 1 for decay
//   - formats: svg
func (c *CLI) solveCommand() *cobra.Command {
	opts := solveOpts{input: -1}

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Compute a lattice deformation and render artifacts",
		Long: `Compute a lattice deformation and render artifacts.

Examples:
  fiberlat solve --mode closedform --input 0.7
  fiberlat solve --size 30 --input 1.8 --select 10,10 -f svg,obj -o lattice
  fiberlat solve --input 0.6 --select 5,5 -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "deformation model: decay (default), closedform")
	cmd.Flags().IntVarP(&opts.size, "size", "s", 0, "lattice side length (default 20, closedform forces 3)")
	cmd.Flags().Float64Var(&opts.spacing, "spacing", 0, "rest spacing between fiber centers (default 1.0)")
	cmd.Flags().Float64VarP(&opts.input, "input", "i", opts.input, "deformation input (closedform: 0..1, decay: 0.5..2)")
	cmd.Flags().StringVar(&opts.selection, "select", "", "selected fiber as row,col (decay mode)")
	cmd.Flags().StringVarP(&opts.formatsStr, "format", "f", "", "output format(s): json (default), svg, png, dot, obj (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().Float64Var(&opts.maxExpansion, "max-expansion", 0, "closed-form expansion ceiling (default 2.1)")
	cmd.Flags().Float64Var(&opts.minSpacing, "min-spacing", 0, "minimum clear gap between fibers (default 0.1)")
	cmd.Flags().Float64Var(&opts.decayRate, "decay-rate", 0, "exponential falloff rate (default 1.5)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache and recompute")

	return cmd
}

// pipelineOptions converts the flags into pipeline options.
func (o *solveOpts) pipelineOptions() (pipeline.Options, error) {
	selected, err := parseSelection(o.selection)
	if err != nil {
		return pipeline.Options{}, err
	}

	input := o.input
	if input < 0 {
		// Neutral default per mode: closedform rest state, decay no-op factor.
		if o.mode == lattice.ModeClosedForm {
			input = 0
		} else {
			input = 1
		}
	}

	// Unlike render, solve defaults to the snapshot JSON itself.
	formats := []string{pipeline.FormatJSON}
	if o.formatsStr != "" {
		formats = parseFormats(o.formatsStr)
	}

	return pipeline.Options{
		Mode:     o.mode,
		Size:     o.size,
		Spacing:  o.spacing,
		Input:    input,
		Selected: selected,
		Tuning: solver.Tuning{
			MaxExpansion: o.maxExpansion,
			MinSpacing:   o.minSpacing,
			DecayRate:    o.decayRate,
		},
		Formats: formats,
		Refresh: o.refresh,
	}, nil
}

func (c *CLI) runSolve(cmd *cobra.Command, opts *solveOpts) error {
	popts, err := opts.pipelineOptions()
	if err != nil {
		return err
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(cmd.Context(), popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Solved %d fibers", len(result.Snapshot.Cells)))

	paths, err := writeArtifacts(result.Artifacts, popts.Formats, opts.output)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		// Artifact went to stdout; keep it clean for piping.
		return nil
	}

	printSuccess("Deformation computed")
	printStats(len(result.Snapshot.Cells), popts.Mode, result.CacheInfo.SnapshotHit)
	for _, p := range paths {
		printFile(p)
	}
	for i, format := range popts.Formats {
		if format == pipeline.FormatJSON && i < len(paths) {
			printNewline()
			printNextStep("Re-render from the snapshot", "fiberlat render "+paths[i]+" -f obj")
			break
		}
	}
	return nil
}

// writeArtifacts writes each rendered format to disk (or stdout for a single
// format with no output path). It returns the list of file paths written.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	if len(formats) == 1 && output == "" {
		out, err := openOutput("")
		if err != nil {
			return nil, err
		}
		defer out.Close()
		_, err = out.Write(artifacts[formats[0]])
		return nil, err
	}

	base := basePath(output, "lattice")
	var paths []string
	for _, format := range formats {
		path := fmt.Sprintf("%s.%s", base, format)
		out, err := openOutput(path)
		if err != nil {
			return nil, err
		}
		if _, err := out.Write(artifacts[format]); err != nil {
			out.Close()
			return nil, err
		}
		if err := out.Close(); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
