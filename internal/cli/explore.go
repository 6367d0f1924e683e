package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/poissonlab/fiberlat/pkg/lattice"
	"github.com/poissonlab/fiberlat/pkg/pipeline"
	"github.com/poissonlab/fiberlat/pkg/solver"
)

// exploreCommand creates the explore command: an interactive terminal view of
// the deformation field.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		mode      string
		size      int
		spacing   float64
		input     float64
		selection string
		decayRate float64
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore a lattice deformation interactively",
		Long: `Explore a lattice deformation interactively.

Move the selected fiber with the arrow keys and adjust the deformation input
with + and -. The factor field recomputes on every change.

Examples:
  fiberlat explore
  fiberlat explore --mode closedform
  fiberlat explore --size 12 --input 1.8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := parseSelection(selection)
			if err != nil {
				return err
			}

			// Keep the default grid small enough for a terminal.
			if size == 0 && mode != lattice.ModeClosedForm {
				size = 10
			}

			opts := pipeline.Options{
				Mode:     mode,
				Size:     size,
				Spacing:  spacing,
				Input:    input,
				Selected: selected,
				Tuning:   solver.Tuning{DecayRate: decayRate},
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			if opts.Input == 0 && opts.Mode == lattice.ModeDecay {
				opts.Input = 1
			}

			p := tea.NewProgram(NewExploreModel(opts))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "deformation model: decay (default), closedform")
	cmd.Flags().IntVarP(&size, "size", "s", 0, "lattice side length (default 10, closedform forces 3)")
	cmd.Flags().Float64Var(&spacing, "spacing", 0, "rest spacing between fiber centers (default 1.0)")
	cmd.Flags().Float64VarP(&input, "input", "i", 0, "initial deformation input (default neutral)")
	cmd.Flags().StringVar(&selection, "select", "", "initially selected fiber as row,col (default center)")
	cmd.Flags().Float64Var(&decayRate, "decay-rate", 0, "exponential falloff rate (default 1.5)")

	return cmd
}
