package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/poissonlab/fiberlat/pkg/lattice"
	"github.com/poissonlab/fiberlat/pkg/pipeline"
	"github.com/poissonlab/fiberlat/pkg/solver"
)

// Lattice cell styles
var (
	cellNeutralStyle    = lipgloss.NewStyle().Foreground(colorDim)
	cellSwollenStyle    = lipgloss.NewStyle().Foreground(colorCyan)
	cellCompressedStyle = lipgloss.NewStyle().Foreground(colorRed)
	cellSelectedStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

// inputStep is the per-keypress increment of the deformation input.
const inputStep = 0.05

// =============================================================================
// ExploreModel - Interactive lattice exploration
// =============================================================================

// ExploreModel is the bubbletea model for interactive lattice exploration.
// Arrow keys move the selected fiber, +/- adjust the deformation input, and
// every change recomputes the field synchronously. Lattices in the supported
// size range solve in well under a frame, so no async command is needed.
type ExploreModel struct {
	Opts     pipeline.Options
	Snapshot *lattice.Snapshot
	Err      error

	// decaySize remembers the grid size to restore when toggling back from
	// the fixed 3x3 closed form.
	decaySize int
}

// NewExploreModel creates an explore model and computes the initial frame.
// Options must already be validated.
func NewExploreModel(opts pipeline.Options) ExploreModel {
	if opts.Selected == nil {
		center := (opts.Size - 1) / 2
		opts.Selected = &lattice.Selection{Row: center, Col: center}
	}
	m := ExploreModel{Opts: opts, decaySize: opts.Size}
	if opts.Mode == lattice.ModeClosedForm {
		m.decaySize = 10
	}
	m.recompute()
	return m
}

// inputRange returns the valid input interval for the model's mode.
func (m *ExploreModel) inputRange() (lo, hi float64) {
	if m.Opts.Mode == lattice.ModeClosedForm {
		return solver.ClosedFormInputMin, solver.ClosedFormInputMax
	}
	return solver.DecayInputMin, solver.DecayInputMax
}

// toggleMode switches between the two deformation models. The closed form is
// only defined on a 3x3 lattice, so the grid and input reset with the mode.
func (m *ExploreModel) toggleMode() {
	if m.Opts.Mode == lattice.ModeClosedForm {
		m.Opts.Mode = lattice.ModeDecay
		m.Opts.Size = m.decaySize
		m.Opts.Input = 1
	} else {
		m.decaySize = m.Opts.Size
		m.Opts.Mode = lattice.ModeClosedForm
		m.Opts.Size = 3
		m.Opts.Input = 0
	}
	center := (m.Opts.Size - 1) / 2
	m.Opts.Selected = &lattice.Selection{Row: center, Col: center}
}

func (m *ExploreModel) recompute() {
	m.Snapshot, m.Err = pipeline.Recompute(context.Background(), m.Opts)
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	sel := m.Opts.Selected
	lo, hi := m.inputRange()

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if sel.Row > 0 {
			sel.Row--
		}
	case "down", "j":
		if sel.Row < m.Opts.Size-1 {
			sel.Row++
		}
	case "left", "h":
		if sel.Col > 0 {
			sel.Col--
		}
	case "right", "l":
		if sel.Col < m.Opts.Size-1 {
			sel.Col++
		}
	case "+", "=":
		if v := m.Opts.Input + inputStep; v <= hi+1e-9 {
			m.Opts.Input = min(v, hi)
		}
	case "-", "_":
		if v := m.Opts.Input - inputStep; v >= lo-1e-9 {
			m.Opts.Input = max(v, lo)
		}
	case "r":
		// Reset to the neutral input for the mode.
		if m.Opts.Mode == lattice.ModeClosedForm {
			m.Opts.Input = 0
		} else {
			m.Opts.Input = 1
		}
	case "m":
		m.toggleMode()
	default:
		return m, nil
	}

	m.recompute()
	return m, nil
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Fiber Lattice Explorer"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("arrows: move  +/-: deform  m: mode  r: reset  q: quit"))
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(StyleWarning.Render("error: " + m.Err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	sel := m.Opts.Selected
	for row := 0; row < m.Opts.Size; row++ {
		b.WriteString("  ")
		for col := 0; col < m.Opts.Size; col++ {
			f := m.Snapshot.Cell(row, col).Factor
			label := fmt.Sprintf("%5.2f", f)

			var style lipgloss.Style
			switch {
			case sel != nil && row == sel.Row && col == sel.Col:
				style = cellSelectedStyle
			case f > 1.001:
				style = cellSwollenStyle
			case f < 0.999:
				style = cellCompressedStyle
			default:
				style = cellNeutralStyle
			}
			b.WriteString(style.Render(label))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  mode %s · input %.2f · fiber (%d,%d)",
		m.Opts.Mode, m.Opts.Input, sel.Row, sel.Col)))
	b.WriteString("\n")

	return b.String()
}
