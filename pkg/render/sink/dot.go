package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/poissonlab/fiberlat/pkg/lattice"
)

// DOTOption configures DOT generation via [ToDOT].
type DOTOption func(*dotRenderer)

type dotRenderer struct {
	showEdges bool
}

// WithDOTEdges connects orthogonally adjacent fibers with edges, making the
// lattice neighborhoods explicit in the diagram.
func WithDOTEdges() DOTOption { return func(r *dotRenderer) { r.showEdges = true } }

// ToDOT converts a snapshot to Graphviz DOT format. Node positions are pinned
// to the integrated world coordinates (neato layout), node size follows the
// planar scale, and fill color follows the height scale. The resulting DOT
// string can be rendered with [RenderDOTSVG] or [RenderDOTPNG].
func ToDOT(s *lattice.Snapshot, opts ...DOTOption) string {
	r := dotRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	buf.WriteString("graph lattice {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=square, style=filled, fixedsize=true, fontsize=10];\n")
	buf.WriteString("\n")

	for _, cell := range s.Cells {
		side := s.Spacing * cell.ScaleXY * DefaultFillRatio
		fmt.Fprintf(&buf, "  %q [pos=\"%.3f,%.3f!\", width=%.3f, height=%.3f, fillcolor=%q, label=\"%.2f\"];\n",
			cellID(cell.Row, cell.Col), cell.X, cell.Y, side, side, heightColor(cell.ScaleZ), cell.Factor)
	}

	if r.showEdges {
		buf.WriteString("\n")
		for _, cell := range s.Cells {
			if cell.Row+1 < s.Size {
				fmt.Fprintf(&buf, "  %q -- %q;\n", cellID(cell.Row, cell.Col), cellID(cell.Row+1, cell.Col))
			}
			if cell.Col+1 < s.Size {
				fmt.Fprintf(&buf, "  %q -- %q;\n", cellID(cell.Row, cell.Col), cellID(cell.Row, cell.Col+1))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func cellID(row, col int) string {
	return fmt.Sprintf("c%d_%d", row, col)
}

// RenderDOTSVG renders a DOT graph to SVG using the embedded Graphviz engine.
func RenderDOTSVG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.SVG, normalizeViewBox)
}

// RenderDOTPNG renders a DOT graph to PNG using the embedded Graphviz engine.
func RenderDOTPNG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.PNG, nil)
}

func renderDOT(dot string, format graphviz.Format, post func([]byte) []byte) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	out := buf.Bytes()
	if post != nil {
		out = post(out)
	}
	return out, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
