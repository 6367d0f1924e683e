package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/poissonlab/fiberlat/pkg/lattice"
)

// DefaultFillRatio is the fraction of a cell's scaled footprint drawn as the
// fiber square. Below 1 so adjacent squares keep a visible gap at rest.
const DefaultFillRatio = 0.8

// svgPixelsPerUnit converts lattice world units to SVG user units.
const svgPixelsPerUnit = 60.0

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	fillRatio float64
	labels    bool
}

// WithFillRatio overrides the fraction of the scaled footprint each fiber
// square occupies. Values above 1 let squares touch or overlap.
func WithFillRatio(ratio float64) SVGOption {
	return func(r *svgRenderer) {
		if ratio > 0 {
			r.fillRatio = ratio
		}
	}
}

// WithCellLabels draws the deformation factor inside each square.
func WithCellLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// RenderSVG draws the snapshot as a top-down heatmap of the lattice plane.
//
// Each fiber is a square centered at its world position, with side
// spacing * ScaleXY * fillRatio, so planar expansion and the integrated
// spacing are both directly visible. Fill color encodes the height scale:
// compressed fibers (ScaleZ < 1) run toward red, stretched ones toward blue,
// neutral fibers stay grey.
func RenderSVG(s *lattice.Snapshot, opts ...SVGOption) []byte {
	r := svgRenderer{fillRatio: DefaultFillRatio}
	for _, opt := range opts {
		opt(&r)
	}

	minX, minY, maxX, maxY := bounds(s)
	margin := s.Spacing
	width := (maxX - minX + 2*margin) * svgPixelsPerUnit
	height := (maxY - minY + 2*margin) * svgPixelsPerUnit

	// World to SVG: X maps right, Y maps down (flipped).
	toPx := func(x, y float64) (float64, float64) {
		return (x - minX + margin) * svgPixelsPerUnit,
			(maxY - y + margin) * svgPixelsPerUnit
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	buf.WriteString(`<rect width="100%" height="100%" fill="white"/>` + "\n")

	for _, cell := range s.Cells {
		side := s.Spacing * cell.ScaleXY * r.fillRatio * svgPixelsPerUnit
		px, py := toPx(cell.X, cell.Y)
		fmt.Fprintf(&buf,
			`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="#333" stroke-width="1"/>`+"\n",
			px-side/2, py-side/2, side, side, heightColor(cell.ScaleZ))

		if r.labels {
			fmt.Fprintf(&buf,
				`<text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" font-size="%.1f" font-family="monospace">%.2f</text>`+"\n",
				px, py, side/4, cell.Factor)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// bounds returns the extent of all cell centers in world coordinates.
func bounds(s *lattice.Snapshot) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, c := range s.Cells {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	return minX, minY, maxX, maxY
}

// heightColor maps a height scale to a hex fill. ScaleZ 1 is neutral grey;
// compression blends toward red, stretch toward blue. The blend saturates at
// a factor of 4 in either direction.
func heightColor(scaleZ float64) string {
	neutral := [3]float64{224, 224, 224}
	target := [3]float64{63, 94, 251} // stretched, blue
	t := 0.0
	if scaleZ < 1 {
		target = [3]float64{229, 57, 53} // compressed, red
		t = math.Min(1, (1/scaleZ-1)/3)
	} else if scaleZ > 1 {
		t = math.Min(1, (scaleZ-1)/3)
	}
	blend := func(i int) int {
		return int(math.Round(neutral[i] + (target[i]-neutral[i])*t))
	}
	return fmt.Sprintf("#%02x%02x%02x", blend(0), blend(1), blend(2))
}
