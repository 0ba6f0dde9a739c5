// Package pie generates the polygon geometry of multi-slice pie charts.
//
// A pie is built from a composition vector: one non-negative weight per
// category. BuildWedges turns the vector into a fan of triangulated wedge
// polygons inscribed in the unit circle centered at the origin. Callers scale
// and translate the wedges into place; this package never touches viewport or
// data coordinates.
//
// Wedges are fresh, immutable value objects owned by the caller. BuildWedges
// is a pure function and safe for concurrent use.
package pie

import (
	"math"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/errors"
)

// DefaultArcBudget is the default maximum number of arc sample points shared
// across all wedges of one pie. Larger budgets produce smoother arcs at the
// cost of more polygon vertices.
const DefaultArcBudget = 100

// startAngle is where the first wedge begins, in degrees. 90 points "up",
// matching conventional pie-chart orientation.
const startAngle = 90.0

// Point is a 2-D vertex on a wedge boundary.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Wedge is one slice of a pie: a closed polygon running from the circle
// center along the leading radius, around the arc, and back to the center.
// Category is the 0-based index of the composition entry the wedge represents
// and is the key renderers use for coloring.
type Wedge struct {
	Category int     `json:"category"`
	Start    float64 `json:"start"` // leading edge angle, degrees
	End      float64 `json:"end"`   // trailing edge angle, degrees
	Points   []Point `json:"points"`
}

// Span returns the angular extent of the wedge in degrees.
func (w Wedge) Span() float64 { return w.End - w.Start }

// BuildWedges converts a composition vector into wedge polygons inscribed in
// the unit circle. The vector is normalized internally so entries may carry
// any positive total; the input slice is never mutated.
//
// budget caps the total number of arc samples across the whole pie. Each
// wedge receives samples proportional to its share, but always at least one,
// so a zero-weight category still yields a degenerate (zero-span) wedge and
// the result always contains exactly len(composition) wedges in input order.
// A budget <= 0 falls back to DefaultArcBudget.
//
// BuildWedges returns an error with code DEGENERATE_COMPOSITION when the
// composition sums to zero (or below): every slice would have zero angular
// extent and the pie is undefined. Entries are assumed non-negative; callers
// validate that upstream.
func BuildWedges(composition []float64, budget int) ([]Wedge, error) {
	if len(composition) == 0 {
		return nil, errors.New(errors.ErrCodeDegenerateComposition, "empty composition vector")
	}
	if budget <= 0 {
		budget = DefaultArcBudget
	}

	var sum float64
	for _, v := range composition {
		sum += v
	}
	if sum <= 0 {
		return nil, errors.New(errors.ErrCodeDegenerateComposition,
			"composition sums to %g, cannot form a pie", sum)
	}

	wedges := make([]Wedge, 0, len(composition))

	// Wedge boundaries are derived from the running total of composition
	// consumed so far, not from summing per-wedge spans. Tracking the maximum
	// angle reached keeps round-off from drifting across many slices.
	var consumed float64
	start := startAngle
	for i, v := range composition {
		consumed += v
		end := startAngle + 360*(consumed/sum)
		frac := v / sum

		samples := int(math.Ceil(float64(budget) * frac))
		if samples < 1 {
			samples = 1
		}

		pts := make([]Point, 0, samples+3)
		pts = append(pts, Point{}) // center
		for j := 0; j <= samples; j++ {
			a := (start + (end-start)*float64(j)/float64(samples)) * math.Pi / 180
			pts = append(pts, Point{X: math.Cos(a), Y: math.Sin(a)})
		}
		pts = append(pts, Point{}) // close back at center

		wedges = append(wedges, Wedge{Category: i, Start: start, End: end, Points: pts})
		start = end
	}

	return wedges, nil
}
