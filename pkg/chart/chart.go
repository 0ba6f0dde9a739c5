// Package chart composes the pie geometry builder and the viewport limit
// solver into a renderable bubble-pie layout.
//
// A Chart is the caller-facing value object: per-point positions and
// composition vectors, a scalar-or-vector size specification in device units,
// and the pixel dimensions of the target viewport. ComputeLayout resolves
// sizes, solves axis limits for both axes, builds wedge geometry per point,
// and converts device-unit diameters into data-unit radii using the solved
// limits. The resulting Layout is a plain value that sinks (SVG, PNG, JSON)
// consume without further numeric work.
//
// Cross-array validation (composition row lengths, size vector length) lives
// here, at the boundary; the core packages pie and limits assume validated
// inputs.
package chart

import (
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/errors"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/limits"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/pie"
)

// DefaultDiameter is the on-screen pie diameter, in device units, used when a
// chart does not specify sizes.
const DefaultDiameter = 20.0

// Viewport holds the pixel dimensions of the plotting surface.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is one data point: a position and the composition vector defining its
// pie-slice proportions.
type Point struct {
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Composition []float64 `json:"composition"`
}

// Chart describes a bubble-pie scatter plot before layout.
type Chart struct {
	// Points are the data points. All composition vectors must have the
	// same length.
	Points []Point

	// Categories optionally names the composition entries, in order. When
	// set, its length must match the composition length. Sinks use it for
	// legend labels.
	Categories []string

	// Size is the on-screen pie diameter specification in device units.
	// The zero value broadcasts DefaultDiameter to every point.
	Size SizeSpec

	// Viewport is the pixel geometry of the target plotting surface.
	Viewport Viewport
}

// SizeSpec is a scalar-or-vector diameter specification. A scalar is
// broadcast to all points; a vector must have one entry per point.
type SizeSpec struct {
	scalar   float64
	perPoint []float64
}

// FixedSize returns a SizeSpec that gives every point the same diameter.
func FixedSize(diameter float64) SizeSpec {
	return SizeSpec{scalar: diameter}
}

// PerPointSizes returns a SizeSpec with one diameter per point.
func PerPointSizes(diameters []float64) SizeSpec {
	return SizeSpec{perPoint: diameters}
}

// Resolve broadcasts or validates the sizes against n points and returns one
// diameter per point. A vector whose length differs from n fails with
// code SIZE_MISMATCH. The returned slice is freshly allocated.
func (s SizeSpec) Resolve(n int) ([]float64, error) {
	if s.perPoint != nil {
		if len(s.perPoint) != n {
			return nil, errors.New(errors.ErrCodeSizeMismatch,
				"size vector has %d entries for %d points", len(s.perPoint), n)
		}
		out := make([]float64, n)
		copy(out, s.perPoint)
		return out, nil
	}
	d := s.scalar
	if d <= 0 {
		d = DefaultDiameter
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = d
	}
	return out, nil
}

// PiePlacement is one laid-out pie: its data position, resolved device-unit
// diameter, data-unit radii under the solved limits, and wedge geometry
// inscribed in the unit circle.
type PiePlacement struct {
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Diameter float64     `json:"diameter"` // device units
	RX       float64     `json:"rx"`       // data units
	RY       float64     `json:"ry"`       // data units
	Wedges   []pie.Wedge `json:"wedges"`
}

// Layout is the fully computed plot: solved axis limits plus per-point pie
// placements. It is an immutable value object and serializes to JSON for
// caching and the layout/visualize round trip.
type Layout struct {
	Viewport   Viewport          `json:"viewport"`
	XLimits    limits.AxisLimits `json:"xlimits"`
	YLimits    limits.AxisLimits `json:"ylimits"`
	Categories []string          `json:"categories,omitempty"`
	ArcBudget  int               `json:"arc_budget"`
	Pies       []PiePlacement    `json:"pies"`
}

// PixelPos maps a data-space position to pixel coordinates in the viewport.
// The y axis is flipped so data "up" is screen "up".
func (l Layout) PixelPos(x, y float64) (px, py float64) {
	px = l.XLimits.PixelOf(x, l.Viewport.Width)
	py = l.Viewport.Height - l.YLimits.PixelOf(y, l.Viewport.Height)
	return px, py
}

// CategoryCount returns the composition length of the chart, 0 for an empty
// layout.
func (l Layout) CategoryCount() int {
	if len(l.Categories) > 0 {
		return len(l.Categories)
	}
	if len(l.Pies) > 0 {
		return len(l.Pies[0].Wedges)
	}
	return 0
}
