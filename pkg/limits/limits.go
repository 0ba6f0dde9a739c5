// Package limits computes data-space axis limits that keep every pie of a
// bubble-pie scatter plot fully inside a fixed-size viewport.
//
// The problem is an inverse layout problem rather than a bounding box: each
// pie occupies a fixed on-screen radius in device units, so the margin it
// needs in data units depends on the very limits being solved for. Solve
// finds the tightest limits that satisfy the containment constraint in closed
// form. It is run once per axis; x and y are independent.
package limits

import (
	"math"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/errors"
)

// AxisLimits is an ordered (Lo, Hi) pair of data-space limits for one axis.
// Invariant: Lo < Hi strictly.
type AxisLimits struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Span returns Hi - Lo.
func (l AxisLimits) Span() float64 { return l.Hi - l.Lo }

// PixelOf maps a data value to its pixel position on an axis of the given
// pixel extent: pixel = extent * (v - Lo) / (Hi - Lo).
func (l AxisLimits) PixelOf(v, extent float64) float64 {
	return extent * (v - l.Lo) / l.Span()
}

// DataOf is the inverse of PixelOf.
func (l AxisLimits) DataOf(px, extent float64) float64 {
	return l.Lo + px/extent*l.Span()
}

// DataPerPixel returns the data-unit length of a single pixel. Renderers use
// this to convert device-unit pie diameters into data units.
func (l AxisLimits) DataPerPixel(extent float64) float64 {
	return l.Span() / extent
}

// Contains reports whether v lies within the limits, inclusive.
func (l AxisLimits) Contains(v float64) bool { return v >= l.Lo && v <= l.Hi }

// Solve computes the tightest axis limits such that every point's pie stays
// inside [0, extent] pixels under the affine map
// pixel = extent * (value - lo) / (hi - lo), where each pie's pixel radius is
// half its device-unit diameter.
//
// The containment constraints at the extreme positions are taken as
// equalities: min(positions) maps to exactly maxRadius pixels and
// max(positions) to exactly extent - maxRadius pixels. That is the 2x2 linear
// system
//
//	(extent - r)*lo + r*hi = min*extent
//	r*lo + (extent - r)*hi = max*extent
//
// solved by direct inversion. The radius used for the margin is capped at
// extent/3 so a single oversized pie cannot force degenerate limits; the cap
// keeps the system matrix non-singular.
//
// When all positions coincide the axis is widened symmetrically by one data
// unit before solving. Solve is a pure function: identical inputs yield
// bit-identical limits.
//
// positions and diameters must be non-empty and extent positive; the caller
// is responsible for cross-array length consistency. Solve returns an error
// with code DEGENERATE_LIMITS if the solved limits are non-increasing, which
// indicates a violated precondition upstream.
func Solve(positions, diameters []float64, extent float64) (AxisLimits, error) {
	if len(positions) == 0 {
		return AxisLimits{}, errors.New(errors.ErrCodeInvalidDataset, "no positions to solve limits for")
	}
	if len(diameters) == 0 {
		return AxisLimits{}, errors.New(errors.ErrCodeInvalidDataset, "no diameters to solve limits for")
	}
	if extent <= 0 {
		return AxisLimits{}, errors.New(errors.ErrCodeInvalidViewport, "viewport extent must be positive, got %g", extent)
	}

	minV, maxV := positions[0], positions[0]
	for _, v := range positions[1:] {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	if minV == maxV {
		minV--
		maxV++
	}

	var maxDiam float64
	for _, d := range diameters {
		maxDiam = math.Max(maxDiam, d)
	}
	r := maxDiam / 2
	if limit := extent / 3; r > limit {
		r = limit
	}

	// det = (extent-r)^2 - r^2 = extent*(extent - 2r), positive under the cap.
	det := extent * (extent - 2*r)
	lo := ((extent-r)*minV*extent - r*maxV*extent) / det
	hi := ((extent-r)*maxV*extent - r*minV*extent) / det

	if !(lo < hi) {
		return AxisLimits{}, errors.New(errors.ErrCodeDegenerateLimits,
			"solved limits are non-increasing: lo=%g hi=%g", lo, hi)
	}
	return AxisLimits{Lo: lo, Hi: hi}, nil
}
