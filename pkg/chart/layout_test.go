package chart

import (
	"math"
	"testing"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/errors"
)

const tol = 1e-9

func testChart() Chart {
	return Chart{
		Points: []Point{
			{X: 0, Y: 0, Composition: []float64{1, 1}},
			{X: 10, Y: 5, Composition: []float64{3, 1}},
		},
		Categories: []string{"alpha", "beta"},
		Size:       FixedSize(20),
		Viewport:   Viewport{Width: 300, Height: 300},
	}
}

func TestComputeLayout(t *testing.T) {
	l, err := ComputeLayout(testChart())
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}

	if len(l.Pies) != 2 {
		t.Fatalf("pie count = %d, want 2", len(l.Pies))
	}
	for i, p := range l.Pies {
		if len(p.Wedges) != 2 {
			t.Errorf("pie %d has %d wedges, want 2", i, len(p.Wedges))
		}
		if p.Diameter != 20 {
			t.Errorf("pie %d diameter = %g, want 20 (broadcast scalar)", i, p.Diameter)
		}
	}

	// The extreme x positions must sit exactly one pie radius from each edge.
	if px, _ := l.PixelPos(0, 0); math.Abs(px-10) > tol {
		t.Errorf("pixel x of min = %g, want 10", px)
	}
	if px, _ := l.PixelPos(10, 0); math.Abs(px-290) > tol {
		t.Errorf("pixel x of max = %g, want 290", px)
	}

	// Data-unit radius must equal half the diameter under the pixel map:
	// rx * width / span == diameter/2.
	rx := l.Pies[0].RX
	if got := rx * l.Viewport.Width / l.XLimits.Span(); math.Abs(got-10) > tol {
		t.Errorf("rx in pixels = %g, want 10", got)
	}
	ry := l.Pies[0].RY
	if got := ry * l.Viewport.Height / l.YLimits.Span(); math.Abs(got-10) > tol {
		t.Errorf("ry in pixels = %g, want 10", got)
	}
}

func TestComputeLayoutSharedGeometry(t *testing.T) {
	c := testChart()
	c.Points[1].Composition = []float64{1, 1}

	l, err := ComputeLayout(c)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	// Identical compositions share one wedge build.
	if &l.Pies[0].Wedges[0].Points[0] != &l.Pies[1].Wedges[0].Points[0] {
		t.Error("identical compositions should share wedge geometry within a call")
	}
}

func TestComputeLayoutPerPointSizes(t *testing.T) {
	c := testChart()
	c.Size = PerPointSizes([]float64{10, 40})

	l, err := ComputeLayout(c)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if l.Pies[0].Diameter != 10 || l.Pies[1].Diameter != 40 {
		t.Errorf("diameters = %g, %g, want 10, 40", l.Pies[0].Diameter, l.Pies[1].Diameter)
	}
	// The margin solve uses the largest radius.
	if px, _ := l.PixelPos(0, 0); math.Abs(px-20) > tol {
		t.Errorf("pixel x of min = %g, want 20 (largest radius)", px)
	}
}

func TestComputeLayoutFixedLimits(t *testing.T) {
	c := testChart()
	l, err := ComputeLayout(c, WithFixedXLimits(-5, 15), WithFixedYLimits(0, 10))
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if l.XLimits.Lo != -5 || l.XLimits.Hi != 15 {
		t.Errorf("XLimits = %+v, want {-5 15}", l.XLimits)
	}
	if l.YLimits.Lo != 0 || l.YLimits.Hi != 10 {
		t.Errorf("YLimits = %+v, want {0 10}", l.YLimits)
	}

	_, err = ComputeLayout(c, WithFixedXLimits(3, 3))
	if !errors.Is(err, errors.ErrCodeDegenerateLimits) {
		t.Errorf("non-increasing fixed limits: code = %v, want DEGENERATE_LIMITS", errors.GetCode(err))
	}
}

func TestComputeLayoutValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Chart)
		code   errors.Code
	}{
		{
			name:   "NoPoints",
			mutate: func(c *Chart) { c.Points = nil },
			code:   errors.ErrCodeInvalidDataset,
		},
		{
			name:   "ZeroViewport",
			mutate: func(c *Chart) { c.Viewport = Viewport{} },
			code:   errors.ErrCodeInvalidViewport,
		},
		{
			name:   "RaggedCompositions",
			mutate: func(c *Chart) { c.Points[1].Composition = []float64{1, 2, 3} },
			code:   errors.ErrCodeInvalidDataset,
		},
		{
			name:   "CategoryMismatch",
			mutate: func(c *Chart) { c.Categories = []string{"only-one"} },
			code:   errors.ErrCodeInvalidDataset,
		},
		{
			name:   "SizeVectorMismatch",
			mutate: func(c *Chart) { c.Size = PerPointSizes([]float64{1, 2, 3}) },
			code:   errors.ErrCodeSizeMismatch,
		},
		{
			name:   "ZeroComposition",
			mutate: func(c *Chart) { c.Points[0].Composition = []float64{0, 0} },
			code:   errors.ErrCodeDegenerateComposition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testChart()
			tt.mutate(&c)
			_, err := ComputeLayout(c)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestSizeSpecResolve(t *testing.T) {
	sizes, err := SizeSpec{}.Resolve(3)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, d := range sizes {
		if d != DefaultDiameter {
			t.Errorf("zero-value spec diameter = %g, want %g", d, DefaultDiameter)
		}
	}

	src := []float64{1, 2}
	spec := PerPointSizes(src)
	sizes, err = spec.Resolve(2)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	sizes[0] = 99
	if src[0] != 1 {
		t.Error("Resolve must copy, not alias, the size vector")
	}
}
