package io

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/chart"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/errors"
)

func TestReadDatasetJSON(t *testing.T) {
	input := `{
	  "title": "energy",
	  "categories": ["wind", "solar"],
	  "size": 25,
	  "points": [
	    {"x": 1, "y": 2, "composition": [3, 1]},
	    {"x": 4, "y": 5, "size": 40, "composition": [1, 1]}
	  ]
	}`

	d, err := ReadDatasetJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDatasetJSON: %v", err)
	}
	if d.Title != "energy" {
		t.Errorf("Title = %q, want energy", d.Title)
	}
	if len(d.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(d.Points))
	}
	if d.Points[1].Size != 40 {
		t.Errorf("per-point size = %g, want 40", d.Points[1].Size)
	}

	c := d.ToChart(chart.Viewport{Width: 300, Height: 300})
	sizes, err := c.Size.Resolve(2)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// Point 0 falls back to the dataset scalar, point 1 keeps its own size.
	if sizes[0] != 25 || sizes[1] != 40 {
		t.Errorf("resolved sizes = %v, want [25 40]", sizes)
	}
}

func TestReadDatasetJSONInvalid(t *testing.T) {
	for name, input := range map[string]string{
		"Malformed": `{"points": [`,
		"NoPoints":  `{"points": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadDatasetJSON(strings.NewReader(input))
			if !errors.Is(err, errors.ErrCodeInvalidDataset) {
				t.Errorf("code = %v, want INVALID_DATASET", errors.GetCode(err))
			}
		})
	}
}

func TestReadDatasetCSV(t *testing.T) {
	input := "x,y,size,wind,solar,hydro\n" +
		"0,0,20,1,2,3\n" +
		"5,1,30,4,0,1\n"

	d, err := ReadDatasetCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDatasetCSV: %v", err)
	}
	if want := []string{"wind", "solar", "hydro"}; len(d.Categories) != 3 ||
		d.Categories[0] != want[0] || d.Categories[2] != want[2] {
		t.Errorf("Categories = %v, want %v", d.Categories, want)
	}
	if len(d.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(d.Points))
	}
	p := d.Points[1]
	if p.X != 5 || p.Y != 1 || p.Size != 30 {
		t.Errorf("point = %+v", p)
	}
	if len(p.Composition) != 3 || p.Composition[0] != 4 {
		t.Errorf("composition = %v, want [4 0 1]", p.Composition)
	}
}

func TestReadDatasetCSVNoSizeColumn(t *testing.T) {
	input := "x,y,a,b\n1,2,3,4\n"
	d, err := ReadDatasetCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDatasetCSV: %v", err)
	}
	if d.Points[0].Size != 0 {
		t.Errorf("Size = %g, want 0 (unset)", d.Points[0].Size)
	}
	if len(d.Points[0].Composition) != 2 {
		t.Errorf("composition length = %d, want 2", len(d.Points[0].Composition))
	}
}

func TestReadDatasetCSVInvalid(t *testing.T) {
	tests := map[string]string{
		"NoHeader":     "",
		"BadHeader":    "foo,bar,baz\n1,2,3\n",
		"NoCategories": "x,y\n1,2\n",
		"ShortRow":     "x,y,a\n1,2\n",
		"NonNumeric":   "x,y,a\n1,2,three\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadDatasetCSV(strings.NewReader(input))
			if !errors.Is(err, errors.ErrCodeInvalidDataset) {
				t.Errorf("code = %v, want INVALID_DATASET", errors.GetCode(err))
			}
		})
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	l, err := chart.ComputeLayout(chart.Chart{
		Points:   []chart.Point{{X: 0, Y: 0, Composition: []float64{1, 2}}, {X: 3, Y: 4, Composition: []float64{2, 1}}},
		Size:     chart.FixedSize(16),
		Viewport: chart.Viewport{Width: 400, Height: 300},
	})
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(path, l); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}

	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if got.XLimits != l.XLimits || got.YLimits != l.YLimits {
		t.Errorf("limits changed in round trip: %+v vs %+v", got, l)
	}
	if len(got.Pies) != len(l.Pies) {
		t.Fatalf("pies = %d, want %d", len(got.Pies), len(l.Pies))
	}
	if got.Pies[0].RX != l.Pies[0].RX {
		t.Errorf("RX changed in round trip")
	}
}

func TestReadLayoutInvalid(t *testing.T) {
	_, err := ReadLayout(strings.NewReader(`{"viewport":{"width":0,"height":0}}`))
	if !errors.Is(err, errors.ErrCodeInvalidViewport) {
		t.Errorf("code = %v, want INVALID_VIEWPORT", errors.GetCode(err))
	}

	_, err = ReadLayout(strings.NewReader(
		`{"viewport":{"width":10,"height":10},"xlimits":{"lo":1,"hi":1},"ylimits":{"lo":0,"hi":1}}`))
	if !errors.Is(err, errors.ErrCodeDegenerateLimits) {
		t.Errorf("code = %v, want DEGENERATE_LIMITS", errors.GetCode(err))
	}

	_, err = ReadLayoutFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("code = %v, want NOT_FOUND", errors.GetCode(err))
	}
}
