package pipeline

import (
	"testing"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/render"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Input: "points.json"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}

	// Check defaults were set
	if opts.Width != DefaultWidth {
		t.Errorf("Width should be %g, got %g", DefaultWidth, opts.Width)
	}
	if opts.Height != DefaultHeight {
		t.Errorf("Height should be %g, got %g", DefaultHeight, opts.Height)
	}
	if opts.ArcBudget != DefaultArcBudget {
		t.Errorf("ArcBudget should be %d, got %d", DefaultArcBudget, opts.ArcBudget)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should default to [svg], got %v", opts.Formats)
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	// Missing input and dataset
	opts := Options{}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Missing input/dataset should fail")
	}

	// Valid with input path
	opts = Options{Input: "points.csv"}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Input path should pass: %v", err)
	}
}

func TestOptionsValidateForLayout(t *testing.T) {
	// Malformed fixed limits
	opts := Options{XLimits: []float64{0, 10, 20}}
	if err := opts.ValidateForLayout(); err == nil {
		t.Error("Three-element limits should fail")
	}

	opts = Options{YLimits: []float64{5}}
	if err := opts.ValidateForLayout(); err == nil {
		t.Error("One-element limits should fail")
	}

	// Valid pair
	opts = Options{XLimits: []float64{0, 10}}
	if err := opts.ValidateForLayout(); err != nil {
		t.Errorf("Two-element limits should pass: %v", err)
	}
}

func TestValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Input: "points.json", Formats: []string{"png"}}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first validation: %v", err)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second validation: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != "png" {
		t.Errorf("Formats should survive revalidation, got %v", opts.Formats)
	}
}

func TestKeyOptsReflectOptions(t *testing.T) {
	opts := Options{
		Width:     640,
		Height:    480,
		ArcBudget: 50,
		XLimits:   []float64{0, 1},
		Title:     "demo",
		NoLegend:  true,
		Scale:     3,
	}

	lk := opts.LayoutKeyOpts()
	if lk.Width != 640 || lk.Height != 480 || lk.ArcBudget != 50 {
		t.Errorf("LayoutKeyOpts mismatch: %+v", lk)
	}
	if len(lk.FixedX) != 2 || lk.FixedY != nil {
		t.Errorf("fixed limits mismatch: %+v", lk)
	}

	ak := opts.ArtifactKeyOpts("png")
	if ak.Format != "png" || ak.Title != "demo" || ak.Legend || ak.Scale != 3 {
		t.Errorf("ArtifactKeyOpts mismatch: %+v", ak)
	}
}

func TestArtifactKeyOptsTheme(t *testing.T) {
	plain := Options{}
	if got := plain.ArtifactKeyOpts("svg").Theme; got != "" {
		t.Errorf("default theme should key to empty string, got %q", got)
	}

	red := render.DefaultTheme()
	red.Background = "#ff0000"
	blue := render.DefaultTheme()
	blue.Background = "#0000ff"

	redKey := (&Options{Theme: &red}).ArtifactKeyOpts("svg").Theme
	blueKey := (&Options{Theme: &blue}).ArtifactKeyOpts("svg").Theme

	if redKey == "" || blueKey == "" {
		t.Fatal("custom themes should produce a theme hash")
	}
	if redKey == blueKey {
		t.Error("different themes should produce different theme hashes")
	}
}
