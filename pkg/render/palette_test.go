package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/errors"
)

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette(5)
	if len(p) != 5 {
		t.Fatalf("palette size = %d, want 5", len(p))
	}
	seen := map[string]bool{}
	for i := range p {
		hex := p.Hex(i)
		if seen[hex] {
			t.Errorf("duplicate palette color %s", hex)
		}
		seen[hex] = true
	}
	// Cycling past the end wraps.
	if p.Hex(5) != p.Hex(0) {
		t.Errorf("Hex(5) = %s, want %s", p.Hex(5), p.Hex(0))
	}
}

func TestParseHexPalette(t *testing.T) {
	p, err := ParseHexPalette([]string{"#1b9e77", "#d95f02"})
	if err != nil {
		t.Fatalf("ParseHexPalette: %v", err)
	}
	if got := p.Hex(0); got != "#1b9e77" {
		t.Errorf("Hex(0) = %s, want #1b9e77", got)
	}

	_, err = ParseHexPalette([]string{"not-a-color"})
	if !errors.Is(err, errors.ErrCodeInvalidTheme) {
		t.Errorf("code = %v, want INVALID_THEME", errors.GetCode(err))
	}
}

func TestEmptyPaletteFallback(t *testing.T) {
	var p Palette
	if p.Hex(3) == "" {
		t.Error("empty palette must still return a color")
	}
	if p.Color(3) == nil {
		t.Error("empty palette must still return a color.Color")
	}
}

func TestLoadTheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.toml")
	content := `
background = "#fffbf5"
stroke_width = 0.5
palette = ["#1b9e77", "#d95f02", "#7570b3"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	th, err := LoadTheme(path)
	if err != nil {
		t.Fatalf("LoadTheme: %v", err)
	}
	if th.Background != "#fffbf5" {
		t.Errorf("Background = %s, want #fffbf5", th.Background)
	}
	// Omitted fields keep defaults.
	if th.Stroke != DefaultTheme().Stroke {
		t.Errorf("Stroke = %s, want default %s", th.Stroke, DefaultTheme().Stroke)
	}

	p, err := th.PaletteFor(2)
	if err != nil {
		t.Fatalf("PaletteFor: %v", err)
	}
	if len(p) != 3 {
		t.Errorf("theme palette size = %d, want 3", len(p))
	}
}

func TestLoadThemeInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"BadTOML", `background = `},
		{"BadColor", `background = "reddish"`},
		{"BadPaletteEntry", `palette = ["#ff0000", "nope"]`},
		{"NegativeStroke", `stroke_width = -1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".toml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadTheme(path); !errors.Is(err, errors.ErrCodeInvalidTheme) {
				t.Errorf("code = %v, want INVALID_THEME", errors.GetCode(err))
			}
		})
	}
}
