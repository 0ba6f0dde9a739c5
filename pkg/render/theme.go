package render

import (
	"github.com/BurntSushi/toml"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/errors"
)

// Theme holds the visual styling for chart output. Themes are loaded from
// TOML files; any omitted field keeps its default.
//
// Example theme file:
//
//	background = "#fffbf5"
//	stroke = "#ffffff"
//	stroke_width = 0.8
//	font_size = 13
//	palette = ["#1b9e77", "#d95f02", "#7570b3"]
type Theme struct {
	// Background is the chart background fill, hex.
	Background string `toml:"background"`

	// Stroke is the wedge outline color, hex. Empty disables outlines.
	Stroke string `toml:"stroke"`

	// StrokeWidth is the wedge outline width in pixels.
	StrokeWidth float64 `toml:"stroke_width"`

	// FontSize is the legend and title font size in pixels.
	FontSize float64 `toml:"font_size"`

	// Palette overrides the generated category colors, hex strings in
	// category order. Empty keeps the generated palette.
	Palette []string `toml:"palette"`
}

// DefaultTheme returns the built-in theme: white wedge outlines on a white
// background.
func DefaultTheme() Theme {
	return Theme{
		Background:  "#ffffff",
		Stroke:      "#ffffff",
		StrokeWidth: 1,
		FontSize:    12,
	}
}

// LoadTheme reads a TOML theme file, layered over DefaultTheme. Colors are
// validated eagerly so a broken theme fails at load time rather than at
// render time.
func LoadTheme(path string) (Theme, error) {
	t := DefaultTheme()
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return Theme{}, errors.Wrap(errors.ErrCodeInvalidTheme, err, "load theme %s", path)
	}
	if err := t.validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// PaletteFor returns the theme's palette when set, otherwise a generated
// palette of n colors.
func (t Theme) PaletteFor(n int) (Palette, error) {
	if len(t.Palette) == 0 {
		return DefaultPalette(n), nil
	}
	return ParseHexPalette(t.Palette)
}

func (t Theme) validate() error {
	for _, c := range []string{t.Background, t.Stroke} {
		if c == "" {
			continue
		}
		if _, err := ParseHexPalette([]string{c}); err != nil {
			return errors.New(errors.ErrCodeInvalidTheme, "invalid color %q", c)
		}
	}
	if _, err := ParseHexPalette(t.Palette); err != nil {
		return err
	}
	if t.StrokeWidth < 0 {
		return errors.New(errors.ErrCodeInvalidTheme, "stroke_width must be >= 0, got %g", t.StrokeWidth)
	}
	return nil
}
