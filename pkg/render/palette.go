// Package render provides color palettes, themes, and format conversion
// shared by the output sinks.
package render

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/errors"
)

// Palette maps category indices to colors. Indices beyond the palette length
// cycle.
type Palette []colorful.Color

// DefaultPalette returns n evenly spaced hues with fixed saturation and
// lightness, pleasant against a light background.
func DefaultPalette(n int) Palette {
	if n <= 0 {
		n = 1
	}
	p := make(Palette, n)
	for i := range p {
		h := float64(i) / float64(n) * 360
		p[i] = colorful.Hsl(h, 0.55, 0.55)
	}
	return p
}

// ParseHexPalette parses a list of hex color strings (e.g. "#1b9e77") into a
// palette. Invalid entries fail with code INVALID_THEME.
func ParseHexPalette(hexes []string) (Palette, error) {
	p := make(Palette, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTheme, err, "palette entry %d: %q", i, h)
		}
		p[i] = c
	}
	return p, nil
}

// Color returns the color for a category index, cycling past the end.
func (p Palette) Color(i int) color.Color {
	if len(p) == 0 {
		return colorful.Hsl(0, 0, 0.5)
	}
	return p[i%len(p)]
}

// Hex returns the color for a category index as a "#rrggbb" string.
func (p Palette) Hex(i int) string {
	if len(p) == 0 {
		return "#808080"
	}
	return p[i%len(p)].Hex()
}

// Hexes returns the full palette as hex strings, for serialization.
func (p Palette) Hexes() []string {
	out := make([]string, len(p))
	for i := range p {
		out[i] = p[i].Hex()
	}
	return out
}

func (p Palette) String() string {
	return fmt.Sprintf("Palette(%d colors)", len(p))
}
