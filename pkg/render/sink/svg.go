// Package sink renders computed bubble-pie layouts to output formats:
// SVG, PNG (raster), PDF (via librsvg), and JSON (data interchange).
//
// Sinks consume a chart.Layout and never recompute geometry or limits; all
// numeric layout work happens upstream in pkg/chart.
package sink

import (
	"bytes"
	"fmt"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/chart"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/render"
)

const (
	legendSwatch  = 12.0 // legend swatch side length, px
	legendPadding = 8.0
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme   render.Theme
	palette render.Palette
	title   string
	legend  bool
}

// WithTheme sets the visual theme. Defaults to render.DefaultTheme.
func WithTheme(t render.Theme) SVGOption { return func(r *svgRenderer) { r.theme = t } }

// WithPalette overrides the category palette.
func WithPalette(p render.Palette) SVGOption { return func(r *svgRenderer) { r.palette = p } }

// WithTitle adds a title centered above the plot area.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

// WithoutLegend disables the category legend.
func WithoutLegend() SVGOption { return func(r *svgRenderer) { r.legend = false } }

// RenderSVG renders the layout as an SVG document. Each pie is a group of
// wedge paths placed at the point's pixel position and scaled by half the
// point's device-unit diameter; the y axis is flipped to screen coordinates.
func RenderSVG(l chart.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(l, opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Viewport.Width, l.Viewport.Height, l.Viewport.Width, l.Viewport.Height)

	if r.theme.Background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.theme.Background)
	}
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="%.1f" font-weight="bold">%s</text>`+"\n",
			l.Viewport.Width/2, r.theme.FontSize*1.5, r.theme.FontSize*1.2, escapeXML(r.title))
	}

	for i := range l.Pies {
		renderPie(&buf, &r, l, i)
	}

	if r.legend && len(l.Categories) > 0 {
		renderLegend(&buf, &r, l)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(l chart.Layout, opts ...SVGOption) svgRenderer {
	r := svgRenderer{theme: render.DefaultTheme(), legend: true}
	for _, opt := range opts {
		opt(&r)
	}
	if r.palette == nil {
		r.palette = render.DefaultPalette(l.CategoryCount())
	}
	return r
}

func renderPie(buf *bytes.Buffer, r *svgRenderer, l chart.Layout, i int) {
	p := l.Pies[i]
	cx, cy := l.PixelPos(p.X, p.Y)
	radius := p.Diameter / 2

	fmt.Fprintf(buf, `  <g id="pie-%d">`+"\n", i)
	for _, w := range p.Wedges {
		if w.Span() == 0 {
			// Zero-share categories keep their wedge for count stability but
			// have no visible area.
			continue
		}
		buf.WriteString(`    <path d="`)
		for j, pt := range w.Points {
			cmd := 'L'
			if j == 0 {
				cmd = 'M'
			}
			fmt.Fprintf(buf, "%c%.2f %.2f ", cmd, cx+pt.X*radius, cy-pt.Y*radius)
		}
		fmt.Fprintf(buf, `Z" fill="%s"`, r.palette.Hex(w.Category))
		if r.theme.Stroke != "" && r.theme.StrokeWidth > 0 {
			fmt.Fprintf(buf, ` stroke="%s" stroke-width="%.2f"`, r.theme.Stroke, r.theme.StrokeWidth)
		}
		buf.WriteString("/>\n")
	}
	buf.WriteString("  </g>\n")
}

func renderLegend(buf *bytes.Buffer, r *svgRenderer, l chart.Layout) {
	rowH := legendSwatch + legendPadding/2
	x := l.Viewport.Width - legendPadding - 120
	y := legendPadding

	buf.WriteString(`  <g id="legend">` + "\n")
	for i, label := range l.Categories {
		ry := y + float64(i)*rowH
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.0f" height="%.0f" fill="%s"/>`+"\n",
			x, ry, legendSwatch, legendSwatch, r.palette.Hex(i))
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.1f">%s</text>`+"\n",
			x+legendSwatch+legendPadding/2, ry+legendSwatch-2, r.theme.FontSize, escapeXML(label))
	}
	buf.WriteString("  </g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		switch c {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(c)
		}
	}
	return buf.String()
}
