package sink

import (
	"bytes"

	"github.com/fogleman/gg"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/chart"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/errors"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/render"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	theme   render.Theme
	palette render.Palette
	scale   float64
}

// WithPNGTheme sets the visual theme. Defaults to render.DefaultTheme.
func WithPNGTheme(t render.Theme) PNGOption { return func(r *pngRenderer) { r.theme = t } }

// WithPNGPalette overrides the category palette.
func WithPNGPalette(p render.Palette) PNGOption { return func(r *pngRenderer) { r.palette = p } }

// WithPNGScale sets the raster scale factor (default 2.0 for 2x resolution).
func WithPNGScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// RenderPNG rasterizes the layout directly. Wedges are drawn as filled
// polygons; no SVG intermediate is involved.
func RenderPNG(l chart.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{theme: render.DefaultTheme(), scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = 1
	}
	if r.palette == nil {
		r.palette = render.DefaultPalette(l.CategoryCount())
	}

	dc := gg.NewContext(int(l.Viewport.Width*r.scale), int(l.Viewport.Height*r.scale))
	dc.Scale(r.scale, r.scale)

	if r.theme.Background != "" {
		dc.SetHexColor(r.theme.Background)
		dc.Clear()
	}

	for _, p := range l.Pies {
		cx, cy := l.PixelPos(p.X, p.Y)
		radius := p.Diameter / 2

		for _, w := range p.Wedges {
			if w.Span() == 0 {
				continue
			}
			dc.NewSubPath()
			for j, pt := range w.Points {
				x, y := cx+pt.X*radius, cy-pt.Y*radius
				if j == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.ClosePath()

			dc.SetColor(r.palette.Color(w.Category))
			if r.theme.Stroke != "" && r.theme.StrokeWidth > 0 {
				dc.FillPreserve()
				dc.SetHexColor(r.theme.Stroke)
				dc.SetLineWidth(r.theme.StrokeWidth)
				dc.Stroke()
			} else {
				dc.Fill()
			}
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}
