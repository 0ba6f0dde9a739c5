package sink

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/chart"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/render"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	runID   string
	palette render.Palette
	title   string
}

// WithJSONRunID records the pipeline run ID in the output. Without it a fresh
// ID is generated.
func WithJSONRunID(id string) JSONOption { return func(r *jsonRenderer) { r.runID = id } }

// WithJSONPalette records the palette used for the visual outputs so the
// document can be re-rendered with identical colors.
func WithJSONPalette(p render.Palette) JSONOption { return func(r *jsonRenderer) { r.palette = p } }

// WithJSONTitle records the chart title.
func WithJSONTitle(s string) JSONOption { return func(r *jsonRenderer) { r.title = s } }

type jsonOutput struct {
	RunID      string             `json:"run_id"`
	Title      string             `json:"title,omitempty"`
	Layout     chart.Layout       `json:"layout"`
	Palette    []string           `json:"palette,omitempty"`
	Categories []string           `json:"categories,omitempty"`
}

// RenderJSON exports the layout and render metadata as a pretty-printed JSON
// document, the data interchange format for bubble-pie-chart. It enables:
//
//   - Integration with external visualization tools
//   - Caching computed layouts for fast re-rendering
//   - Round-trip rendering (re-import and render identically)
func RenderJSON(l chart.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}

	out := jsonOutput{
		RunID:      r.runID,
		Title:      r.title,
		Layout:     l,
		Categories: l.Categories,
	}
	if r.palette != nil {
		out.Palette = r.palette.Hexes()
	}
	return json.MarshalIndent(out, "", "  ")
}
