// Package pipeline provides the core chart pipeline for bubble-pie-chart.
//
// This package implements the complete load → layout → render pipeline that
// can be used by CLI and server components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a dataset from a JSON or CSV file, or accept one inline
//  2. Layout: Solve axis limits and build wedge geometry for every point
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "points.json",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load only
//	ds, err := runner.Load(ctx, opts)
//
//	// Layout with an existing dataset
//	layout, err := runner.ComputeLayout(ctx, ds, opts)
//
//	// Render with an existing layout
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/cache"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/chart"
	chartio "github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/io"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/pie"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 600.0

	// DefaultArcBudget is the default arc sample budget per pie.
	DefaultArcBudget = pie.DefaultArcBudget
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the chart pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Load options
	Input   string           `json:"input,omitempty"`   // dataset file path (CLI)
	Dataset *chartio.Dataset `json:"dataset,omitempty"` // inline dataset (server)
	Size    float64          `json:"size,omitempty"`    // scalar diameter override
	Refresh bool             `json:"refresh,omitempty"` // bypass the cache

	// Layout options
	Width     float64   `json:"width,omitempty"`
	Height    float64   `json:"height,omitempty"`
	ArcBudget int       `json:"arc_budget,omitempty"`
	XLimits   []float64 `json:"xlim,omitempty"` // fixed [lo, hi], empty = solve
	YLimits   []float64 `json:"ylim,omitempty"` // fixed [lo, hi], empty = solve

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Title    string   `json:"title,omitempty"`
	NoLegend bool     `json:"no_legend,omitempty"`
	Scale    float64  `json:"scale,omitempty"`   // PNG supersampling factor
	Palette  []string `json:"palette,omitempty"` // hex colors, empty = theme palette

	// Runtime options (not serialized)
	Theme  *render.Theme `json:"-"`
	Logger *log.Logger   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dataset is the loaded dataset.
	Dataset chartio.Dataset

	// DatasetHash is the content hash of the dataset.
	DatasetHash string

	// Layout contains the computed layout (limits, wedge geometry).
	Layout chart.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PointCount    int
	CategoryCount int
	LoadTime      time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// validateFixedLimits checks a fixed-limit pair from options.
func validateFixedLimits(axis string, lim []float64) error {
	if len(lim) == 0 {
		return nil
	}
	if len(lim) != 2 {
		return fmt.Errorf("%s limits must be [lo, hi], got %d values", axis, len(lim))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading a dataset.
func (o *Options) ValidateForLoad() error {
	if o.Input == "" && o.Dataset == nil {
		return fmt.Errorf("input or dataset is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.ArcBudget == 0 {
		o.ArcBudget = DefaultArcBudget
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("viewport %gx%g is not positive", o.Width, o.Height)
	}
	if err := validateFixedLimits("x", o.XLimits); err != nil {
		return err
	}
	return validateFixedLimits("y", o.YLimits)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:     o.Width,
		Height:    o.Height,
		ArcBudget: o.ArcBudget,
		FixedX:    o.XLimits,
		FixedY:    o.YLimits,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:  format,
		Title:   o.Title,
		Legend:  !o.NoLegend,
		Scale:   o.Scale,
		Palette: o.Palette,
		Theme:   o.themeHash(),
	}
}

// themeHash identifies a custom theme in cache keys. The theme changes the
// rendered bytes (background, stroke, default palette), so two runs may only
// share an artifact entry when their themes match. The default theme hashes
// to the empty string.
func (o *Options) themeHash() string {
	if o.Theme == nil {
		return ""
	}
	data, _ := json.Marshal(o.Theme)
	return cache.Hash(data)
}
