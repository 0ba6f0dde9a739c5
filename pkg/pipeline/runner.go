package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/cache"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/chart"
	chartio "github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/io"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/observability"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/render"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/render/sink"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	ds, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Dataset = ds
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.PointCount = len(ds.Points)
	result.Stats.CategoryCount = len(ds.Categories)

	// Compute dataset hash for cache keys and server responses
	if data, err := json.Marshal(ds); err == nil {
		result.DatasetHash = cache.Hash(data)
	}

	// The dataset title is the default chart title.
	if opts.Title == "" {
		opts.Title = ds.Title
	}

	r.Logger.Info("loaded dataset",
		"points", len(ds.Points),
		"categories", len(ds.Categories),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	layout, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, ds, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"pies", len(layout.Pies),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the dataset named by the options, or returns the inline one.
func (r *Runner) Load(ctx context.Context, opts Options) (chartio.Dataset, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return chartio.Dataset{}, err
	}
	r.applyLogger(&opts)

	source := opts.Input
	if source == "" {
		source = "inline"
	}

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, source)

	var ds chartio.Dataset
	var err error
	if opts.Dataset != nil {
		ds = *opts.Dataset
	} else {
		ds, err = chartio.ReadDatasetFile(opts.Input)
	}
	// The override replaces the dataset default size; per-point sizes win.
	if err == nil && opts.Size > 0 {
		ds.Size = opts.Size
	}

	observability.Pipeline().OnLoadComplete(ctx, source, len(ds.Points), time.Since(start), err)
	return ds, err
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, ds chartio.Dataset, opts Options) (chart.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return chart.Layout{}, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key
	dsData, _ := json.Marshal(ds)
	dsHash := cache.Hash(dsData)
	cacheKey := r.Keyer.LayoutKey(dsHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := chartio.ReadLayout(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	// Compute layout
	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(ds.Points))

	layout, err := computeLayout(ds, opts)

	observability.Pipeline().OnLayoutComplete(ctx, len(ds.Points), time.Since(start), err)
	if err != nil {
		return chart.Layout{}, false, err
	}

	// Cache the result
	var buf bytes.Buffer
	if err := chartio.WriteLayout(&buf, layout); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, buf.Bytes(), cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", buf.Len())
		}
	}

	return layout, false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo
// and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, ds chartio.Dataset, opts Options) (chart.Layout, error) {
	layout, _, err := r.ComputeLayoutWithCacheInfo(ctx, ds, opts)
	return layout, err
}

// computeLayout builds the chart from the dataset and runs the layout solver.
func computeLayout(ds chartio.Dataset, opts Options) (chart.Layout, error) {
	c := ds.ToChart(chart.Viewport{Width: opts.Width, Height: opts.Height})

	layoutOpts := []chart.LayoutOption{chart.WithArcBudget(opts.ArcBudget)}
	if len(opts.XLimits) == 2 {
		layoutOpts = append(layoutOpts, chart.WithFixedXLimits(opts.XLimits[0], opts.XLimits[1]))
	}
	if len(opts.YLimits) == 2 {
		layoutOpts = append(layoutOpts, chart.WithFixedYLimits(opts.YLimits[0], opts.YLimits[1]))
	}
	return chart.ComputeLayout(c, layoutOpts...)
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout chart.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from layout data
	var buf bytes.Buffer
	if err := chartio.WriteLayout(&buf, layout); err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(buf.Bytes())

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}

		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil // All artifacts from cache
		}
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	rendered, err := RenderFromLayout(layout, opts)

	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, format, len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, layout chart.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
}

// RenderFromLayout renders every requested format from a computed layout.
func RenderFromLayout(layout chart.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	theme := render.DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	var palette render.Palette
	var err error
	if len(opts.Palette) > 0 {
		palette, err = render.ParseHexPalette(opts.Palette)
	} else {
		palette, err = theme.PaletteFor(layout.CategoryCount())
	}
	if err != nil {
		return nil, err
	}

	svgOpts := []sink.SVGOption{sink.WithTheme(theme), sink.WithPalette(palette)}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	if opts.NoLegend {
		svgOpts = append(svgOpts, sink.WithoutLegend())
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			artifacts[format] = sink.RenderSVG(layout, svgOpts...)

		case FormatPNG:
			pngOpts := []sink.PNGOption{sink.WithPNGTheme(theme), sink.WithPNGPalette(palette)}
			if opts.Scale > 0 {
				pngOpts = append(pngOpts, sink.WithPNGScale(opts.Scale))
			}
			data, err := sink.RenderPNG(layout, pngOpts...)
			if err != nil {
				return nil, fmt.Errorf("render png: %w", err)
			}
			artifacts[format] = data

		case FormatPDF:
			data, err := sink.RenderPDF(layout, sink.WithPDFSVGOptions(svgOpts...))
			if err != nil {
				return nil, fmt.Errorf("render pdf: %w", err)
			}
			artifacts[format] = data

		case FormatJSON:
			jsonOpts := []sink.JSONOption{
				sink.WithJSONRunID(uuid.NewString()),
				sink.WithJSONPalette(palette),
			}
			if opts.Title != "" {
				jsonOpts = append(jsonOpts, sink.WithJSONTitle(opts.Title))
			}
			data, err := sink.RenderJSON(layout, jsonOpts...)
			if err != nil {
				return nil, fmt.Errorf("render json: %w", err)
			}
			artifacts[format] = data

		default:
			return nil, fmt.Errorf("invalid format: %q", format)
		}
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
