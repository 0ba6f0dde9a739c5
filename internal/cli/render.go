package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/pipeline"
)

// newRenderCmd creates the render command for going directly from a dataset
// to visual output.
//
// Default settings:
//   - width: 800px, height: 600px
//   - format: svg
//   - axis limits: solved from the data
//   - legend: on
func newRenderCmd() *cobra.Command {
	var (
		formatsStr string
		output     string
		themePath  string
		flags      cacheFlags
	)
	opts := pipeline.Options{}
	opts.SetLayoutDefaults()

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render a dataset to a bubble pie chart",
		Long: `Render a dataset to a bubble pie chart.

The render command reads a dataset (JSON or CSV), computes axis limits and
wedge geometry for every point, and writes the chart in the requested
formats. It is the shortcut for 'layout' followed by 'visualize'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), opts, output, themePath, flags)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	flags.register(cmd)

	// Layout flags
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "viewport width in pixels")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "viewport height in pixels")
	cmd.Flags().Float64Var(&opts.Size, "size", 0, "pie diameter in pixels (overrides the dataset default size; per-point sizes still win)")
	cmd.Flags().IntVar(&opts.ArcBudget, "arc-budget", opts.ArcBudget, "arc sample points per pie")
	cmd.Flags().Float64SliceVar(&opts.XLimits, "xlim", nil, "fixed x limits as lo,hi (default: solved from data)")
	cmd.Flags().Float64SliceVar(&opts.YLimits, "ylim", nil, "fixed y limits as lo,hi (default: solved from data)")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "chart title (overrides the dataset)")
	cmd.Flags().BoolVar(&opts.NoLegend, "no-legend", false, "omit the category legend")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG supersampling factor")
	cmd.Flags().StringVar(&themePath, "theme", "", "theme file (TOML)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")

	return cmd
}

// runRender executes the full pipeline and writes the artifacts.
func runRender(ctx context.Context, opts pipeline.Options, output, themePath string, flags cacheFlags) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", opts.Input)

	theme, err := loadTheme(themePath)
	if err != nil {
		return fmt.Errorf("load theme %s: %w", themePath, err)
	}
	opts.Theme = theme

	runner, err := newRunner(ctx, logger, flags)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = logger

	spinner := newSpinnerWithContext(ctx, "Rendering chart...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts:  result.Artifacts,
		formats:    opts.Formats,
		input:      opts.Input,
		output:     output,
		cacheHit:   result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
		pointCount: result.Stats.PointCount,
		categories: result.Stats.CategoryCount,
	})
}
