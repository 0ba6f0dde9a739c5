package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	chartio "github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/io"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/pipeline"
)

// newVisualizeCmd creates the visualize command for rendering from a layout.
func newVisualizeCmd() *cobra.Command {
	var (
		formatsStr string
		output     string
		themePath  string
		flags      cacheFlags
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a chart from a computed layout",
		Long: `Render a chart from a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
renders it to SVG, PNG, PDF, or JSON format. The layout contains all solved
limits and wedge geometry, so this step is purely about rendering.

Results are cached locally for faster subsequent runs.

Use 'render' as a shortcut to go directly from a dataset to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return runVisualize(cmd.Context(), args[0], opts, output, themePath, flags)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	flags.register(cmd)

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "chart title")
	cmd.Flags().BoolVar(&opts.NoLegend, "no-legend", false, "omit the category legend")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG supersampling factor")
	cmd.Flags().StringVar(&themePath, "theme", "", "theme file (TOML)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "re-render even if cached")

	return cmd
}

// runVisualize loads the layout and renders it.
func runVisualize(ctx context.Context, input string, opts pipeline.Options, output, themePath string, flags cacheFlags) error {
	logger := loggerFromContext(ctx)

	layout, err := chartio.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

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
	prog := newProgress(logger)

	spinner := newSpinnerWithContext(ctx, "Rendering chart...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(artifacts)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts:  artifacts,
		formats:    opts.Formats,
		input:      input,
		output:     output,
		cacheHit:   cacheHit,
		pointCount: len(layout.Pies),
		categories: layout.CategoryCount(),
	})
}
