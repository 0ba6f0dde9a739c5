package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	chartio "github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/io"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/pipeline"
)

// newLayoutCmd creates the layout command for computing chart layouts.
func newLayoutCmd() *cobra.Command {
	var (
		output string
		flags  cacheFlags
	)
	opts := pipeline.Options{}
	opts.SetLayoutDefaults()

	cmd := &cobra.Command{
		Use:   "layout [dataset]",
		Short: "Compute chart layout from a dataset",
		Long: `Compute chart layout from a dataset.

The layout command reads a dataset (JSON or CSV), solves axis limits so that
every pie fits inside the viewport, and builds the wedge geometry for every
point. The output is a layout.json file that can be rendered to SVG/PNG/PDF
using the 'visualize' command.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			return runLayout(cmd.Context(), opts, output, flags)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	// Layout flags
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "viewport width in pixels")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "viewport height in pixels")
	cmd.Flags().Float64Var(&opts.Size, "size", 0, "pie diameter in pixels (overrides the dataset)")
	cmd.Flags().IntVar(&opts.ArcBudget, "arc-budget", opts.ArcBudget, "arc sample points per pie")
	cmd.Flags().Float64SliceVar(&opts.XLimits, "xlim", nil, "fixed x limits as lo,hi (default: solved from data)")
	cmd.Flags().Float64SliceVar(&opts.YLimits, "ylim", nil, "fixed y limits as lo,hi (default: solved from data)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")

	return cmd
}

// runLayout loads the dataset, computes the layout, and writes output.
func runLayout(ctx context.Context, opts pipeline.Options, output string, flags cacheFlags) error {
	logger := loggerFromContext(ctx)

	runner, err := newRunner(ctx, logger, flags)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = logger

	ds, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", opts.Input, err)
	}

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	layout, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, ds, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(opts.Input, filepath.Ext(opts.Input))
		outputPath = base + ".layout.json"
	}

	if err := chartio.WriteLayoutFile(outputPath, layout); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(ds.Points), layout.CategoryCount(), cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
