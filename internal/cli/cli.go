// Package cli implements the bubblepie command-line interface.
//
// This package provides commands for computing bubble pie chart layouts from
// datasets, rendering them to image formats, and serving the pipeline over
// HTTP. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Go directly from a dataset to SVG, PNG, PDF, or JSON output
//   - layout: Compute axis limits and wedge geometry, save as layout.json
//   - visualize: Render a previously computed layout
//   - inspect: Browse a dataset's points interactively
//   - serve: Run the HTTP preview API
//   - cache: Manage the layout and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/buildinfo"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/cache"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/pipeline"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/render"
)

// appName is the application name used for directories and display.
const appName = "bubblepie"

// Execute runs the bubblepie CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI under the given context. Cancelling the context
// stops in-flight commands (long renders, the HTTP server).
func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd builds the root command with all subcommands registered.
func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "Bubblepie draws scatter charts whose markers are pie charts",
		Long:         `Bubblepie is a CLI tool for drawing bubble pie charts: scatter plots where every marker is a small pie showing the composition of that data point.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newVisualizeCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCacheCmd())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags holds the shared cache backend flags.
type cacheFlags struct {
	noCache   bool
	backend   string
	redisAddr string
}

// register adds the cache flags to cmd.
func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.backend, "cache-backend", "file", "cache backend: file (default), redis, none")
	cmd.Flags().StringVar(&f.redisAddr, "redis-addr", "localhost:6379", "redis address for --cache-backend=redis")
}

// newRunner creates a pipeline runner for CLI use.
func newRunner(ctx context.Context, logger *charmlog.Logger, flags cacheFlags) (*pipeline.Runner, error) {
	c, err := newCache(ctx, flags)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(c, nil, logger), nil
}

func newCache(ctx context.Context, flags cacheFlags) (cache.Cache, error) {
	if flags.noCache || flags.backend == "none" {
		return cache.NewNullCache(), nil
	}
	switch flags.backend {
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: flags.redisAddr})
	case "file", "":
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (must be 'file', 'redis', or 'none')", flags.backend)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/bubblepie/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// loadTheme resolves the --theme flag. An empty path means the default theme.
func loadTheme(path string) (*render.Theme, error) {
	if path == "" {
		return nil, nil
	}
	t, err := render.LoadTheme(path)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
