package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/pipeline"
)

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
// This is used when generating multiple files (e.g., chart.svg, chart.png).
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	// Strip known format extensions from output path
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// artifactWriteParams bundles the inputs for writeArtifacts.
type artifactWriteParams struct {
	artifacts  map[string][]byte
	formats    []string
	input      string
	output     string
	cacheHit   bool
	pointCount int
	categories int
}

// writeArtifacts writes each rendered format to disk and prints a summary.
// A single format honors the output path exactly; multiple formats share a
// base path and get one file per format extension.
func writeArtifacts(p artifactWriteParams) error {
	if len(p.formats) == 1 {
		format := p.formats[0]
		outputPath := p.output
		if outputPath == "" {
			outputPath = basePath("", p.input) + "." + format
		}
		if err := writeArtifact(p.artifacts[format], outputPath); err != nil {
			return err
		}
		printSuccess("Render complete")
		printFile(outputPath)
		printStats(p.pointCount, p.categories, p.cacheHit)
		return nil
	}

	base := basePath(p.output, p.input)
	printSuccess("Render complete")
	for _, format := range p.formats {
		path := fmt.Sprintf("%s.%s", base, format)
		if err := writeArtifact(p.artifacts[format], path); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(p.pointCount, p.categories, p.cacheHit)
	return nil
}

func writeArtifact(data []byte, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
