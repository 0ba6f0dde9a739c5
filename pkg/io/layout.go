package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/chart"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/errors"
)

// WriteLayout encodes a computed layout as indented JSON to w.
func WriteLayout(w io.Writer, l chart.Layout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// WriteLayoutFile writes a computed layout to path.
func WriteLayoutFile(path string, l chart.Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteLayout(f, l)
}

// ReadLayout decodes a layout from r and checks the invariants a renderer
// relies on: positive viewport dimensions and strictly increasing limits.
func ReadLayout(r io.Reader) (chart.Layout, error) {
	var l chart.Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return chart.Layout{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode layout")
	}
	if l.Viewport.Width <= 0 || l.Viewport.Height <= 0 {
		return chart.Layout{}, errors.New(errors.ErrCodeInvalidViewport,
			"layout viewport %gx%g is not positive", l.Viewport.Width, l.Viewport.Height)
	}
	if !(l.XLimits.Lo < l.XLimits.Hi) || !(l.YLimits.Lo < l.YLimits.Hi) {
		return chart.Layout{}, errors.New(errors.ErrCodeDegenerateLimits, "layout has non-increasing axis limits")
	}
	return l, nil
}

// ReadLayoutFile loads a layout from path.
func ReadLayoutFile(path string) (chart.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return chart.Layout{}, errors.Wrap(errors.ErrCodeNotFound, err, "layout %s", path)
		}
		return chart.Layout{}, err
	}
	defer f.Close()
	return ReadLayout(f)
}
