// Package io loads chart datasets and persists computed layouts.
//
// Datasets come in two formats:
//
//   - JSON: an object with "points" (x, y, composition, optional size),
//     optional "categories" labels and an optional scalar "size".
//   - CSV: header row "x,y[,size],<category names...>"; each data row holds
//     the point position, optionally a per-point diameter, and one
//     composition entry per category column.
//
// Layouts round-trip through JSON so the layout and visualize steps can be
// run separately.
package io

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/chart"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/errors"
)

// Dataset is the file representation of a chart before layout.
type Dataset struct {
	// Title is an optional display title.
	Title string `json:"title,omitempty"`

	// Categories optionally names the composition entries.
	Categories []string `json:"categories,omitempty"`

	// Size is an optional scalar diameter broadcast to points without
	// their own size. Zero means chart.DefaultDiameter.
	Size float64 `json:"size,omitempty"`

	// Points are the data points.
	Points []DatasetPoint `json:"points"`
}

// DatasetPoint is one row of a dataset.
type DatasetPoint struct {
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Size        float64   `json:"size,omitempty"` // per-point diameter, 0 = use dataset scalar
	Composition []float64 `json:"composition"`
}

// ToChart converts the dataset into a chart with the given viewport.
// Per-point sizes win over the dataset scalar; a dataset with any per-point
// size resolves the rest from the scalar (or the default diameter).
func (d Dataset) ToChart(vp chart.Viewport) chart.Chart {
	c := chart.Chart{
		Categories: d.Categories,
		Viewport:   vp,
		Points:     make([]chart.Point, len(d.Points)),
	}

	perPoint := false
	for i, p := range d.Points {
		c.Points[i] = chart.Point{X: p.X, Y: p.Y, Composition: p.Composition}
		if p.Size > 0 {
			perPoint = true
		}
	}

	if perPoint {
		fallback := d.Size
		if fallback <= 0 {
			fallback = chart.DefaultDiameter
		}
		sizes := make([]float64, len(d.Points))
		for i, p := range d.Points {
			if p.Size > 0 {
				sizes[i] = p.Size
			} else {
				sizes[i] = fallback
			}
		}
		c.Size = chart.PerPointSizes(sizes)
	} else if d.Size > 0 {
		c.Size = chart.FixedSize(d.Size)
	}
	return c
}

// ReadDatasetJSON decodes a dataset from r.
func ReadDatasetJSON(r io.Reader) (Dataset, error) {
	var d Dataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode dataset")
	}
	if len(d.Points) == 0 {
		return Dataset{}, errors.New(errors.ErrCodeInvalidDataset, "dataset has no points")
	}
	return d, nil
}

// ReadDatasetCSV decodes a dataset from CSV. The header must start with
// "x,y"; an optional "size" column follows, and every remaining column is a
// category whose values form the composition vectors.
func ReadDatasetCSV(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read csv")
	}
	if len(records) < 2 {
		return Dataset{}, errors.New(errors.ErrCodeInvalidDataset, "csv needs a header row and at least one data row")
	}

	header := records[0]
	if len(header) < 3 || !strings.EqualFold(header[0], "x") || !strings.EqualFold(header[1], "y") {
		return Dataset{}, errors.New(errors.ErrCodeInvalidDataset, `csv header must start with "x,y" followed by category columns`)
	}

	compStart := 2
	hasSize := strings.EqualFold(header[2], "size")
	if hasSize {
		compStart = 3
	}
	if len(header) <= compStart {
		return Dataset{}, errors.New(errors.ErrCodeInvalidDataset, "csv has no category columns")
	}

	d := Dataset{Categories: append([]string(nil), header[compStart:]...)}
	for line, rec := range records[1:] {
		if len(rec) != len(header) {
			return Dataset{}, errors.New(errors.ErrCodeInvalidDataset,
				"row %d has %d fields, header has %d", line+2, len(rec), len(header))
		}
		fields := make([]float64, len(rec))
		for i, s := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "row %d field %d", line+2, i+1)
			}
			fields[i] = v
		}

		p := DatasetPoint{X: fields[0], Y: fields[1], Composition: fields[compStart:]}
		if hasSize {
			p.Size = fields[2]
		}
		d.Points = append(d.Points, p)
	}
	return d, nil
}

// ReadDatasetFile loads a dataset from path, dispatching on the file
// extension: .csv for CSV, anything else is treated as JSON.
func ReadDatasetFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Dataset{}, errors.Wrap(errors.ErrCodeNotFound, err, "dataset %s", path)
		}
		return Dataset{}, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadDatasetCSV(f)
	}
	return ReadDatasetJSON(f)
}
