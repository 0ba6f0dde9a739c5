package cli

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	chartio "github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/io"
)

func TestRootCommandStructure(t *testing.T) {
	root := newRootCmd()

	if root.Use != appName {
		t.Errorf("root.Use = %q, want %q", root.Use, appName)
	}

	want := map[string]bool{
		"render":    false,
		"layout":    false,
		"visualize": false,
		"inspect":   false,
		"serve":     false,
		"cache":     false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestNewCacheBackends(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		flags   cacheFlags
		wantErr bool
	}{
		{"no cache flag", cacheFlags{noCache: true}, false},
		{"none backend", cacheFlags{backend: "none"}, false},
		{"file backend", cacheFlags{backend: "file"}, false},
		{"unknown backend", cacheFlags{backend: "memcached"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newCache(ctx, tt.flags)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newCache() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				c.Close()
			}
		})
	}
}

func TestPointListModelNavigation(t *testing.T) {
	ds := chartio.Dataset{
		Points: []chartio.DatasetPoint{
			{X: 1, Y: 1, Composition: []float64{1, 1}},
			{X: 2, Y: 2, Composition: []float64{1, 3}},
			{X: 3, Y: 3, Composition: []float64{2, 1}},
		},
	}

	var m tea.Model = NewPointListModel(ds)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(PointListModel).Cursor; got != 2 {
		t.Errorf("cursor after two downs = %d, want 2", got)
	}

	// Down at the end stays put
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(PointListModel).Cursor; got != 2 {
		t.Errorf("cursor should stop at last point, got %d", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.(PointListModel).Cursor; got != 1 {
		t.Errorf("cursor after up = %d, want 1", got)
	}

	view := m.(PointListModel).View()
	if view == "" {
		t.Error("View() should render the point table")
	}
}

func TestFormatShares(t *testing.T) {
	tests := []struct {
		name       string
		comp       []float64
		categories []string
		want       string
	}{
		{"even split", []float64{1, 1}, nil, "50%  50%"},
		{"labeled", []float64{3, 1}, []string{"a", "b"}, "a 75%  b 25%"},
		{"zero sum", []float64{0, 0}, nil, "—"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatShares(tt.comp, tt.categories); got != tt.want {
				t.Errorf("formatShares(%v) = %q, want %q", tt.comp, got, tt.want)
			}
		})
	}
}
