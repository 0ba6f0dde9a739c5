package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/chart"
	chartio "github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/io"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// newInspectCmd creates the inspect command for browsing dataset points.
func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [dataset]",
		Short: "Browse a dataset's points interactively",
		Long: `Browse a dataset's points interactively.

The inspect command reads a dataset (JSON or CSV) and opens a terminal
browser showing every point's position, diameter, and composition shares.
Useful for checking a dataset before rendering it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := chartio.ReadDatasetFile(args[0])
			if err != nil {
				return fmt.Errorf("load dataset %s: %w", args[0], err)
			}

			model := NewPointListModel(ds)
			_, err = tea.NewProgram(model).Run()
			return err
		},
	}
}

// =============================================================================
// PointListModel - Interactive dataset point browser
// =============================================================================

// PointListModel is the bubbletea model for browsing dataset points.
type PointListModel struct {
	Dataset chartio.Dataset
	Cursor  int
	Height  int
	Offset  int
}

// NewPointListModel creates a new point list model.
func NewPointListModel(ds chartio.Dataset) PointListModel {
	return PointListModel{
		Dataset: ds,
		Cursor:  0,
		Height:  15,
		Offset:  0,
	}
}

func (m PointListModel) Init() tea.Cmd {
	return nil
}

func (m PointListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Dataset.Points)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PointListModel) View() string {
	var b strings.Builder

	title := m.Dataset.Title
	if title == "" {
		title = "Dataset"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Dataset.Points) {
		end = len(m.Dataset.Points)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Dataset.Points[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		size := p.Size
		if size <= 0 {
			size = m.Dataset.Size
		}
		if size <= 0 {
			size = chart.DefaultDiameter
		}

		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%g", p.X),
			fmt.Sprintf("%g", p.Y),
			fmt.Sprintf("%g", size),
			formatShares(p.Composition, m.Dataset.Categories),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "X", "Y", "Size", "Composition").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Dataset.Points))))

	return b.String()
}

// formatShares renders a composition vector as percentage shares, labeled
// with category names when the dataset has them.
func formatShares(comp []float64, categories []string) string {
	var sum float64
	for _, v := range comp {
		sum += v
	}
	if sum <= 0 {
		return "—"
	}

	parts := make([]string, len(comp))
	for i, v := range comp {
		label := ""
		if i < len(categories) {
			label = categories[i] + " "
		}
		parts[i] = fmt.Sprintf("%s%.0f%%", label, v/sum*100)
	}
	return strings.Join(parts, "  ")
}
