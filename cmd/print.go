package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/KaramelBytes/entityloom/internal/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const maxCellWidth = 40

func clip(s string) string {
	r := []rune(s)
	if len(r) > maxCellWidth {
		return string(r[:maxCellWidth-1]) + "…"
	}
	return s
}

// renderGrid draws headers and rows as a bordered terminal table.
func renderGrid(headers []string, rows [][]string) string {
	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = clip(c)
		}
		t.Row(cells...)
	}
	return t.Render()
}

// printView prints up to limit rows of view (all when limit <= 0).
func printView(w io.Writer, view *table.Table, limit int) {
	n := view.Len()
	if limit > 0 && n > limit {
		n = limit
	}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, view.Row(i))
	}
	fmt.Fprintln(w, renderGrid(view.Columns(), rows))
	if n < view.Len() {
		fmt.Fprintf(w, "showing %d of %d rows (use --limit 0 for all)\n", n, view.Len())
	}
}
