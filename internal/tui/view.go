package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const maxColWidth = 30

// refreshGrid rebuilds the table widget from the current view.
func (m *model) refreshGrid() {
	view := m.sess.View()
	names := view.Columns()
	if m.col >= len(names) {
		m.col = max(0, len(names)-1)
	}
	sortCol, desc := m.sess.SortState()
	widths := make([]int, len(names))
	for j, n := range names {
		widths[j] = utf8.RuneCountInString(n) + 4
	}
	rows := make([]btable.Row, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		r := view.Row(i)
		if i < 200 {
			for j, c := range r {
				widths[j] = max(widths[j], utf8.RuneCountInString(c))
			}
		}
		rows = append(rows, btable.Row(r))
	}
	cols := make([]btable.Column, len(names))
	for j, n := range names {
		title := n
		if n == sortCol {
			if desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		if j == m.col {
			title = "[" + title + "]"
		}
		cols[j] = btable.Column{Title: title, Width: min(widths[j], maxColWidth)}
	}
	// Rows must be cleared first: the widget renders existing rows against
	// the new column set.
	m.grid.SetRows(nil)
	m.grid.SetColumns(cols)
	m.grid.SetRows(rows)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	title := "entityloom"
	if ds := m.sess.Dataset(); ds != nil {
		title = fmt.Sprintf("entityloom · %s (%s) · %d/%d rows", ds.Name, ds.Dialect, m.sess.View().Len(), ds.Table.Len())
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	switch m.screen {
	case screenFilter:
		b.WriteString(m.viewFilter())
	case screenStats:
		b.WriteString(m.viewStats())
	case screenEntities:
		b.WriteString(m.viewEntities())
	case screenChart:
		b.WriteString(m.viewChart())
	case screenExport:
		b.WriteString(m.exportIn.View())
		b.WriteString("\n")
	default:
		b.WriteString(m.search.View())
		b.WriteString("\n")
		b.WriteString(m.grid.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(renderStatus(m.status))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m model) help() string {
	switch m.screen {
	case screenSearch:
		return "type to search · enter apply · esc back"
	case screenFilter:
		return "↑/↓ choose · enter filter · esc back"
	case screenExport:
		return "enter export · esc cancel"
	case screenStats:
		return "any key to return"
	case screenEntities:
		return "↑/↓ move · space toggle · a all · m combined · enter chart · esc back"
	case screenChart:
		return "1 raw · 2 day · 3 week · 4 month · 5 year · b bar/line · m combined · g render PNG · esc entities"
	}
	return "/ search · ←/→ column · s sort · f filter · r reset · e export · t domains · c chart · q quit"
}

func (m model) viewFilter() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Filter %s", m.choices.Column)))
	b.WriteString("\n")
	if len(m.choices.Choices) == 0 {
		b.WriteString("(no values)\n")
		return b.String()
	}
	start := max(0, m.choiceCursor-10)
	end := min(len(m.choices.Choices), start+20)
	for i := start; i < end; i++ {
		c := m.choices.Choices[i]
		if i == m.choiceCursor {
			b.WriteString(cursorStyle.Render("> " + c.Label))
		} else {
			b.WriteString("  " + c.Label)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) viewStats() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Entities per domain"))
	b.WriteString("\n")
	total := 0
	for _, d := range m.stats {
		b.WriteString(fmt.Sprintf("%-24s %6d\n", d.Domain, d.Count))
		total += d.Count
	}
	b.WriteString(fmt.Sprintf("%-24s %6d\n", "total", total))
	return boxStyle.Render(b.String())
}

func (m model) viewEntities() string {
	var b strings.Builder
	mode := "separate charts"
	if m.combined {
		mode = "combined chart"
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("Select entities (%s)", mode)))
	b.WriteString("\n")
	ids := m.wf.Entities()
	start := max(0, m.entityCursor-10)
	end := min(len(ids), start+20)
	for i := start; i < end; i++ {
		id := ids[i]
		box := "[ ]"
		line := id
		if m.picked[id] {
			box = "[x]"
			line = selectedStyle.Render(id)
		}
		cursor := "  "
		if i == m.entityCursor {
			cursor = cursorStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, box, line))
	}
	return b.String()
}

func (m model) viewChart() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s · %s · %s", m.wf.State(), m.wf.Period(), m.wf.EffectiveKind())))
	b.WriteString("\n")
	for _, c := range m.wf.Charts() {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(c.Title))
		b.WriteString("  ")
		b.WriteString(c.Summary())
		b.WriteString("\n")
		for _, s := range c.Series {
			b.WriteString(fmt.Sprintf("  %s: %d point(s)", s.EntityID, len(s.Buckets)))
			if n := len(s.Buckets); n > 0 {
				last := s.Buckets[n-1]
				b.WriteString(fmt.Sprintf(", last %s = %.2f", last.Start.Format("2006-01-02 15:04"), last.Value))
			}
			b.WriteString("\n")
		}
	}
	if m.batch != nil {
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(m.batch.Progress()))
		b.WriteString(fmt.Sprintf(" %d/%d\n", len(m.batch.Results()), m.batch.Total()))
	}
	return b.String()
}
