package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// maxGroupMetrics caps the numeric columns shown per group-by table.
const maxGroupMetrics = 6

// Markdown renders the report as a standalone Markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder
	r.writeOverview(&b)
	r.writeColumns(&b)
	r.writeDomains(&b)
	r.writeEnergy(&b)
	r.writeGroups(&b)
	r.writeSamples(&b)
	if len(r.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

func (r *Report) writeOverview(b *strings.Builder) {
	title := r.Name
	if title == "" {
		title = "CSV export"
	}
	fmt.Fprintf(b, "# %s\n\n", cell(title))
	if r.Dialect != "" {
		fmt.Fprintf(b, "- Dialect: %s\n", r.Dialect)
	}
	rows := strconv.Itoa(r.Rows)
	if r.Processed > 0 && r.Processed < r.Rows {
		rows = fmt.Sprintf("%d (profiled first %d)", r.Rows, r.Processed)
	}
	fmt.Fprintf(b, "- Rows: %s\n", rows)
	fmt.Fprintf(b, "- Columns: %d\n", len(r.Cols))
}

func (r *Report) writeColumns(b *strings.Builder) {
	b.WriteString("\n## Columns\n\n")
	rows := make([][]string, 0, len(r.Cols))
	for _, c := range r.Cols {
		rows = append(rows, []string{
			columnName(c.Name),
			c.Kind,
			strconv.Itoa(c.NonNull),
			percent(c.Missing, c.NonNull+c.Missing),
			c.details(),
		})
	}
	writeTable(b, []string{"Column", "Kind", "Non-null", "Missing", "Details"}, rows)
}

// details summarises a column according to its inferred kind.
func (c ColumnSummary) details() string {
	switch c.Kind {
	case KindNumeric:
		s := fmt.Sprintf("min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std)
		if c.OutlierThreshold > 0 {
			s += fmt.Sprintf("; %d outliers at |z|>%.1f", c.OutliersCount, c.OutlierThreshold)
			if c.OutliersMaxAbsZ > 0 {
				s += fmt.Sprintf(" (max %.2f)", c.OutliersMaxAbsZ)
			}
		}
		return s
	case KindCategorical:
		parts := make([]string, 0, len(c.TopValues))
		for _, kv := range c.TopValues {
			parts = append(parts, fmt.Sprintf("%s (%d)", kv.Value, kv.Count))
		}
		s := strings.Join(parts, ", ")
		if c.Unique > len(c.TopValues) {
			s += fmt.Sprintf("; %d distinct", c.Unique)
		}
		return s
	case KindText:
		return strings.Join(c.ExampleTexts, " / ")
	}
	return ""
}

func (r *Report) writeDomains(b *strings.Builder) {
	if len(r.Domains) == 0 {
		return
	}
	b.WriteString("\n## Domains\n\n")
	rows := make([][]string, 0, len(r.Domains))
	for _, d := range r.Domains {
		rows = append(rows, []string{d.Domain, strconv.Itoa(d.Count)})
	}
	writeTable(b, []string{"Domain", "Entities"}, rows)
}

func (r *Report) writeEnergy(b *strings.Builder) {
	e := r.Energy
	if e == nil {
		return
	}
	b.WriteString("\n## Energy\n\n")
	fmt.Fprintf(b, "- Entities: %d\n", e.Entities)
	fmt.Fprintf(b, "- Timestamps: %d, %s to %s\n", e.TimeCols, e.First, e.Last)
	if len(e.Units) > 0 {
		fmt.Fprintf(b, "- Units: %s\n", strings.Join(e.Units, ", "))
	}
	fmt.Fprintf(b, "- Total: %.2f\n", e.GrandTotal)
}

func (r *Report) writeGroups(b *strings.Builder) {
	if len(r.Groups) == 0 {
		return
	}
	seen := map[string]struct{}{}
	var metrics []string
	for _, g := range r.Groups {
		for k := range g.Metrics {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				metrics = append(metrics, k)
			}
		}
	}
	sort.Strings(metrics)
	if len(metrics) > maxGroupMetrics {
		metrics = metrics[:maxGroupMetrics]
	}

	b.WriteString("\n## Grouped\n\n")
	headers := []string{"Group", "Rows"}
	for _, m := range metrics {
		headers = append(headers, "mean "+m)
	}
	rows := make([][]string, 0, len(r.Groups))
	for _, g := range r.Groups {
		row := []string{g.Key, strconv.Itoa(g.Size)}
		for _, m := range metrics {
			if s, ok := g.Metrics[m]; ok {
				row = append(row, fmt.Sprintf("%.4g (%.4g..%.4g)", s.Mean, s.Min, s.Max))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	writeTable(b, headers, rows)
}

func (r *Report) writeSamples(b *strings.Builder) {
	if len(r.Samples) == 0 {
		return
	}
	b.WriteString("\n## Sample rows\n\n")
	headers := make([]string, len(r.Cols))
	for i, c := range r.Cols {
		headers[i] = columnName(c.Name)
	}
	rows := make([][]string, 0, len(r.Samples))
	for _, s := range r.Samples {
		row := make([]string, len(headers))
		copy(row, s)
		for i, v := range row {
			if rs := []rune(v); len(rs) > 80 {
				row[i] = string(rs[:77]) + "..."
			}
		}
		rows = append(rows, row)
	}
	writeTable(b, headers, rows)
}

// writeTable emits a pipe table; every cell is flattened to one line.
func writeTable(b *strings.Builder, headers []string, rows [][]string) {
	line := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(cell(c))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	line(headers)
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	line(sep)
	for _, r := range rows {
		line(r)
	}
}

func columnName(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "(unnamed)"
	}
	return s
}

func percent(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}

func cell(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "|", `\|`).Replace(s)
}
