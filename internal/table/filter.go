package table

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnassignedLabel is shown for the empty value in a Distinct Value List.
const UnassignedLabel = "— no value assigned —"

// Search returns the rows of original in which at least one cell contains
// term as a case-insensitive substring. A blank term returns every row.
// Callers pass the Original Dataset so searches never narrow each other.
func Search(original *Table, term string) *Table {
	term = strings.TrimSpace(term)
	if term == "" {
		return original.Clone()
	}
	fold := cases.Fold()
	needle := fold.String(term)
	var rows [][]string
	for _, r := range original.rows {
		for _, cell := range r {
			if cell != "" && strings.Contains(fold.String(cell), needle) {
				rows = append(rows, r)
				break
			}
		}
	}
	return original.derive(rows)
}

// FilterByColumn returns the rows of original whose column equals value.
// The empty string selects rows with no value assigned.
func FilterByColumn(original *Table, column, value string) (*Table, error) {
	j, ok := original.index[column]
	if !ok {
		return nil, &ColumnNotFoundError{Column: column}
	}
	var rows [][]string
	for _, r := range original.rows {
		if r[j] == value {
			rows = append(rows, r)
		}
	}
	return original.derive(rows), nil
}

// Choice is one selectable entry of a Distinct Value List.
type Choice struct {
	Label      string
	Value      string
	Unassigned bool
}

// DistinctValues lists the unique values of one column.
type DistinctValues struct {
	Column  string
	Choices []Choice
}

// Values returns the raw values in display order.
func (d DistinctValues) Values() []string {
	out := make([]string, len(d.Choices))
	for i, c := range d.Choices {
		out[i] = c.Value
	}
	return out
}

// Distinct collects the unique values of column in original, sorted
// case-insensitively. An empty value is listed first as the unassigned choice.
func Distinct(original *Table, column string) (DistinctValues, error) {
	j, ok := original.index[column]
	if !ok {
		return DistinctValues{}, &ColumnNotFoundError{Column: column}
	}
	seen := map[string]struct{}{}
	hasEmpty := false
	var vals []string
	for _, r := range original.rows {
		v := r[j]
		if v == "" {
			hasEmpty = true
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		vals = append(vals, v)
	}
	lower := cases.Lower(language.Und)
	keys := make(map[string]string, len(vals))
	for _, v := range vals {
		keys[v] = lower.String(v)
	}
	sort.SliceStable(vals, func(a, b int) bool {
		ka, kb := keys[vals[a]], keys[vals[b]]
		if ka == kb {
			return vals[a] < vals[b]
		}
		return ka < kb
	})
	out := DistinctValues{Column: column}
	if hasEmpty {
		out.Choices = append(out.Choices, Choice{Label: UnassignedLabel, Value: "", Unassigned: true})
	}
	for _, v := range vals {
		out.Choices = append(out.Choices, Choice{Label: v, Value: v})
	}
	return out, nil
}
