package table

import (
	"sort"

	"github.com/KaramelBytes/entityloom/internal/coerce"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sort returns view reordered by column. When every value of the column is
// numeric the comparison is numeric; otherwise the whole column compares as
// lower-cased text. Rows with equal keys keep their relative order.
func Sort(view *Table, column string, descending bool) (*Table, error) {
	j, ok := view.index[column]
	if !ok {
		return nil, &ColumnNotFoundError{Column: column}
	}
	n := len(view.rows)
	nums := make([]float64, n)
	numeric := n > 0
	for i, r := range view.rows {
		f, ok := coerce.Number(r[j])
		if !ok {
			numeric = false
			break
		}
		nums[i] = f
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	var less func(a, b int) bool
	if numeric {
		less = func(a, b int) bool { return nums[a] < nums[b] }
	} else {
		lower := cases.Lower(language.Und)
		keys := make([]string, n)
		for i, r := range view.rows {
			keys[i] = lower.String(r[j])
		}
		less = func(a, b int) bool { return keys[a] < keys[b] }
	}
	sort.SliceStable(order, func(x, y int) bool {
		a, b := order[x], order[y]
		if descending {
			return less(b, a)
		}
		return less(a, b)
	})

	rows := make([][]string, n)
	for i, k := range order {
		rows[i] = view.rows[k]
	}
	return view.derive(rows), nil
}
