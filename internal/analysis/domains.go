package analysis

import (
	"sort"
	"strings"

	"github.com/KaramelBytes/entityloom/internal/table"
)

// EntityIDColumns are the header names recognised as the entity id column,
// in lookup order.
var EntityIDColumns = []string{"entity id", "entity_id"}

// DomainCount is the number of entities in one domain.
type DomainCount struct {
	Domain string
	Count  int
}

// EntityColumn returns the first entity id column present in t.
func EntityColumn(t *table.Table) (string, bool) {
	for _, c := range EntityIDColumns {
		if t.HasColumn(c) {
			return c, true
		}
	}
	return "", false
}

// Domain returns the part of an entity id before the first dot.
func Domain(entityID string) string {
	id := strings.TrimSpace(entityID)
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return id
}

// DomainStats counts entities per domain in column, or in the detected
// entity id column when column is empty. Results are ordered by count,
// then domain name. Rows without an id are skipped.
func DomainStats(t *table.Table, column string) ([]DomainCount, error) {
	if column == "" {
		c, ok := EntityColumn(t)
		if !ok {
			return nil, &table.ColumnNotFoundError{Column: EntityIDColumns[0]}
		}
		column = c
	}
	j, ok := t.ColumnIndex(column)
	if !ok {
		return nil, &table.ColumnNotFoundError{Column: column}
	}
	counts := map[string]int{}
	for i := 0; i < t.Len(); i++ {
		d := Domain(t.Row(i)[j])
		if d == "" {
			continue
		}
		counts[d]++
	}
	out := make([]DomainCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DomainCount{Domain: d, Count: n})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count == out[b].Count {
			return out[a].Domain < out[b].Domain
		}
		return out[a].Count > out[b].Count
	})
	return out, nil
}
