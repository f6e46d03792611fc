// Package energy reshapes wide energy exports into per-entity time series,
// resamples them into calendar buckets and decides how they may be charted.
package energy

import (
	"sort"
	"time"

	"github.com/KaramelBytes/entityloom/internal/coerce"
	"github.com/KaramelBytes/entityloom/internal/table"
)

// Metadata columns of the wide energy export; every other column is a
// timestamp.
const (
	ColumnEntityID = "entity_id"
	ColumnType     = "type"
	ColumnUnit     = "unit"
)

func isMetadata(col string) bool {
	return col == ColumnEntityID || col == ColumnType || col == ColumnUnit
}

// Point is one row of the Melted Series Table.
type Point struct {
	EntityID string
	Unit     string
	Time     time.Time
	Value    float64
}

// Melted is the long-form table produced by Melt. Entities lists the entity
// ids present, in order of first appearance in the view.
type Melted struct {
	Entities []string
	Points   []Point
}

// Len returns the number of melted rows.
func (m Melted) Len() int { return len(m.Points) }

// Unit returns the unit of the first melted row.
func (m Melted) Unit() string {
	if len(m.Points) == 0 {
		return ""
	}
	return m.Points[0].Unit
}

// Entities lists the distinct entity ids of view in row order.
func Entities(view *table.Table) ([]string, error) {
	j, ok := view.ColumnIndex(ColumnEntityID)
	if !ok {
		return nil, &table.ColumnNotFoundError{Column: ColumnEntityID}
	}
	seen := map[string]struct{}{}
	var out []string
	for i := 0; i < view.Len(); i++ {
		id := view.Row(i)[j]
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

type timeColumn struct {
	idx int
	at  time.Time
}

// Melt unpivots the timestamp columns of view for the selected entities.
// Columns whose name is not a timestamp are dropped and non-numeric cells
// count as 0. All timestamps are expressed in the location of the first
// timestamp column so calendar buckets line up across entities.
func Melt(view *table.Table, selected []string) (Melted, error) {
	if len(selected) == 0 {
		return Melted{}, &table.EmptySelectionError{What: "entities"}
	}
	idIdx, ok := view.ColumnIndex(ColumnEntityID)
	if !ok {
		return Melted{}, &table.ColumnNotFoundError{Column: ColumnEntityID}
	}
	unitIdx, hasUnit := view.ColumnIndex(ColumnUnit)

	var cols []timeColumn
	var loc *time.Location
	for i, name := range view.Columns() {
		if isMetadata(name) {
			continue
		}
		at, ok := coerce.Timestamp(name)
		if !ok {
			continue
		}
		if loc == nil {
			loc = at.Location()
		}
		cols = append(cols, timeColumn{idx: i, at: at.In(loc)})
	}
	sort.SliceStable(cols, func(a, b int) bool { return cols[a].at.Before(cols[b].at) })

	want := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}
	var out Melted
	seen := map[string]struct{}{}
	for i := 0; i < view.Len(); i++ {
		row := view.Row(i)
		id := row[idIdx]
		if _, ok := want[id]; !ok {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out.Entities = append(out.Entities, id)
		}
		unit := ""
		if hasUnit {
			unit = row[unitIdx]
		}
		for _, c := range cols {
			out.Points = append(out.Points, Point{
				EntityID: id,
				Unit:     unit,
				Time:     c.at,
				Value:    coerce.NumberOrZero(row[c.idx]),
			})
		}
	}
	return out, nil
}
