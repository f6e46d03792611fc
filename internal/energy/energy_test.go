package energy

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/entityloom/internal/table"
)

func energyTable(t *testing.T) *table.Table {
	t.Helper()
	tb, err := table.New(
		[]string{"entity_id", "type", "unit", "2024-01-01t00:00:00", "2024-01-02t00:00:00", "2024-01-03t00:00:00", "notes"},
		[][]string{
			{"sensor.a", "energy", "kWh", "1", "2", "5", "x"},
			{"sensor.b", "energy", "kWh", "3", "n/a", "4", "y"},
		},
	)
	require.NoError(t, err)
	return tb
}

func TestEntitiesInRowOrder(t *testing.T) {
	ids, err := Entities(energyTable(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"sensor.a", "sensor.b"}, ids)

	tb, err := table.New([]string{"name"}, [][]string{{"x"}})
	require.NoError(t, err)
	_, err = Entities(tb)
	var nf *table.ColumnNotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestMeltDropsMetadataAndUnparsableColumns(t *testing.T) {
	m, err := Melt(energyTable(t), []string{"sensor.b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sensor.b"}, m.Entities)
	require.Len(t, m.Points, 3)
	assert.Equal(t, 3.0, m.Points[0].Value)
	assert.Equal(t, 0.0, m.Points[1].Value, "non-numeric cell counts as zero")
	assert.Equal(t, "kWh", m.Unit())
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), m.Points[2].Time)
}

func TestMeltRequiresSelection(t *testing.T) {
	_, err := Melt(energyTable(t), nil)
	var es *table.EmptySelectionError
	assert.True(t, errors.As(err, &es))
}

func TestMonthlyResampleSumsToEight(t *testing.T) {
	m, err := Melt(energyTable(t), []string{"sensor.a"})
	require.NoError(t, err)
	series := Resample(m, Month)
	require.Len(t, series, 1)
	require.Len(t, series[0].Buckets, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), series[0].Buckets[0].Start)
	assert.Equal(t, 8.0, series[0].Buckets[0].Value)

	c := Build(m, Month, false, DefaultThresholds())
	assert.Equal(t, 8.0, c.Total)
	assert.Equal(t, "Total: 8.00 kWh", c.Summary())
	assert.True(t, c.BarEligible)
}

func TestTruncateBuckets(t *testing.T) {
	at := time.Date(2024, 3, 14, 17, 45, 0, 0, time.UTC) // Thursday
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), Day.Truncate(at))
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), Week.Truncate(at))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Month.Truncate(at))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Year.Truncate(at))
	assert.Equal(t, at, Original.Truncate(at))

	sunday := time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), Week.Truncate(sunday))
}

func TestResampleFillsGaps(t *testing.T) {
	m := Melted{
		Entities: []string{"e"},
		Points: []Point{
			{EntityID: "e", Time: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Value: 1},
			{EntityID: "e", Time: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), Value: 2},
		},
	}
	s := Resample(m, Month)[0]
	require.Len(t, s.Buckets, 4)
	assert.Equal(t, []float64{1, 0, 0, 2}, []float64{s.Buckets[0].Value, s.Buckets[1].Value, s.Buckets[2].Value, s.Buckets[3].Value})
	assert.Equal(t, 3.0, s.Total())
}

func TestResampleOriginalKeepsEveryPointInTimeOrder(t *testing.T) {
	m := Melted{
		Entities: []string{"e"},
		Points: []Point{
			{EntityID: "e", Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: 2},
			{EntityID: "e", Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: 1},
		},
	}
	s := Resample(m, Original)[0]
	require.Len(t, s.Buckets, 2)
	assert.Equal(t, 1.0, s.Buckets[0].Value)
	assert.False(t, Build(m, Original, false, DefaultThresholds()).BarEligible)
}

func wideDaily(t *testing.T, days int, ids ...string) *table.Table {
	t.Helper()
	cols := []string{"entity_id", "unit"}
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < days; d++ {
		cols = append(cols, start.AddDate(0, 0, d).Format("2006-01-02"))
	}
	var rows [][]string
	for _, id := range ids {
		row := []string{id, "kWh"}
		for d := 0; d < days; d++ {
			row = append(row, fmt.Sprint(d%3))
		}
		rows = append(rows, row)
	}
	tb, err := table.New(cols, rows)
	require.NoError(t, err)
	return tb
}

func TestBarThresholds(t *testing.T) {
	th := DefaultThresholds()
	m, err := Melt(wideDaily(t, 101, "e"), []string{"e"})
	require.NoError(t, err)
	assert.False(t, Build(m, Day, false, th).BarEligible, "101 daily buckets exceed the single limit")
	assert.True(t, Build(m, Week, false, th).BarEligible)

	m, err = Melt(wideDaily(t, 60, "a", "b"), []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, Build(m, Day, false, th).BarEligible)
	assert.False(t, Build(m, Day, true, th).BarEligible, "60 buckets exceed the combined limit")
}

func TestPerEntityCharts(t *testing.T) {
	m, err := Melt(energyTable(t), []string{"sensor.a", "sensor.b"})
	require.NoError(t, err)
	charts := PerEntity(m, Month, DefaultThresholds())
	require.Len(t, charts, 2)
	assert.Equal(t, 8.0, charts[0].Total)
	assert.Equal(t, 7.0, charts[1].Total)
	assert.Equal(t, "sensor.b (month)", charts[1].Title)
}

func TestParsePeriodAndKind(t *testing.T) {
	p, err := ParsePeriod("Weekly")
	require.NoError(t, err)
	assert.Equal(t, Week, p)
	_, err = ParsePeriod("fortnight")
	assert.Error(t, err)

	k, err := ParseKind("bar")
	require.NoError(t, err)
	assert.Equal(t, KindBar, k)
	_, err = ParseKind("pie")
	assert.Error(t, err)
}

func TestWorkflowTransitions(t *testing.T) {
	w := NewWorkflow(DefaultThresholds())
	assert.Equal(t, StateNoData, w.State())

	var se *StateError
	assert.True(t, errors.As(w.Select([]string{"sensor.a"}), &se))

	require.NoError(t, w.SetView(energyTable(t)))
	assert.Equal(t, StateEntitiesListed, w.State())
	assert.Equal(t, []string{"sensor.a", "sensor.b"}, w.Entities())

	assert.True(t, errors.As(w.Compute(), &se))

	require.NoError(t, w.Select([]string{"sensor.a"}))
	assert.Equal(t, StateEntitiesSelected, w.State())
	require.NoError(t, w.Compute())
	assert.Equal(t, StateSeriesComputed, w.State())

	require.NoError(t, w.Show(Month))
	assert.Equal(t, StateAggregatedView, w.State())
	require.Len(t, w.Charts(), 1)

	require.NoError(t, w.Show(Original))
	assert.Equal(t, StateRawView, w.State())

	k, err := w.SetKind(KindBar)
	require.NoError(t, err)
	assert.Equal(t, KindLine, k)
	assert.True(t, w.Degraded())

	require.NoError(t, w.Show(Day))
	assert.Equal(t, KindBar, w.EffectiveKind())
	assert.False(t, w.Degraded())

	require.Error(t, w.Select([]string{"sensor.zzz"}))
	assert.Equal(t, StateAggregatedView, w.State())
	assert.Equal(t, []string{"sensor.a"}, w.Selected())
	require.Len(t, w.Charts(), 1)

	require.NoError(t, w.Select([]string{"sensor.b"}))
	assert.Equal(t, StateEntitiesSelected, w.State())
	assert.Empty(t, w.Charts())
}

func TestWorkflowCombinedFallsBackToLine(t *testing.T) {
	w := NewWorkflow(DefaultThresholds())
	require.NoError(t, w.SetView(wideDaily(t, 60, "a", "b")))
	require.NoError(t, w.Select([]string{"a", "b"}))
	require.NoError(t, w.Compute())
	require.NoError(t, w.Show(Day))
	_, err := w.SetKind(KindBar)
	require.NoError(t, err)
	assert.False(t, w.Degraded())
	assert.Len(t, w.Charts(), 2)

	require.NoError(t, w.SetCombined(true))
	assert.Len(t, w.Charts(), 1)
	assert.True(t, w.Degraded())
	assert.Equal(t, KindLine, w.EffectiveKind())
}

func TestWorkflowEmptySelection(t *testing.T) {
	w := NewWorkflow(DefaultThresholds())
	require.NoError(t, w.SetView(energyTable(t)))
	var es *table.EmptySelectionError
	assert.True(t, errors.As(w.Select(nil), &es))
	assert.Equal(t, StateEntitiesListed, w.State())

	require.NoError(t, w.Select([]string{"sensor.a"}))
	require.NoError(t, w.Compute())
	require.NoError(t, w.Show(Month))
	require.Len(t, w.Charts(), 1)

	assert.True(t, errors.As(w.Select(nil), &es))
	assert.Equal(t, StateAggregatedView, w.State())
	assert.Equal(t, []string{"sensor.a"}, w.Selected())
	assert.Len(t, w.Charts(), 1)
}
