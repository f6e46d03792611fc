package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/entityloom/internal/table"
)

func inventory(t *testing.T) *table.Dataset {
	t.Helper()
	tb, err := table.New([]string{"entity id", "name", "area", "power"}, [][]string{
		{"light.kitchen", "Kitchen", "Kitchen", "12,5"},
		{"light.bath", "Bath", "Bathroom", "7"},
		{"sensor.temp", "Temp", "", "0.5"},
		{"switch.fan", "Fan", "Kitchen", "40"},
		{"sensor.hum", "Humidity", "Bathroom", ""},
		{"", "Orphan", "", ""},
	})
	require.NoError(t, err)
	return table.NewDataset("inventory.csv", "inventory.csv", table.DialectEntity, tb)
}

func TestDomainStatsOrdering(t *testing.T) {
	stats, err := DomainStats(inventory(t).Table, "")
	require.NoError(t, err)
	assert.Equal(t, []DomainCount{
		{Domain: "light", Count: 2},
		{Domain: "sensor", Count: 2},
		{Domain: "switch", Count: 1},
	}, stats)
}

func TestDomainStatsMissingColumn(t *testing.T) {
	tb, err := table.New([]string{"name"}, [][]string{{"x"}})
	require.NoError(t, err)
	_, err = DomainStats(tb, "")
	var nf *table.ColumnNotFoundError
	require.True(t, errors.As(err, &nf))

	_, err = DomainStats(tb, "nope")
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "nope", nf.Column)
}

func TestDomainStatsUnderscoreColumn(t *testing.T) {
	tb, err := table.New([]string{"entity_id"}, [][]string{{"sensor.a"}, {"plain"}})
	require.NoError(t, err)
	stats, err := DomainStats(tb, "")
	require.NoError(t, err)
	assert.Equal(t, []DomainCount{{Domain: "plain", Count: 1}, {Domain: "sensor", Count: 1}}, stats)
}

func TestProfileKindsAndMarkdown(t *testing.T) {
	opt := DefaultOptions()
	opt.GroupBy = []string{"Area", "missing"}
	rep := Profile(inventory(t), opt)
	require.Len(t, rep.Cols, 4)
	assert.Equal(t, 6, rep.Rows)

	power := rep.Cols[3]
	assert.Equal(t, KindNumeric, power.Kind)
	assert.Equal(t, 0.5, power.Min)
	assert.Equal(t, 40.0, power.Max)
	assert.Equal(t, 2, power.Missing)

	area := rep.Cols[2]
	assert.Equal(t, KindCategorical, area.Kind)
	assert.Equal(t, CategoryCount{Value: "Bathroom", Count: 2}, area.TopValues[0])

	require.NotEmpty(t, rep.Groups)
	assert.Contains(t, rep.Warnings, `group-by column "missing" not found`)

	md := rep.Markdown()
	for _, section := range []string{"## Columns", "## Domains", "## Grouped", "## Sample rows", "## Notes"} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "| light | 2 |")
	assert.Contains(t, md, "| power | numeric |")
	assert.Contains(t, md, "| Group | Rows | mean power |")
	assert.NotContains(t, md, "## Energy")
}

func TestProfileEnergyExport(t *testing.T) {
	tb, err := table.New(
		[]string{"entity_id", "type", "unit", "2024-01-01t00:00:00", "2024-01-02t00:00:00"},
		[][]string{{"sensor.a", "energy", "kWh", "1", "2"}, {"sensor.b", "energy", "kWh", "3", "4"}},
	)
	require.NoError(t, err)
	rep := Profile(table.NewDataset("e.csv", "e.csv", table.DialectEnergy, tb), DefaultOptions())
	require.NotNil(t, rep.Energy)
	assert.Equal(t, 2, rep.Energy.Entities)
	assert.Equal(t, 2, rep.Energy.TimeCols)
	assert.Equal(t, 10.0, rep.Energy.GrandTotal)
	assert.Equal(t, []string{"kWh"}, rep.Energy.Units)
	assert.True(t, strings.Contains(rep.Markdown(), "Dialect: energy"))
}

func TestProfileMaxRowsAndOutliers(t *testing.T) {
	rows := [][]string{}
	for i := 0; i < 20; i++ {
		rows = append(rows, []string{"10"})
	}
	rows = append(rows, []string{"11"}, []string{"9"}, []string{"1000"})
	tb, err := table.New([]string{"v"}, rows)
	require.NoError(t, err)
	ds := table.NewDataset("v.csv", "v.csv", table.DialectEntity, tb)

	rep := Profile(ds, Options{Outliers: true})
	assert.Equal(t, 0, rep.Cols[0].OutliersCount, "zero MAD reports no outliers")

	rep = Profile(ds, Options{MaxRows: 5})
	assert.Equal(t, 5, rep.Processed)
	assert.NotEmpty(t, rep.Warnings)
}

func TestParseNumericLocales(t *testing.T) {
	cases := map[string]float64{
		"12,5":    12.5,
		"1.234,5": 1234.5,
		"1,234.5": 1234.5,
		"42 %":    42,
		"-3e2":    -300,
	}
	for in, want := range cases {
		got, ok := parseNumeric(in)
		require.True(t, ok, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}
	_, ok := parseNumeric("kitchen")
	assert.False(t, ok)
}
