package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/entityloom/internal/csvio"
	"github.com/KaramelBytes/entityloom/internal/energy"
	"github.com/KaramelBytes/entityloom/internal/logging"
	"github.com/KaramelBytes/entityloom/internal/table"
)

const inventoryCSV = "Entity ID;Name;Area;Unnamed: 3\n" +
	"light.kitchen;Kitchen Light;Kitchen;\n" +
	"sensor.temp;Temperature;;\n" +
	"switch.fan;Fan;kitchen;\n" +
	"light.bath;Bath;Bathroom;\n"

const energyCSV = "entity_id,type,unit,2024-01-01T00:00:00,2024-01-02T00:00:00,2024-01-03T00:00:00\n" +
	"sensor.a,energy,kWh,1,2,5\n" +
	"sensor.b,energy,kWh,3,,4\n"

func write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func newSession(t *testing.T, body string) *Session {
	t.Helper()
	s := New(Options{Thresholds: energy.DefaultThresholds(), Logger: logging.Discard()})
	st, err := s.Load(write(t, "data.csv", body))
	require.NoError(t, err)
	require.Equal(t, LevelSuccess, st.Level)
	return s
}

func TestLoadNormalizesAndKeepsPreviousOnFailure(t *testing.T) {
	s := newSession(t, inventoryCSV)
	assert.Equal(t, []string{"entity id", "name", "area"}, s.View().Columns())
	assert.Equal(t, 4, s.View().Len())
	before := s.Dataset()

	st, err := s.Load(filepath.Join(t.TempDir(), "missing.csv"))
	var le *csvio.LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, LevelError, st.Level)
	assert.Same(t, before, s.Dataset())
	assert.Equal(t, 4, s.View().Len())
}

func TestSearchIsNotCumulative(t *testing.T) {
	s := newSession(t, inventoryCSV)
	_, err := s.Search("kitchen")
	require.NoError(t, err)
	assert.Equal(t, 2, s.View().Len())

	st, err := s.Search("bath")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Rows, "second search runs against the original dataset")

	_, err = s.FilterByColumn("area", "Kitchen")
	require.NoError(t, err)
	_, err = s.Search("fan")
	require.NoError(t, err)
	assert.Equal(t, 1, s.View().Len())
}

func TestFilterUnassignedAndZeroMatches(t *testing.T) {
	s := newSession(t, inventoryCSV)
	st, err := s.FilterByColumn("area", "")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Rows)
	assert.Contains(t, st.Message, table.UnassignedLabel)

	st, err = s.FilterByColumn("area", "Garage")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, st.Level)
	assert.Equal(t, 0, s.View().Len())

	_, err = s.FilterByColumn("room", "x")
	var nf *table.ColumnNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, 0, s.View().Len(), "failed filter leaves the view unchanged")

	s.Reset()
	assert.Equal(t, 4, s.View().Len())
}

func TestSortToggles(t *testing.T) {
	s := newSession(t, inventoryCSV)
	_, err := s.Sort("name")
	require.NoError(t, err)
	first, _ := s.View().Value(0, "name")
	assert.Equal(t, "Bath", first)
	col, desc := s.SortState()
	assert.Equal(t, "name", col)
	assert.False(t, desc)

	_, err = s.Sort("name")
	require.NoError(t, err)
	first, _ = s.View().Value(0, "name")
	assert.Equal(t, "Temperature", first)

	_, err = s.Sort("nope")
	assert.Error(t, err)
	col, desc = s.SortState()
	assert.Equal(t, "name", col)
	assert.True(t, desc)
}

func TestExportRoundTripAndEmptyView(t *testing.T) {
	s := newSession(t, inventoryCSV)
	_, err := s.Search("light")
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "out.csv")
	st, err := s.Export(out)
	require.NoError(t, err)
	assert.Equal(t, LevelSuccess, st.Level)

	ds, err := csvio.Load(out, csvio.Options{})
	require.NoError(t, err)
	assert.True(t, ds.Table.Equal(s.View()))
	assert.Equal(t, table.DialectEntity, ds.Dialect)

	_, err = s.FilterByColumn("area", "Garage")
	require.NoError(t, err)
	_, err = s.Export(out)
	var es *table.EmptySelectionError
	assert.True(t, errors.As(err, &es))
}

func TestOperationsWithoutDataset(t *testing.T) {
	s := New(Options{Logger: logging.Discard()})
	_, err := s.Search("x")
	assert.ErrorIs(t, err, ErrNoDataset)
	_, err = s.Export("x.csv")
	assert.ErrorIs(t, err, ErrNoDataset)
	_, err = s.Energy()
	assert.ErrorIs(t, err, ErrNoDataset)
	assert.Equal(t, 0, s.Reset().Rows)
}

func TestDomainStats(t *testing.T) {
	s := newSession(t, inventoryCSV)
	stats, err := s.DomainStats()
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, "light", stats[0].Domain)
	assert.Equal(t, 2, stats[0].Count)
}

func TestEnergyWorkflowFollowsView(t *testing.T) {
	s := newSession(t, energyCSV)
	assert.Equal(t, table.DialectEnergy, s.Dataset().Dialect)

	w, err := s.Energy()
	require.NoError(t, err)
	assert.Equal(t, []string{"sensor.a", "sensor.b"}, w.Entities())
	again, err := s.Energy()
	require.NoError(t, err)
	assert.Same(t, w, again)

	require.NoError(t, w.Select([]string{"sensor.a"}))
	require.NoError(t, w.Compute())
	require.NoError(t, w.Show(energy.Month))
	require.Len(t, w.Charts(), 1)
	assert.Equal(t, 8.0, w.Charts()[0].Total)

	_, err = s.Search("sensor.b")
	require.NoError(t, err)
	w2, err := s.Energy()
	require.NoError(t, err)
	assert.NotSame(t, w, w2)
	assert.Equal(t, []string{"sensor.b"}, w2.Entities())
}
