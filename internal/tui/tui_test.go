package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/entityloom/internal/chart"
	"github.com/KaramelBytes/entityloom/internal/energy"
	"github.com/KaramelBytes/entityloom/internal/logging"
	"github.com/KaramelBytes/entityloom/internal/session"
)

const inventoryCSV = "entity id;name;area\n" +
	"light.kitchen;Kitchen Light;Kitchen\n" +
	"sensor.temp;Temperature;\n" +
	"switch.fan;Fan;kitchen\n" +
	"light.bath;Bath;Bathroom\n"

const energyCSV = "entity_id,type,unit,2024-01-01T00:00:00,2024-01-02T00:00:00\n" +
	"sensor.a,energy,kWh,1,2\n" +
	"sensor.b,energy,kWh,3,4\n"

func loaded(t *testing.T, body string) (model, string) {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	s := session.New(session.Options{Thresholds: energy.DefaultThresholds(), Logger: logging.Discard()})
	_, err := s.Load(p)
	require.NoError(t, err)
	m := newModel(s, Options{
		SearchDelay: 5 * time.Millisecond,
		Period:      energy.Day,
		ChartDir:    filepath.Join(dir, "charts"),
		Chart:       chart.Options{Width: 320, Height: 200},
	})
	return m, dir
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func TestDebouncedSearchAppliesLatestOnly(t *testing.T) {
	m, _ := loaded(t, inventoryCSV)
	m = press(t, m, "/")
	require.Equal(t, screenSearch, m.screen)

	m = press(t, m, "b", "a")
	assert.Equal(t, 4, m.sess.View().Len(), "nothing applied before the tick")

	m = update(t, m, searchTickMsg{tag: 1})
	assert.Equal(t, 4, m.sess.View().Len(), "stale tick is ignored")

	m = update(t, m, searchTickMsg{tag: 2})
	assert.Equal(t, 1, m.sess.View().Len())
	assert.Equal(t, "ba", m.search.Value())

	m = press(t, m, "esc")
	assert.Equal(t, screenTable, m.screen)
}

func TestEnterSearchesImmediately(t *testing.T) {
	m, _ := loaded(t, inventoryCSV)
	m = press(t, m, "/", "k", "i", "t", "enter")
	assert.Equal(t, screenTable, m.screen)
	assert.Equal(t, 2, m.sess.View().Len())

	m = update(t, m, searchTickMsg{tag: 3})
	assert.Equal(t, 2, m.sess.View().Len())
}

func TestSortTogglesOnSelectedColumn(t *testing.T) {
	m, _ := loaded(t, inventoryCSV)
	m = press(t, m, "right", "s")
	col, desc := m.sess.SortState()
	assert.Equal(t, "name", col)
	assert.False(t, desc)
	first, _ := m.sess.View().Value(0, "name")
	assert.Equal(t, "Bath", first)

	m = press(t, m, "s")
	_, desc = m.sess.SortState()
	assert.True(t, desc)
	assert.Contains(t, m.grid.Columns()[1].Title, "▼")
}

func TestFilterScreenAndReset(t *testing.T) {
	m, _ := loaded(t, inventoryCSV)
	m = press(t, m, "right", "right", "f")
	require.Equal(t, screenFilter, m.screen)
	require.NotEmpty(t, m.choices.Choices)
	assert.True(t, m.choices.Choices[0].Unassigned)

	m = press(t, m, "enter")
	assert.Equal(t, screenTable, m.screen)
	assert.Equal(t, 1, m.sess.View().Len())

	m = press(t, m, "r")
	assert.Equal(t, 4, m.sess.View().Len())
}

func TestExportPrompt(t *testing.T) {
	m, dir := loaded(t, inventoryCSV)
	out := filepath.Join(dir, "out.csv")
	m = press(t, m, "e")
	require.Equal(t, screenExport, m.screen)
	m.exportIn.SetValue(out)
	m = press(t, m, "enter")
	assert.Equal(t, session.LevelSuccess, m.status.Level)
	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestDomainStatsScreen(t *testing.T) {
	m, _ := loaded(t, inventoryCSV)
	m = press(t, m, "t")
	require.Equal(t, screenStats, m.screen)
	assert.Contains(t, m.View(), "light")
	m = press(t, m, "x")
	assert.Equal(t, screenTable, m.screen)
}

func TestChartFlowRendersIncrementally(t *testing.T) {
	m, dir := loaded(t, energyCSV)
	m = press(t, m, "c")
	require.Equal(t, screenEntities, m.screen)

	m = press(t, m, "enter")
	assert.Equal(t, screenEntities, m.screen, "empty selection stays on the list")
	assert.Equal(t, session.LevelError, m.status.Level)

	m = press(t, m, "a", "enter")
	require.Equal(t, screenChart, m.screen)
	require.Len(t, m.wf.Charts(), 2)
	assert.Equal(t, energy.StateAggregatedView, m.wf.State())

	m = press(t, m, "1")
	assert.Equal(t, energy.StateRawView, m.wf.State())
	m = press(t, m, "b")
	assert.True(t, m.wf.Degraded())
	assert.Equal(t, session.LevelWarn, m.status.Level)
	m = press(t, m, "2")

	m = press(t, m, "g")
	require.NotNil(t, m.batch)
	gen := m.batchGen
	m = update(t, m, renderStepMsg{gen: gen})
	assert.Equal(t, 0.5, m.batch.Progress())
	m = update(t, m, renderStepMsg{gen: gen})
	assert.True(t, m.batch.Done())
	assert.Equal(t, session.LevelSuccess, m.status.Level)

	files, err := filepath.Glob(filepath.Join(dir, "charts", "*.png"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	m = press(t, m, "esc")
	assert.Equal(t, screenEntities, m.screen)
	assert.Nil(t, m.batch)
}

func TestStaleRenderTickIgnored(t *testing.T) {
	m, _ := loaded(t, energyCSV)
	m = press(t, m, "c", "a", "enter", "g")
	gen := m.batchGen
	m = press(t, m, "m")
	m = update(t, m, renderStepMsg{gen: gen})
	assert.Nil(t, m.batch)
	assert.True(t, m.wf.Combined())
	assert.Len(t, m.wf.Charts(), 1)
}
