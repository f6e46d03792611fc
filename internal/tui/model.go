// Package tui is the interactive terminal browser: a searchable, sortable
// table of the current view plus filter, export, domain statistics and
// energy chart screens.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/KaramelBytes/entityloom/internal/analysis"
	"github.com/KaramelBytes/entityloom/internal/chart"
	"github.com/KaramelBytes/entityloom/internal/energy"
	"github.com/KaramelBytes/entityloom/internal/schedule"
	"github.com/KaramelBytes/entityloom/internal/session"
	"github.com/KaramelBytes/entityloom/internal/table"
)

const (
	screenTable int = iota
	screenSearch
	screenFilter
	screenExport
	screenStats
	screenEntities
	screenChart
)

// Options configures the browser.
type Options struct {
	SearchDelay time.Duration
	Period      energy.Period
	ChartDir    string
	Chart       chart.Options
}

type searchTickMsg struct{ tag uint64 }
type renderStepMsg struct{ gen int }

type model struct {
	sess   *session.Session
	opt    Options
	deb    *schedule.Debouncer
	screen int
	width  int
	height int

	grid     btable.Model
	col      int
	search   textinput.Model
	exportIn textinput.Model
	status   session.Status

	choices      table.DistinctValues
	choiceCursor int

	stats []analysis.DomainCount

	wf           *energy.Workflow
	entityCursor int
	picked       map[string]bool
	combined     bool
	kind         energy.Kind

	batch    *chart.Batch
	batchGen int
	bar      progress.Model

	quitting bool
}

// Run starts the browser on sess and blocks until the user quits.
func Run(sess *session.Session, opt Options) error {
	p := tea.NewProgram(newModel(sess, opt), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func newModel(sess *session.Session, opt Options) model {
	search := textinput.New()
	search.Placeholder = "search all columns"
	search.Prompt = "/ "

	exportIn := textinput.New()
	exportIn.Placeholder = "export.csv"
	exportIn.Prompt = "export to: "

	grid := btable.New(btable.WithFocused(true), btable.WithHeight(15))

	m := model{
		sess:     sess,
		opt:      opt,
		deb:      schedule.NewDebouncer(opt.SearchDelay),
		grid:     grid,
		search:   search,
		exportIn: exportIn,
		picked:   map[string]bool{},
		bar:      progress.New(progress.WithDefaultGradient()),
	}
	if ds := sess.Dataset(); ds != nil {
		m.status = session.Status{
			Level:   session.LevelSuccess,
			Message: fmt.Sprintf("Loaded %d rows from %s (%s export)", ds.Table.Len(), ds.Name, ds.Dialect),
			Rows:    sess.View().Len(),
		}
	}
	m.refreshGrid()
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m *model) setStatus(st session.Status, err error) {
	m.status = st
	if err != nil && st.Message == "" {
		m.status = session.Status{Level: session.LevelError, Message: err.Error(), Rows: m.sess.View().Len()}
	}
}

func (m *model) fail(err error) {
	m.status = session.Status{Level: session.LevelError, Message: err.Error(), Rows: m.sess.View().Len()}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.grid.SetHeight(max(5, msg.Height-8))
		m.bar.Width = min(max(10, msg.Width-10), 120)
		return m, nil
	case searchTickMsg:
		if m.deb.Fire(msg.tag) {
			m.applySearch()
		}
		return m, nil
	case renderStepMsg:
		return m.stepRender(msg)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	switch m.screen {
	case screenSearch:
		return m.updateSearch(msg)
	case screenFilter:
		return m.updateFilter(msg)
	case screenExport:
		return m.updateExport(msg)
	case screenStats:
		if _, ok := msg.(tea.KeyMsg); ok {
			m.screen = screenTable
		}
		return m, nil
	case screenEntities:
		return m.updateEntities(msg)
	case screenChart:
		return m.updateChart(msg)
	}
	return m.updateTable(msg)
}

func (m *model) applySearch() {
	st, err := m.sess.Search(m.search.Value())
	m.setStatus(st, err)
	m.refreshGrid()
}

func (m model) updateTable(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd
	}
	cols := m.sess.View().Columns()
	switch key.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "/":
		m.screen = screenSearch
		m.grid.Blur()
		return m, m.search.Focus()
	case "left", "h":
		if m.col > 0 {
			m.col--
			m.refreshGrid()
		}
		return m, nil
	case "right", "l":
		if m.col < len(cols)-1 {
			m.col++
			m.refreshGrid()
		}
		return m, nil
	case "s":
		if len(cols) == 0 {
			return m, nil
		}
		st, err := m.sess.Sort(cols[m.col])
		m.setStatus(st, err)
		m.refreshGrid()
		return m, nil
	case "f":
		if len(cols) == 0 {
			return m, nil
		}
		dv, err := m.sess.Distinct(cols[m.col])
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.choices, m.choiceCursor = dv, 0
		m.screen = screenFilter
		return m, nil
	case "r":
		m.deb.Cancel()
		m.search.SetValue("")
		m.setStatus(m.sess.Reset(), nil)
		m.refreshGrid()
		return m, nil
	case "e":
		m.screen = screenExport
		m.grid.Blur()
		return m, m.exportIn.Focus()
	case "t":
		stats, err := m.sess.DomainStats()
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.stats = stats
		m.screen = screenStats
		return m, nil
	case "c":
		wf, err := m.sess.Energy()
		if err != nil {
			m.fail(err)
			return m, nil
		}
		if wf.State() == energy.StateNoData {
			m.fail(&table.EmptySelectionError{What: "rows"})
			return m, nil
		}
		m.wf = wf
		m.entityCursor = 0
		m.picked = map[string]bool{}
		m.screen = screenEntities
		return m, nil
	}
	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			m.search.Blur()
			m.grid.Focus()
			m.screen = screenTable
			return m, nil
		case tea.KeyEnter:
			m.deb.Cancel()
			m.applySearch()
			m.search.Blur()
			m.grid.Focus()
			m.screen = screenTable
			return m, nil
		}
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	tag := m.deb.Trigger()
	tick := tea.Tick(m.deb.Delay(), func(time.Time) tea.Msg { return searchTickMsg{tag: tag} })
	return m, tea.Batch(cmd, tick)
}

func (m model) updateFilter(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "esc", "q":
		m.screen = screenTable
	case "up", "k":
		if m.choiceCursor > 0 {
			m.choiceCursor--
		}
	case "down", "j":
		if m.choiceCursor < len(m.choices.Choices)-1 {
			m.choiceCursor++
		}
	case "enter":
		if len(m.choices.Choices) == 0 {
			m.screen = screenTable
			return m, nil
		}
		c := m.choices.Choices[m.choiceCursor]
		m.deb.Cancel()
		m.search.SetValue("")
		st, err := m.sess.FilterByColumn(m.choices.Column, c.Value)
		m.setStatus(st, err)
		m.refreshGrid()
		m.screen = screenTable
	}
	return m, nil
}

func (m model) updateExport(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			m.exportIn.Blur()
			m.grid.Focus()
			m.screen = screenTable
			return m, nil
		case tea.KeyEnter:
			path := m.exportIn.Value()
			if path == "" {
				path = m.exportIn.Placeholder
			}
			st, err := m.sess.Export(path)
			m.setStatus(st, err)
			m.exportIn.Blur()
			m.grid.Focus()
			m.screen = screenTable
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.exportIn, cmd = m.exportIn.Update(msg)
	return m, cmd
}

func (m model) updateEntities(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	ids := m.wf.Entities()
	switch key.String() {
	case "esc", "q":
		m.screen = screenTable
	case "up", "k":
		if m.entityCursor > 0 {
			m.entityCursor--
		}
	case "down", "j":
		if m.entityCursor < len(ids)-1 {
			m.entityCursor++
		}
	case " ", "x":
		if len(ids) > 0 {
			id := ids[m.entityCursor]
			m.picked[id] = !m.picked[id]
		}
	case "a":
		all := len(m.selection()) < len(ids)
		for _, id := range ids {
			m.picked[id] = all
		}
	case "m":
		m.combined = !m.combined
	case "enter":
		if err := m.showChart(); err != nil {
			m.fail(err)
			return m, nil
		}
		m.screen = screenChart
	}
	return m, nil
}

// selection returns the picked entities in listing order.
func (m model) selection() []string {
	var out []string
	for _, id := range m.wf.Entities() {
		if m.picked[id] {
			out = append(out, id)
		}
	}
	return out
}

func (m *model) showChart() error {
	if err := m.wf.Select(m.selection()); err != nil {
		return err
	}
	if err := m.wf.Compute(); err != nil {
		return err
	}
	if err := m.wf.SetCombined(m.combined); err != nil {
		return err
	}
	if err := m.wf.Show(m.opt.Period); err != nil {
		return err
	}
	if _, err := m.wf.SetKind(m.kind); err != nil {
		return err
	}
	m.chartStatus()
	return nil
}

func (m *model) chartStatus() {
	if m.wf.Degraded() {
		m.status = session.Status{
			Level:   session.LevelWarn,
			Message: fmt.Sprintf("Too many buckets for bars at %s resolution; showing lines", m.wf.Period()),
			Rows:    m.sess.View().Len(),
		}
		return
	}
	m.status = session.Status{
		Level:   session.LevelInfo,
		Message: fmt.Sprintf("%d chart(s), %s, %s", len(m.wf.Charts()), m.wf.Period(), m.wf.EffectiveKind()),
		Rows:    m.sess.View().Len(),
	}
}

var periodKeys = map[string]energy.Period{
	"1": energy.Original,
	"2": energy.Day,
	"3": energy.Week,
	"4": energy.Month,
	"5": energy.Year,
}

func (m model) updateChart(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	k := key.String()
	if p, ok := periodKeys[k]; ok {
		m.discardBatch()
		if err := m.wf.Show(p); err != nil {
			m.fail(err)
		} else {
			m.chartStatus()
		}
		return m, nil
	}
	switch k {
	case "esc", "q":
		// back to entity selection; the running batch is dropped
		m.discardBatch()
		m.screen = screenEntities
	case "b":
		m.discardBatch()
		if m.kind == energy.KindBar {
			m.kind = energy.KindLine
		} else {
			m.kind = energy.KindBar
		}
		if _, err := m.wf.SetKind(m.kind); err != nil {
			m.fail(err)
			return m, nil
		}
		m.chartStatus()
	case "m":
		m.discardBatch()
		m.combined = !m.combined
		if err := m.wf.SetCombined(m.combined); err != nil {
			m.fail(err)
			return m, nil
		}
		m.chartStatus()
	case "g":
		m.batchGen++
		m.batch = chart.NewBatch(m.opt.ChartDir, m.wf.Charts(), m.kind, m.opt.Chart)
		m.status = session.Status{Level: session.LevelInfo, Message: fmt.Sprintf("Rendering %d chart(s)...", m.batch.Total()), Rows: m.sess.View().Len()}
		return m, nextRender(m.batchGen)
	}
	return m, nil
}

func (m *model) discardBatch() {
	m.batch = nil
	m.batchGen++
}

func nextRender(gen int) tea.Cmd {
	return tea.Tick(10*time.Millisecond, func(time.Time) tea.Msg { return renderStepMsg{gen: gen} })
}

func (m model) stepRender(msg renderStepMsg) (tea.Model, tea.Cmd) {
	if m.batch == nil || msg.gen != m.batchGen {
		return m, nil
	}
	if _, err := m.batch.Step(); err != nil {
		m.status = session.Status{Level: session.LevelWarn, Message: err.Error(), Rows: m.sess.View().Len()}
	}
	if !m.batch.Done() {
		return m, nextRender(m.batchGen)
	}
	n := len(m.batch.Results())
	lvl := session.LevelSuccess
	if n < m.batch.Total() {
		lvl = session.LevelWarn
	}
	m.status = session.Status{Level: lvl, Message: fmt.Sprintf("Rendered %d/%d chart(s) to %s", n, m.batch.Total(), m.opt.ChartDir), Rows: m.sess.View().Len()}
	return m, nil
}
