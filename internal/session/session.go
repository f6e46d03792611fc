// Package session threads an Original Dataset through search, filter, sort
// and export, keeping the current view between steps.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/entityloom/internal/analysis"
	"github.com/KaramelBytes/entityloom/internal/csvio"
	"github.com/KaramelBytes/entityloom/internal/energy"
	"github.com/KaramelBytes/entityloom/internal/table"
)

// ErrNoDataset is returned by operations that need a loaded dataset.
var ErrNoDataset = errors.New("no dataset loaded")

// Options configures a session.
type Options struct {
	// Delimiter forces the field separator on load; 0 sniffs it.
	Delimiter  rune
	Thresholds energy.Thresholds
	Logger     *slog.Logger
}

// Session owns the Original Dataset and the Current View. Operations that
// fail leave both untouched. A Session is not safe for concurrent use.
type Session struct {
	opt      Options
	log      *slog.Logger
	original *table.Dataset
	view     *table.Table
	nextDesc map[string]bool
	sortCol  string
	sortDesc bool
	workflow *energy.Workflow
	bound    *table.Table
}

// New returns an empty session.
func New(opt Options) *Session {
	l := opt.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Session{
		opt:      opt,
		log:      l.With("component", "session"),
		view:     table.Empty(),
		nextDesc: map[string]bool{},
	}
}

// Dataset returns the loaded Original Dataset, or nil.
func (s *Session) Dataset() *table.Dataset { return s.original }

// View returns the Current View.
func (s *Session) View() *table.Table { return s.view }

// SortState returns the column and direction of the last sort.
func (s *Session) SortState() (string, bool) { return s.sortCol, s.sortDesc }

func (s *Session) fail(op string, err error) (Status, error) {
	s.log.Warn(op+" failed", "error", err)
	return Status{Level: LevelError, Message: err.Error(), Rows: s.view.Len()}, err
}

func (s *Session) setView(v *table.Table) {
	s.view = v
	s.sortCol = ""
	s.sortDesc = false
}

// Load replaces the Original Dataset with the file at path. On failure the
// previous dataset and view are kept.
func (s *Session) Load(path string) (Status, error) {
	ds, err := csvio.Load(path, csvio.Options{Delimiter: s.opt.Delimiter})
	if err != nil {
		return s.fail("load", err)
	}
	s.original = ds
	s.setView(ds.Table)
	s.nextDesc = map[string]bool{}
	s.log.Info("dataset loaded",
		"dataset", ds.ID,
		"path", path,
		"dialect", ds.Dialect.String(),
		"rows", ds.Table.Len(),
		"columns", len(ds.Table.Columns()))
	return Status{
		Level:   LevelSuccess,
		Message: fmt.Sprintf("Loaded %d rows from %s (%s export)", ds.Table.Len(), ds.Name, ds.Dialect),
		Rows:    s.view.Len(),
	}, nil
}

// Search replaces the view with the rows of the Original Dataset matching
// term. Searches never narrow a previous search or filter.
func (s *Session) Search(term string) (Status, error) {
	if s.original == nil {
		return s.fail("search", ErrNoDataset)
	}
	s.setView(table.Search(s.original.Table, term))
	s.log.Debug("search applied", "term", term, "rows", s.view.Len())
	msg := fmt.Sprintf("%d rows match %q", s.view.Len(), term)
	if term == "" {
		msg = fmt.Sprintf("Showing all %d rows", s.view.Len())
	}
	return Status{Level: LevelInfo, Message: msg, Rows: s.view.Len()}, nil
}

// FilterByColumn replaces the view with the rows of the Original Dataset
// whose column equals value exactly. Zero matches is not an error.
func (s *Session) FilterByColumn(column, value string) (Status, error) {
	if s.original == nil {
		return s.fail("filter", ErrNoDataset)
	}
	v, err := table.FilterByColumn(s.original.Table, column, value)
	if err != nil {
		return s.fail("filter", err)
	}
	s.setView(v)
	s.log.Debug("filter applied", "column", column, "value", value, "rows", v.Len())
	label := value
	if value == "" {
		label = table.UnassignedLabel
	}
	st := Status{Level: LevelInfo, Message: fmt.Sprintf("Filter %s = %q: %d rows", column, label, v.Len()), Rows: v.Len()}
	if v.Len() == 0 {
		st.Level = LevelWarn
	}
	return st, nil
}

// Distinct lists the values of column in the Original Dataset.
func (s *Session) Distinct(column string) (table.DistinctValues, error) {
	if s.original == nil {
		return table.DistinctValues{}, ErrNoDataset
	}
	return table.Distinct(s.original.Table, column)
}

// Reset restores the view to the full Original Dataset.
func (s *Session) Reset() Status {
	if s.original == nil {
		s.setView(table.Empty())
		return Status{Level: LevelInfo, Message: "Nothing loaded"}
	}
	s.setView(s.original.Table)
	s.log.Debug("view reset", "rows", s.view.Len())
	return Status{Level: LevelInfo, Message: fmt.Sprintf("Filters cleared: %d rows", s.view.Len()), Rows: s.view.Len()}
}

// Sort orders the view by column. The first sort of a column is ascending
// and each further sort of it flips the direction.
func (s *Session) Sort(column string) (Status, error) {
	desc := s.nextDesc[column]
	st, err := s.SortBy(column, desc)
	if err == nil {
		s.nextDesc[column] = !desc
	}
	return st, err
}

// SortBy orders the view by column in the given direction.
func (s *Session) SortBy(column string, descending bool) (Status, error) {
	v, err := table.Sort(s.view, column, descending)
	if err != nil {
		return s.fail("sort", err)
	}
	s.view = v
	s.sortCol, s.sortDesc = column, descending
	dir := "ascending"
	if descending {
		dir = "descending"
	}
	s.log.Debug("view sorted", "column", column, "direction", dir)
	return Status{Level: LevelInfo, Message: fmt.Sprintf("Sorted by %s (%s)", column, dir), Rows: v.Len()}, nil
}

// Export writes the view to path in the dataset's dialect.
func (s *Session) Export(path string) (Status, error) {
	if s.original == nil {
		return s.fail("export", ErrNoDataset)
	}
	if s.view.Len() == 0 {
		return s.fail("export", &table.EmptySelectionError{What: "rows"})
	}
	if err := csvio.Write(path, s.view, s.original.Dialect); err != nil {
		return s.fail("export", err)
	}
	s.log.Info("view exported", "path", path, "rows", s.view.Len(), "dialect", s.original.Dialect.String())
	return Status{
		Level:   LevelSuccess,
		Message: fmt.Sprintf("Exported %d rows to %s", s.view.Len(), path),
		Rows:    s.view.Len(),
	}, nil
}

// DomainStats counts entity domains over the Original Dataset.
func (s *Session) DomainStats() ([]analysis.DomainCount, error) {
	if s.original == nil {
		return nil, ErrNoDataset
	}
	stats, err := analysis.DomainStats(s.original.Table, "")
	if err != nil {
		s.log.Warn("domain stats failed", "error", err)
		return nil, err
	}
	return stats, nil
}

// Energy returns the charting workflow bound to the current view. The
// workflow is rebuilt whenever the view has changed since the last call.
func (s *Session) Energy() (*energy.Workflow, error) {
	if s.original == nil {
		return nil, ErrNoDataset
	}
	if s.workflow != nil && s.bound == s.view {
		return s.workflow, nil
	}
	w := energy.NewWorkflow(s.opt.Thresholds)
	if err := w.SetView(s.view); err != nil {
		s.log.Warn("energy workflow unavailable", "error", err)
		return nil, err
	}
	s.workflow, s.bound = w, s.view
	s.log.Debug("energy workflow bound", "entities", len(w.Entities()))
	return w, nil
}
