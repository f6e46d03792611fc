package energy

import (
	"fmt"

	"github.com/KaramelBytes/entityloom/internal/table"
)

// State is a step of the energy charting workflow.
type State int

const (
	StateNoData State = iota
	StateEntitiesListed
	StateEntitiesSelected
	StateSeriesComputed
	StateAggregatedView
	StateRawView
)

var stateNames = [...]string{
	"no-data",
	"entities-listed",
	"entities-selected",
	"series-computed",
	"aggregated-view",
	"raw-view",
}

func (s State) String() string {
	if int(s) >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StateError reports an operation attempted in the wrong workflow state.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s in state %s", e.Op, e.State)
}

// Workflow walks a view through entity selection, reshaping and charting.
type Workflow struct {
	th       Thresholds
	state    State
	view     *table.Table
	entities []string
	selected []string
	melted   Melted
	period   Period
	combined bool
	kind     Kind
	charts   []Chart
}

// NewWorkflow returns a workflow with no data.
func NewWorkflow(th Thresholds) *Workflow {
	return &Workflow{th: th, period: Month}
}

// State returns the current step.
func (w *Workflow) State() State { return w.state }

// SetView lists the entities of view. A nil or empty view resets to NoData.
func (w *Workflow) SetView(view *table.Table) error {
	w.reset()
	if view == nil || view.Len() == 0 {
		return nil
	}
	ids, err := Entities(view)
	if err != nil {
		return err
	}
	w.view = view
	w.entities = ids
	w.state = StateEntitiesListed
	return nil
}

func (w *Workflow) reset() {
	w.state = StateNoData
	w.view = nil
	w.entities = nil
	w.selected = nil
	w.melted = Melted{}
	w.charts = nil
}

// Entities returns the listed entity ids.
func (w *Workflow) Entities() []string { return w.entities }

// Selected returns the chosen entity ids.
func (w *Workflow) Selected() []string { return w.selected }

// Select records the entities to chart. A valid selection from any later
// state starts over from the listed entities; an invalid one leaves the
// workflow untouched.
func (w *Workflow) Select(ids []string) error {
	if w.state == StateNoData {
		return &StateError{Op: "select entities", State: w.state}
	}
	if len(ids) == 0 {
		return &table.EmptySelectionError{What: "entities"}
	}
	known := make(map[string]struct{}, len(w.entities))
	for _, id := range w.entities {
		known[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("entity %q is not in the current view", id)
		}
	}
	w.melted = Melted{}
	w.charts = nil
	w.selected = append([]string(nil), ids...)
	w.state = StateEntitiesSelected
	return nil
}

// Compute melts the selected entities into series.
func (w *Workflow) Compute() error {
	if w.state != StateEntitiesSelected {
		return &StateError{Op: "compute series", State: w.state}
	}
	m, err := Melt(w.view, w.selected)
	if err != nil {
		return err
	}
	w.melted = m
	w.state = StateSeriesComputed
	return nil
}

// Melted returns the long-form table of the selected entities.
func (w *Workflow) Melted() Melted { return w.melted }

func (w *Workflow) computed() bool {
	return w.state == StateSeriesComputed || w.state == StateAggregatedView || w.state == StateRawView
}

// Show resamples into p and builds the charts, entering the aggregated or
// raw view.
func (w *Workflow) Show(p Period) error {
	if !w.computed() {
		return &StateError{Op: "show chart", State: w.state}
	}
	w.period = p
	w.rebuild()
	return nil
}

// SetCombined toggles drawing all entities on one chart.
func (w *Workflow) SetCombined(combined bool) error {
	if !w.computed() {
		return &StateError{Op: "toggle combined", State: w.state}
	}
	w.combined = combined
	if w.state != StateSeriesComputed {
		w.rebuild()
	}
	return nil
}

// SetKind records the requested chart kind and returns the kind that will
// be drawn.
func (w *Workflow) SetKind(k Kind) (Kind, error) {
	if !w.computed() {
		return KindLine, &StateError{Op: "choose chart kind", State: w.state}
	}
	w.kind = k
	return w.EffectiveKind(), nil
}

func (w *Workflow) rebuild() {
	if w.combined {
		w.charts = []Chart{Build(w.melted, w.period, true, w.th)}
	} else {
		w.charts = PerEntity(w.melted, w.period, w.th)
	}
	if w.period == Original {
		w.state = StateRawView
	} else {
		w.state = StateAggregatedView
	}
}

// Period returns the current resampling period.
func (w *Workflow) Period() Period { return w.period }

// Combined reports whether entities share one chart.
func (w *Workflow) Combined() bool { return w.combined }

// Kind returns the requested chart kind.
func (w *Workflow) Kind() Kind { return w.kind }

// Charts returns the charts of the current view.
func (w *Workflow) Charts() []Chart { return w.charts }

// EffectiveKind is the requested kind, or line when any chart is not
// eligible for bars.
func (w *Workflow) EffectiveKind() Kind {
	if w.kind != KindBar {
		return w.kind
	}
	if w.state == StateRawView {
		return KindLine
	}
	for _, c := range w.charts {
		if !c.BarEligible {
			return KindLine
		}
	}
	return KindBar
}

// Degraded reports that a bar chart was requested but lines are drawn.
func (w *Workflow) Degraded() bool {
	return w.kind == KindBar && w.EffectiveKind() != KindBar
}
