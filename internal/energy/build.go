package energy

import "fmt"

// Thresholds bound the number of buckets a bar chart may show.
type Thresholds struct {
	Single   int `yaml:"single"`
	Combined int `yaml:"combined"`
}

// DefaultThresholds returns the limits used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{Single: 100, Combined: 50}
}

func (th Thresholds) limit(combined bool) int {
	if combined {
		if th.Combined > 0 {
			return th.Combined
		}
		return DefaultThresholds().Combined
	}
	if th.Single > 0 {
		return th.Single
	}
	return DefaultThresholds().Single
}

// Kind is the chart style.
type Kind int

const (
	KindLine Kind = iota
	KindBar
)

func (k Kind) String() string {
	if k == KindBar {
		return "bar"
	}
	return "line"
}

// ParseKind parses "bar" or "line".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "bar":
		return KindBar, nil
	case "line", "":
		return KindLine, nil
	}
	return KindLine, fmt.Errorf("unknown chart kind %q (use bar|line)", s)
}

// Chart is the series and summary behind one rendered chart.
type Chart struct {
	Title       string
	Period      Period
	Combined    bool
	Series      []Series
	Total       float64
	Unit        string
	BarEligible bool
}

// Effective returns the kind that will actually be drawn for a request.
func (c Chart) Effective(requested Kind) Kind {
	if requested == KindBar && !c.BarEligible {
		return KindLine
	}
	return requested
}

// Summary formats the summation line shown under a chart.
func (c Chart) Summary() string {
	if c.Unit == "" {
		return fmt.Sprintf("Total: %.2f", c.Total)
	}
	return fmt.Sprintf("Total: %.2f %s", c.Total, c.Unit)
}

// Build resamples m and computes the summary for a single chart. Combined
// charts draw every entity on one canvas and use the tighter bar limit.
func Build(m Melted, p Period, combined bool, th Thresholds) Chart {
	c := Chart{
		Period:   p,
		Combined: combined,
		Series:   Resample(m, p),
		Unit:     m.Unit(),
	}
	for _, pt := range m.Points {
		c.Total += pt.Value
	}
	if p != Original && len(c.Series) > 0 {
		c.BarEligible = len(c.Series[0].Buckets) <= th.limit(combined)
	}
	switch {
	case combined:
		c.Title = fmt.Sprintf("%d entities (%s)", len(m.Entities), p)
	case len(m.Entities) > 0:
		c.Title = fmt.Sprintf("%s (%s)", m.Entities[0], p)
	default:
		c.Title = p.String()
	}
	return c
}

// PerEntity builds one single-entity chart per entity of m.
func PerEntity(m Melted, p Period, th Thresholds) []Chart {
	byEntity := make(map[string][]Point, len(m.Entities))
	for _, pt := range m.Points {
		byEntity[pt.EntityID] = append(byEntity[pt.EntityID], pt)
	}
	out := make([]Chart, 0, len(m.Entities))
	for _, id := range m.Entities {
		sub := Melted{Entities: []string{id}, Points: byEntity[id]}
		out = append(out, Build(sub, p, false, th))
	}
	return out
}
