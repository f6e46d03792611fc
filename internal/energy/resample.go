package energy

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Period is the calendar bucket used when resampling.
type Period int

const (
	Original Period = iota
	Day
	Week
	Month
	Year
)

var periodNames = map[Period]string{
	Original: "original",
	Day:      "day",
	Week:     "week",
	Month:    "month",
	Year:     "year",
}

func (p Period) String() string {
	if s, ok := periodNames[p]; ok {
		return s
	}
	return fmt.Sprintf("period(%d)", int(p))
}

// ParsePeriod accepts the period names plus a few common aliases.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "original", "raw", "none", "":
		return Original, nil
	case "day", "daily", "d":
		return Day, nil
	case "week", "weekly", "w":
		return Week, nil
	case "month", "monthly", "m":
		return Month, nil
	case "year", "yearly", "y":
		return Year, nil
	}
	return Original, fmt.Errorf("unknown period %q (use original|day|week|month|year)", s)
}

// Truncate returns the start of the bucket containing t. Weeks start on
// Monday.
func (p Period) Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch p {
	case Day:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case Week:
		back := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-back, 0, 0, 0, 0, loc)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	}
	return t
}

func (p Period) next(start time.Time) time.Time {
	switch p {
	case Day:
		return start.AddDate(0, 0, 1)
	case Week:
		return start.AddDate(0, 0, 7)
	case Month:
		return start.AddDate(0, 1, 0)
	case Year:
		return start.AddDate(1, 0, 0)
	}
	return start
}

// Bucket is one value of a series: a raw sample or a calendar bucket sum.
type Bucket struct {
	Start time.Time
	Value float64
}

// Series is the time series of one entity.
type Series struct {
	EntityID string
	Unit     string
	Buckets  []Bucket
}

// Total sums every bucket of the series.
func (s Series) Total() float64 {
	var sum float64
	for _, b := range s.Buckets {
		sum += b.Value
	}
	return sum
}

// Resample groups m by entity and, unless p is Original, sums values per
// calendar bucket. Buckets run contiguously from the first to the last
// occupied bucket of each entity; empty ones carry 0.
func Resample(m Melted, p Period) []Series {
	byEntity := make(map[string][]Point, len(m.Entities))
	for _, pt := range m.Points {
		byEntity[pt.EntityID] = append(byEntity[pt.EntityID], pt)
	}
	out := make([]Series, 0, len(m.Entities))
	for _, id := range m.Entities {
		pts := byEntity[id]
		s := Series{EntityID: id}
		if len(pts) > 0 {
			s.Unit = pts[0].Unit
		}
		sort.SliceStable(pts, func(a, b int) bool { return pts[a].Time.Before(pts[b].Time) })
		if p == Original {
			for _, pt := range pts {
				s.Buckets = append(s.Buckets, Bucket{Start: pt.Time, Value: pt.Value})
			}
		} else {
			s.Buckets = bucketize(pts, p)
		}
		out = append(out, s)
	}
	return out
}

func bucketize(pts []Point, p Period) []Bucket {
	if len(pts) == 0 {
		return nil
	}
	sums := map[time.Time]float64{}
	first := p.Truncate(pts[0].Time)
	last := first
	for _, pt := range pts {
		start := p.Truncate(pt.Time)
		sums[start] += pt.Value
		if start.After(last) {
			last = start
		}
	}
	var out []Bucket
	for at := first; !at.After(last); at = p.next(at) {
		out = append(out, Bucket{Start: at, Value: sums[at]})
	}
	return out
}
