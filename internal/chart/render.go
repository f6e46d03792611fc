// Package chart draws energy charts to PNG.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/entityloom/internal/energy"
)

// Options controls the canvas size.
type Options struct {
	Width  int
	Height int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 1024
	}
	if h <= 0 {
		h = 480
	}
	return w, h
}

// ErrNoData is returned for charts without any buckets.
var ErrNoData = errors.New("chart has no data points")

// Render writes c as PNG. A bar request on a chart that is not eligible for
// bars is drawn as lines; the kind actually drawn is returned.
func Render(w io.Writer, c energy.Chart, kind energy.Kind, opt Options) (energy.Kind, error) {
	if !hasData(c) {
		return kind, ErrNoData
	}
	eff := c.Effective(kind)
	var err error
	if eff == energy.KindBar {
		err = renderBars(w, c, opt)
	} else {
		err = renderLines(w, c, opt)
	}
	if err != nil {
		return eff, fmt.Errorf("render %s chart %q: %w", eff, c.Title, err)
	}
	return eff, nil
}

func hasData(c energy.Chart) bool {
	for _, s := range c.Series {
		if len(s.Buckets) > 0 {
			return true
		}
	}
	return false
}

func valueRange(c energy.Chart) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, s := range c.Series {
		for _, b := range s.Buckets {
			lo = math.Min(lo, b.Value)
			hi = math.Max(hi, b.Value)
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

func labelLayout(p energy.Period) string {
	switch p {
	case energy.Year:
		return "2006"
	case energy.Month:
		return "2006-01"
	case energy.Week, energy.Day:
		return "2006-01-02"
	}
	return "01-02 15:04"
}

func title(c energy.Chart) string {
	return c.Title + "  " + c.Summary()
}

// renderBars draws one bar per bucket. Combined charts group the entities
// of a bucket side by side, coloured per entity.
func renderBars(w io.Writer, c energy.Chart, opt Options) error {
	width, height := opt.size()
	layout := labelLayout(c.Period)
	var bars []gochart.Value
	n := 0
	for _, s := range c.Series {
		n = max(n, len(s.Buckets))
	}
	for i := 0; i < n; i++ {
		for si, s := range c.Series {
			if i >= len(s.Buckets) {
				continue
			}
			b := s.Buckets[i]
			label := ""
			if si == 0 || !c.Combined {
				label = b.Start.Format(layout)
			}
			col := gochart.GetDefaultColor(si)
			bars = append(bars, gochart.Value{
				Value: b.Value,
				Label: label,
				Style: gochart.Style{FillColor: col, StrokeColor: col},
			})
		}
	}
	barWidth := max(2, (width-120)/max(1, len(bars))-4)
	bc := gochart.BarChart{
		Title:      title(c),
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: 4,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis:      gochart.YAxis{Name: c.Unit, Range: valueRange(c)},
		Bars:       bars,
	}
	return bc.Render(gochart.PNG, w)
}

func renderLines(w io.Writer, c energy.Chart, opt Options) error {
	width, height := opt.size()
	var series []gochart.Series
	for i, s := range c.Series {
		if len(s.Buckets) == 0 {
			continue
		}
		xs := make([]time.Time, 0, len(s.Buckets)+1)
		ys := make([]float64, 0, len(s.Buckets)+1)
		for _, b := range s.Buckets {
			xs = append(xs, b.Start)
			ys = append(ys, b.Value)
		}
		// a single point has no x range; repeat it an hour later
		if len(xs) == 1 {
			xs = append(xs, xs[0].Add(time.Hour))
			ys = append(ys, ys[0])
		}
		col := gochart.GetDefaultColor(i)
		series = append(series, gochart.TimeSeries{
			Name:    s.EntityID,
			XValues: xs,
			YValues: ys,
			Style:   gochart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 2},
		})
	}
	ch := gochart.Chart{
		Title:      title(c),
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: "Time", ValueFormatter: gochart.TimeValueFormatterWithFormat(labelLayout(c.Period))},
		YAxis:      gochart.YAxis{Name: c.Unit, Range: valueRange(c)},
		Series:     series,
	}
	if len(series) > 1 {
		ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	}
	return ch.Render(gochart.PNG, w)
}
