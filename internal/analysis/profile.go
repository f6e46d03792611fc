// Package analysis profiles loaded datasets: column kinds, numeric and
// categorical summaries, entity domain counts and sample rows.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/entityloom/internal/coerce"
	"github.com/KaramelBytes/entityloom/internal/energy"
	"github.com/KaramelBytes/entityloom/internal/table"
)

// Options controls profiling behavior.
type Options struct {
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// TopValues caps the categorical values listed per column.
	TopValues int
	// GroupBy computes per-group summaries for the given column names.
	GroupBy []string
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for dataset profiling.
func DefaultOptions() Options {
	return Options{
		MaxRows:    100000,
		SampleRows: 5,
		TopValues:  8,
	}
}

// Column kinds.
const (
	KindNumeric     = "numeric"
	KindDatetime    = "datetime"
	KindCategorical = "categorical"
	KindText        = "text"
	KindEmpty       = "empty"
)

// Report is a markdown-friendly profile of a dataset.
type Report struct {
	Name      string
	Dialect   string
	Rows      int
	Processed int
	Cols      []ColumnSummary
	Domains   []DomainCount
	Energy    *EnergySummary
	Groups    []GroupResult
	Samples   [][]string
	Warnings  []string
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues    []CategoryCount
	ExampleTexts []string
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Key     string
	Size    int
	Metrics map[string]NumSummary
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// EnergySummary describes a wide energy export.
type EnergySummary struct {
	Entities   int
	TimeCols   int
	First      string
	Last       string
	Units      []string
	GrandTotal float64
}

type colAcc struct {
	nonNil int
	miss   int
	// numeric stats via Welford
	n      int
	mean   float64
	m2     float64
	min    float64
	max    float64
	numCnt int
	dtCnt  int
	txtCnt int
	vals   []float64
	cats   map[string]int
	exText []string
}

// Profile summarizes ds.
func Profile(ds *table.Dataset, opt Options) *Report {
	t := ds.Table
	rep := &Report{Name: ds.Name, Dialect: ds.Dialect.String(), Rows: t.Len()}
	cols := t.Columns()
	ncol := len(cols)
	if ncol == 0 {
		return rep
	}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	topN := opt.TopValues
	if topN <= 0 {
		topN = 8
	}

	accs := make([]*colAcc, ncol)
	for i := range accs {
		accs[i] = &colAcc{min: math.Inf(1), max: math.Inf(-1), cats: map[string]int{}}
	}
	var gbIdx []int
	for _, name := range opt.GroupBy {
		if j, ok := t.ColumnIndex(strings.ToLower(strings.TrimSpace(name))); ok {
			gbIdx = append(gbIdx, j)
		} else {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("group-by column %q not found", name))
		}
	}
	type gAcc struct {
		size int
		sum  map[int]float64
		cnt  map[int]int
		min  map[int]float64
		max  map[int]float64
	}
	groups := map[string]*gAcc{}

	for i := 0; i < t.Len() && rep.Processed < maxRows; i++ {
		rec := t.Row(i)
		rep.Processed++
		if len(rep.Samples) < sampleRows {
			rep.Samples = append(rep.Samples, rec)
		}
		var ga *gAcc
		if len(gbIdx) > 0 {
			parts := make([]string, 0, len(gbIdx))
			for _, j := range gbIdx {
				parts = append(parts, fmt.Sprintf("%s=%s", cols[j], strings.TrimSpace(rec[j])))
			}
			key := strings.Join(parts, ", ")
			ga = groups[key]
			if ga == nil {
				ga = &gAcc{sum: map[int]float64{}, cnt: map[int]int{}, min: map[int]float64{}, max: map[int]float64{}}
				groups[key] = ga
			}
			ga.size++
		}
		for j := 0; j < ncol; j++ {
			v := strings.TrimSpace(rec[j])
			c := accs[j]
			if v == "" {
				c.miss++
				continue
			}
			c.nonNil++
			if x, ok := parseNumeric(v); ok {
				c.numCnt++
				c.n++
				if x < c.min {
					c.min = x
				}
				if x > c.max {
					c.max = x
				}
				delta := x - c.mean
				c.mean += delta / float64(c.n)
				c.m2 += delta * (x - c.mean)
				if opt.Outliers {
					c.vals = append(c.vals, x)
				}
				if ga != nil {
					ga.sum[j] += x
					ga.cnt[j]++
					if m, ok := ga.min[j]; !ok || x < m {
						ga.min[j] = x
					}
					if m, ok := ga.max[j]; !ok || x > m {
						ga.max[j] = x
					}
				}
				continue
			}
			if _, ok := coerce.Timestamp(v); ok {
				c.dtCnt++
				continue
			}
			c.txtCnt++
			if len(c.cats) <= 10000 && len(v) <= 64 {
				c.cats[v]++
			}
			if len(c.exText) < 3 {
				c.exText = append(c.exText, v)
			}
		}
	}

	var numCols []int
	rep.Cols = make([]ColumnSummary, 0, ncol)
	for idx, c := range accs {
		s := ColumnSummary{Name: cols[idx], NonNull: c.nonNil, Missing: c.miss, Kind: KindEmpty}
		switch {
		case c.numCnt > 0 && c.numCnt >= c.dtCnt && c.numCnt >= c.txtCnt:
			s.Kind = KindNumeric
			s.Min, s.Max, s.Mean = c.min, c.max, c.mean
			if c.n > 1 {
				s.Std = math.Sqrt(c.m2 / float64(c.n-1))
			}
			numCols = append(numCols, idx)
			if opt.Outliers && len(c.vals) >= 8 {
				s.OutliersCount, s.OutliersMaxAbsZ, s.OutlierThreshold = outliers(c.vals, opt.OutlierThreshold)
			}
		case c.dtCnt > 0 && c.dtCnt >= c.txtCnt:
			s.Kind = KindDatetime
		case c.txtCnt > 0 && repeats(c.cats, c.txtCnt):
			s.Kind = KindCategorical
			s.TopValues, s.Unique = topValues(c.cats, topN)
		case c.txtCnt > 0:
			s.Kind = KindText
			s.ExampleTexts = c.exText
		}
		rep.Cols = append(rep.Cols, s)
	}
	if rep.Processed < rep.Rows {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", rep.Processed, rep.Rows))
	}

	if len(groups) > 0 {
		out := make([]GroupResult, 0, len(groups))
		for k, ga := range groups {
			gr := GroupResult{Key: k, Size: ga.size, Metrics: map[string]NumSummary{}}
			for _, idx := range numCols {
				if ga.cnt[idx] == 0 {
					continue
				}
				gr.Metrics[cols[idx]] = NumSummary{Count: ga.cnt[idx], Min: ga.min[idx], Max: ga.max[idx], Mean: ga.sum[idx] / float64(ga.cnt[idx])}
			}
			out = append(out, gr)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Size == out[j].Size {
				return out[i].Key < out[j].Key
			}
			return out[i].Size > out[j].Size
		})
		if len(out) > 20 {
			out = out[:20]
		}
		rep.Groups = out
	}

	if domains, err := DomainStats(t, ""); err == nil {
		rep.Domains = domains
	}
	rep.Energy = summarizeEnergy(t)
	return rep
}

// repeats treats a column as categorical when values recur.
func repeats(cats map[string]int, n int) bool {
	if len(cats) == 0 {
		return false
	}
	return len(cats) <= 20 || len(cats)*2 <= n
}

func topValues(cats map[string]int, n int) ([]CategoryCount, int) {
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	unique := len(tops)
	if len(tops) > n {
		tops = tops[:n]
	}
	return tops, unique
}

func outliers(vals []float64, thr float64) (int, float64, float64) {
	if thr <= 0 {
		thr = 3.5
	}
	median, mad := medianMAD(vals)
	var cnt int
	maxAbsZ := 0.0
	if mad > 0 {
		for _, v := range vals {
			az := math.Abs(0.6745 * (v - median) / mad)
			if az > thr {
				cnt++
			}
			if az > maxAbsZ {
				maxAbsZ = az
			}
		}
	}
	return cnt, maxAbsZ, thr
}

func summarizeEnergy(t *table.Table) *EnergySummary {
	ids, err := energy.Entities(t)
	if err != nil || len(ids) == 0 {
		return nil
	}
	m, err := energy.Melt(t, ids)
	if err != nil || m.Len() == 0 {
		return nil
	}
	s := &EnergySummary{Entities: len(m.Entities)}
	first, last := m.Points[0].Time, m.Points[0].Time
	times := map[int64]struct{}{}
	units := map[string]struct{}{}
	for _, p := range m.Points {
		s.GrandTotal += p.Value
		times[p.Time.UnixNano()] = struct{}{}
		if p.Time.Before(first) {
			first = p.Time
		}
		if p.Time.After(last) {
			last = p.Time
		}
		if p.Unit != "" {
			if _, ok := units[p.Unit]; !ok {
				units[p.Unit] = struct{}{}
				s.Units = append(s.Units, p.Unit)
			}
		}
	}
	s.TimeCols = len(times)
	s.First = first.Format("2006-01-02 15:04")
	s.Last = last.Format("2006-01-02 15:04")
	return s
}

// parseNumeric accepts plain numbers plus decimal-comma and grouped forms
// ("1.234,5", "1,234.5", "12,5 %") common in localized exports.
func parseNumeric(s string) (float64, bool) {
	if f, ok := coerce.Number(s); ok {
		return f, true
	}
	raw := strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\u00A0", " "))
	if raw == "" {
		return 0, false
	}
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	dec := '.'
	if cpos > dpos {
		dec = ','
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
