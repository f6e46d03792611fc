package chart

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/entityloom/internal/energy"
	"github.com/KaramelBytes/entityloom/internal/utils"
)

// Result describes one rendered chart.
type Result struct {
	Path      string
	Requested energy.Kind
	Drawn     energy.Kind
	Summary   string
}

// Batch renders a list of charts into a directory, one chart per Step so
// an event loop can interleave rendering with input handling.
type Batch struct {
	dir     string
	charts  []energy.Chart
	kind    energy.Kind
	opt     Options
	next    int
	results []Result
}

// NewBatch prepares charts for rendering into dir.
func NewBatch(dir string, charts []energy.Chart, kind energy.Kind, opt Options) *Batch {
	return &Batch{dir: dir, charts: charts, kind: kind, opt: opt}
}

// Done reports whether every chart has been rendered.
func (b *Batch) Done() bool { return b.next >= len(b.charts) }

// Total returns the number of charts in the batch.
func (b *Batch) Total() int { return len(b.charts) }

// Progress is the rendered fraction in [0,1]. An empty batch is complete.
func (b *Batch) Progress() float64 {
	if len(b.charts) == 0 {
		return 1
	}
	return float64(b.next) / float64(len(b.charts))
}

// Results lists the charts rendered so far.
func (b *Batch) Results() []Result { return b.results }

// Step renders the next chart. It is a no-op once the batch is done. A
// failed chart is skipped so the remaining ones still render.
func (b *Batch) Step() (Result, error) {
	if b.Done() {
		return Result{}, nil
	}
	i := b.next
	b.next++
	if i == 0 {
		if err := utils.EnsureDir(b.dir); err != nil {
			b.next = len(b.charts)
			return Result{}, fmt.Errorf("create chart dir: %w", err)
		}
	}
	c := b.charts[i]
	var buf bytes.Buffer
	drawn, err := Render(&buf, c, b.kind, b.opt)
	if err != nil {
		return Result{}, err
	}
	name := fmt.Sprintf("%02d-%s.png", i+1, utils.SafeFileName(c.Title, "chart"))
	path := filepath.Join(b.dir, name)
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", path, err)
	}
	res := Result{Path: path, Requested: b.kind, Drawn: drawn, Summary: c.Summary()}
	b.results = append(b.results, res)
	return res, nil
}
