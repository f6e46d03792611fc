package chart

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/entityloom/internal/energy"
)

var pngMagic = []byte("\x89PNG")

func melted(days int, ids ...string) energy.Melted {
	m := energy.Melted{Entities: ids}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range ids {
		for d := 0; d < days; d++ {
			m.Points = append(m.Points, energy.Point{
				EntityID: id,
				Unit:     "kWh",
				Time:     start.AddDate(0, 0, d),
				Value:    float64(d%5 + 1),
			})
		}
	}
	return m
}

func TestRenderBarAndLine(t *testing.T) {
	c := energy.Build(melted(20, "sensor.a"), energy.Day, false, energy.DefaultThresholds())
	var buf bytes.Buffer
	kind, err := Render(&buf, c, energy.KindBar, Options{Width: 640, Height: 320})
	require.NoError(t, err)
	assert.Equal(t, energy.KindBar, kind)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	buf.Reset()
	kind, err = Render(&buf, c, energy.KindLine, Options{})
	require.NoError(t, err)
	assert.Equal(t, energy.KindLine, kind)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderFallsBackToLine(t *testing.T) {
	c := energy.Build(melted(120, "sensor.a"), energy.Day, false, energy.DefaultThresholds())
	require.False(t, c.BarEligible)
	var buf bytes.Buffer
	kind, err := Render(&buf, c, energy.KindBar, Options{})
	require.NoError(t, err)
	assert.Equal(t, energy.KindLine, kind)
}

func TestRenderCombinedBars(t *testing.T) {
	c := energy.Build(melted(10, "a", "b", "c"), energy.Day, true, energy.DefaultThresholds())
	var buf bytes.Buffer
	kind, err := Render(&buf, c, energy.KindBar, Options{})
	require.NoError(t, err)
	assert.Equal(t, energy.KindBar, kind)
}

func TestRenderSinglePointAndEmpty(t *testing.T) {
	c := energy.Build(melted(1, "a"), energy.Original, false, energy.DefaultThresholds())
	var buf bytes.Buffer
	_, err := Render(&buf, c, energy.KindLine, Options{})
	require.NoError(t, err)

	_, err = Render(&buf, energy.Chart{}, energy.KindLine, Options{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestBatchStepsAndProgress(t *testing.T) {
	dir := t.TempDir()
	charts := energy.PerEntity(melted(5, "sensor.a", "sensor.b"), energy.Day, energy.DefaultThresholds())
	b := NewBatch(dir, charts, energy.KindBar, Options{Width: 400, Height: 240})
	assert.Equal(t, 0.0, b.Progress())

	res, err := b.Step()
	require.NoError(t, err)
	assert.Equal(t, 0.5, b.Progress())
	assert.False(t, b.Done())
	_, err = os.Stat(res.Path)
	require.NoError(t, err)
	assert.Contains(t, res.Path, "01-sensor-a-day.png")

	_, err = b.Step()
	require.NoError(t, err)
	assert.True(t, b.Done())
	assert.Equal(t, 1.0, b.Progress())
	assert.Len(t, b.Results(), 2)

	res, err = b.Step()
	require.NoError(t, err)
	assert.Empty(t, res.Path)
}

func TestEmptyBatchIsComplete(t *testing.T) {
	b := NewBatch(t.TempDir(), nil, energy.KindLine, Options{})
	assert.True(t, b.Done())
	assert.Equal(t, 1.0, b.Progress())
}
