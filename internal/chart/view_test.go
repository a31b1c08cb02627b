package chart

import (
	"testing"

	"ology/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = model.Series{{X: 1, Y: 5}, {X: 2, Y: 7}, {X: 3, Y: 9}}

func TestView_InitialStateIsBar(t *testing.T) {
	var v View
	assert.False(t, v.TrendEnabled())

	c := v.Render("example.org", sample)
	assert.Equal(t, RendererBar, c.Renderer)
	require.Len(t, c.Series, 1)
	assert.Equal(t, NamedSeries{Name: "example.org", Renderer: RendererBar, Data: sample}, c.Series[0])
	assert.Nil(t, c.Fit)
	assert.Empty(t, c.Error)
}

func TestView_Toggle(t *testing.T) {
	v := NewView(false)
	assert.True(t, v.Toggle())
	assert.True(t, v.TrendEnabled())
	assert.False(t, v.Toggle())
	v.SetTrend(true)
	assert.True(t, v.TrendEnabled())
}

func TestView_TrendOverlay(t *testing.T) {
	v := NewView(true)
	c := v.Render("example.org", sample)

	assert.Equal(t, RendererMulti, c.Renderer)
	require.Len(t, c.Series, 2)
	assert.Equal(t, RendererScatter, c.Series[0].Renderer)
	assert.Equal(t, sample, c.Series[0].Data)
	assert.Equal(t, "example.org trend", c.Series[1].Name)
	assert.Equal(t, RendererLine, c.Series[1].Renderer)
	require.Len(t, c.Series[1].Data, len(sample))

	require.NotNil(t, c.Fit)
	assert.InDelta(t, 2, c.Fit.M, 1e-9)
	assert.InDelta(t, 3, c.Fit.B, 1e-9)
	assert.InDelta(t, 1, c.Fit.R, 1e-9)
}

func TestView_FallsBackWhenFitFails(t *testing.T) {
	v := NewView(true)

	c := v.Render("empty", nil)
	assert.Equal(t, RendererBar, c.Renderer)
	assert.Contains(t, c.Error, "empty input")

	c = v.Render("flat", model.Series{{X: 4, Y: 1}, {X: 4, Y: 2}})
	assert.Equal(t, RendererBar, c.Renderer)
	assert.Contains(t, c.Error, "degenerate fit")
	assert.Nil(t, c.Fit)

	// Rendering does not change the flag.
	assert.True(t, v.TrendEnabled())
}

func TestView_RenderChecked(t *testing.T) {
	v := NewView(true)
	_, err := v.RenderChecked("one", model.Series{{X: 1, Y: 1}})
	require.Error(t, err)

	c, err := v.RenderChecked("ok", sample)
	require.NoError(t, err)
	assert.Equal(t, RendererMulti, c.Renderer)

	v.Toggle()
	c, err = v.RenderChecked("one", model.Series{{X: 1, Y: 1}})
	require.NoError(t, err)
	assert.Equal(t, RendererBar, c.Renderer)
}

func TestView_RenderAnalyzed(t *testing.T) {
	c, a, err := NewView(true).RenderAnalyzed("example.org", sample)
	require.NoError(t, err)
	require.NotNil(t, a)
	require.NotNil(t, c.Fit)
	assert.Equal(t, a.Fit, *c.Fit)
	assert.Equal(t, a.Trend, c.Series[1].Data)

	_, a, err = NewView(false).RenderAnalyzed("example.org", sample)
	require.NoError(t, err)
	assert.Nil(t, a)

	c, a, err = NewView(true).RenderAnalyzed("example.org", sample[:1])
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Equal(t, RendererBar, c.Renderer)
}
