// Package chart decides which series and renderer names are handed to the
// charting widget for one dataset.
package chart

import (
	"log/slog"

	"ology/internal/model"
	"ology/internal/trend"
)

// Renderer selectors understood by the charting widget.
const (
	RendererBar     = "bar"
	RendererMulti   = "multi"
	RendererScatter = "scatterplot"
	RendererLine    = "line"
)

const trendSuffix = " trend"

// NamedSeries is one series of a chart with its own renderer.
type NamedSeries struct {
	Name     string       `json:"name"`
	Renderer string       `json:"renderer"`
	Data     model.Series `json:"data"`
}

// Chart is the payload for the charting widget.
type Chart struct {
	Renderer string           `json:"renderer"`
	Series   []NamedSeries    `json:"series"`
	Fit      *model.FitResult `json:"fit,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// View holds the trend display flag. The zero value shows the bar chart.
type View struct {
	trend bool
}

// NewView returns a view whose trend overlay is set to on.
func NewView(on bool) *View {
	return &View{trend: on}
}

// Toggle flips the trend overlay and returns the new state.
func (v *View) Toggle() bool {
	v.trend = !v.trend
	return v.trend
}

// SetTrend sets the trend overlay.
func (v *View) SetTrend(on bool) {
	v.trend = on
}

// TrendEnabled reports whether the trend overlay is on.
func (v *View) TrendEnabled() bool {
	return v.trend
}

// Render builds the chart for s. With the overlay on, s is drawn as a scatter
// plot under its fitted line; when no line can be fitted the bar chart is
// returned with the reason attached.
func (v *View) Render(name string, s model.Series) Chart {
	c, _ := v.RenderChecked(name, s)
	return c
}

// RenderChecked is Render that also returns the analysis error behind a fallback.
func (v *View) RenderChecked(name string, s model.Series) (Chart, error) {
	c, _, err := v.RenderAnalyzed(name, s)
	return c, err
}

// RenderAnalyzed is RenderChecked that also hands back the analysis behind the
// overlay. The analysis is nil when the overlay is off or could not be fitted.
func (v *View) RenderAnalyzed(name string, s model.Series) (Chart, *trend.Analysis, error) {
	if !v.trend {
		return barChart(name, s), nil, nil
	}
	a, err := trend.Analyze(s)
	if err != nil {
		slog.Debug("trend overlay unavailable, falling back to bar", "series", name, "points", len(s), "error", err)
		c := barChart(name, s)
		c.Error = err.Error()
		return c, nil, err
	}
	fit := a.Fit
	return Chart{
		Renderer: RendererMulti,
		Series: []NamedSeries{
			{Name: name, Renderer: RendererScatter, Data: s},
			{Name: name + trendSuffix, Renderer: RendererLine, Data: a.Trend},
		},
		Fit: &fit,
	}, &a, nil
}

func barChart(name string, s model.Series) Chart {
	return Chart{
		Renderer: RendererBar,
		Series:   []NamedSeries{{Name: name, Renderer: RendererBar, Data: s}},
	}
}
