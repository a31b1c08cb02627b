package trend

import (
	"fmt"

	"ology/internal/model"
)

// BuildTrendSeries returns one point per point of s with y replaced by the
// fitted value. Pass the unfiltered series so the line spans the full x range.
func BuildTrendSeries(s model.Series, f model.FitResult) model.Series {
	out := make(model.Series, len(s))
	for i, p := range s {
		out[i] = model.DataPoint{X: p.X, Y: f.At(p.X)}
	}
	return out
}

// Analysis is the result of running the whole pipeline over one series.
type Analysis struct {
	Threshold float64
	Filtered  model.Series
	Fit       model.FitResult
	Trend     model.Series
}

// Analyze filters s, fits the surviving points and builds the trend series
// over the original x values.
func Analyze(s model.Series) (Analysis, error) {
	threshold, err := Threshold(s)
	if err != nil {
		return Analysis{}, err
	}
	filtered := FilterAbove(s, threshold)
	fit, err := FitSeries(filtered)
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze %d points (%d kept): %w", len(s), len(filtered), err)
	}
	return Analysis{
		Threshold: threshold,
		Filtered:  filtered,
		Fit:       fit,
		Trend:     BuildTrendSeries(s, fit),
	}, nil
}

// Rows pairs every original point with its fitted value for persistence.
func (a Analysis) Rows(s model.Series) []model.TrendRow {
	rows := make([]model.TrendRow, len(s))
	for i, p := range s {
		rows[i] = model.TrendRow{
			Timestamp: int64(p.X),
			Count:     p.Y,
			Trend:     a.Fit.At(p.X),
			Kept:      p.Y > a.Threshold,
		}
	}
	return rows
}
