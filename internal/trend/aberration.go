package trend

import (
	"fmt"
	"math"

	"ology/internal/model"
)

// aberrationDivisor: a point is noise when its count is below 1% of the series mean.
const aberrationDivisor = 100

// Threshold returns mean(y)/100 over the unfiltered series.
// NaN counts are left out of the mean.
func Threshold(s model.Series) (float64, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("threshold: %w", ErrEmptyInput)
	}
	var sum float64
	var n int
	for _, p := range s {
		if math.IsNaN(p.Y) {
			continue
		}
		sum += p.Y
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("threshold: no valid counts in %d points: %w", len(s), ErrEmptyInput)
	}
	return sum / float64(n) / aberrationDivisor, nil
}

// FilterAbove keeps points with y strictly greater than threshold, in order.
func FilterAbove(s model.Series, threshold float64) model.Series {
	out := make(model.Series, 0, len(s))
	for _, p := range s {
		if p.Y > threshold {
			out = append(out, p)
		}
	}
	return out
}

// Filter drops aberrant points: those whose count is not above 1% of the mean
// count of s. The threshold is computed once from s.
func Filter(s model.Series) (model.Series, error) {
	t, err := Threshold(s)
	if err != nil {
		return nil, err
	}
	return FilterAbove(s, t), nil
}
