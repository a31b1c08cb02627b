package trend

import (
	"errors"
	"math"
	"testing"

	"ology/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(ys ...float64) model.Series {
	s := make(model.Series, len(ys))
	for i, y := range ys {
		s[i] = model.DataPoint{X: float64(i + 1), Y: y}
	}
	return s
}

func TestFilter_Empty(t *testing.T) {
	_, err := Filter(nil)
	require.True(t, errors.Is(err, ErrEmptyInput))

	_, err = Filter(model.Series{})
	require.ErrorIs(t, err, ErrEmptyInput)

	_, err = Filter(series(math.NaN(), math.NaN()))
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestFilter_DropsNearZeroOutlier(t *testing.T) {
	s := series(100, 0.001, 120, 110)

	threshold, err := Threshold(s)
	require.NoError(t, err)
	assert.InDelta(t, 0.8250025, threshold, 1e-12)

	got, err := Filter(s)
	require.NoError(t, err)
	assert.Equal(t, model.Series{{X: 1, Y: 100}, {X: 3, Y: 120}, {X: 4, Y: 110}}, got)
}

func TestFilter_KeepsEverythingAboveThreshold(t *testing.T) {
	s := series(2, 4, 100, 8, 10)
	got, err := Filter(s)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestFilter_StrictGreaterThan(t *testing.T) {
	// mean = 100, threshold = 1: the point sitting exactly on it goes away.
	s := series(1, 199, 100)
	got, err := Filter(s)
	require.NoError(t, err)
	assert.Equal(t, model.Series{{X: 2, Y: 199}, {X: 3, Y: 100}}, got)
}

func TestFilter_OrderedSubsequence(t *testing.T) {
	s := series(5, 0, 9, 0.01, 7, 3, 0, 12)
	got, err := Filter(s)
	require.NoError(t, err)

	j := 0
	for _, p := range got {
		for j < len(s) && s[j] != p {
			j++
		}
		require.Less(t, j, len(s), "point %v not found in order", p)
		j++
	}
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].X, got[i].X)
	}
}

func TestFilter_RefilterWithOriginalThreshold(t *testing.T) {
	s := series(100, 0.001, 120, 110, 0.5, 90)
	threshold, err := Threshold(s)
	require.NoError(t, err)

	once := FilterAbove(s, threshold)
	twice := FilterAbove(once, threshold)
	assert.Equal(t, once, twice)

	// A fresh threshold over the filtered output is a different policy.
	fresh, err := Threshold(once)
	require.NoError(t, err)
	assert.NotEqual(t, threshold, fresh)
}

func TestFilter_NaNCountsSkipped(t *testing.T) {
	s := series(10, math.NaN(), 30)
	threshold, err := Threshold(s)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, threshold, 1e-12)

	got := FilterAbove(s, threshold)
	assert.Equal(t, model.Series{{X: 1, Y: 10}, {X: 3, Y: 30}}, got)
}
