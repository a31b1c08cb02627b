package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataPoint_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Series{{X: 1262304000, Y: 12.5}, {X: 1262390400, Y: math.NaN()}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x":1262304000,"y":12.5},{"x":1262390400,"y":null}]`, string(b))
}

func TestDataPoint_DecodeRoundTrip(t *testing.T) {
	var p DataPoint
	require.NoError(t, json.Unmarshal([]byte(`{"x":3,"y":4}`), &p))
	assert.Equal(t, DataPoint{X: 3, Y: 4}, p)
}

func TestFitResult_At(t *testing.T) {
	f := FitResult{M: 2, B: 18.8}
	assert.InDelta(t, 24.8, f.At(3), 1e-12)
}
