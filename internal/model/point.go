package model

import (
	"math"
	"strconv"
)

// DataPoint is one observation of a time series.
// X is a Unix timestamp in seconds, Y the count observed for that bucket.
type DataPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MarshalJSON writes a missing count (NaN or Inf) as null so chart payloads
// show a gap instead of failing to encode.
func (p DataPoint) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 48)
	buf = append(buf, `{"x":`...)
	buf = appendNumber(buf, p.X)
	buf = append(buf, `,"y":`...)
	buf = appendNumber(buf, p.Y)
	return append(buf, '}'), nil
}

func appendNumber(buf []byte, v float64) []byte {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return append(buf, "null"...)
	}
	return strconv.AppendFloat(buf, v, 'f', -1, 64)
}

// Series is ordered by X ascending. Producers sort; consumers never re-sort.
type Series []DataPoint

// Xs returns the x values in order.
func (s Series) Xs() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.X
	}
	return out
}

// Ys returns the y values in order.
func (s Series) Ys() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Y
	}
	return out
}

// FitResult is the Pearson correlation and least-squares line y = M*x + B.
type FitResult struct {
	R float64 `json:"r"`
	M float64 `json:"m"`
	B float64 `json:"b"`
}

// At returns the fitted value at x.
func (f FitResult) At(x float64) float64 {
	return f.M*x + f.B
}

// TrendRow is one persisted point: the raw count, the fitted value at the same
// timestamp and whether the point survived the aberration filter.
// Shared by saver and serialization (json, csv, parquet).
type TrendRow struct {
	Timestamp int64   `json:"x" parquet:"x"` // Unix timestamp in seconds
	Count     float64 `json:"y" parquet:"y"`
	Trend     float64 `json:"trend" parquet:"trend,optional"`
	Kept      bool    `json:"kept" parquet:"kept"`
}

// TopDomain is one entry of the top-domains listing.
type TopDomain struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}
