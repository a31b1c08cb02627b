package ologyapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"ology/internal/model"
)

const dateLayout = "2006-01-02"

// HistoryResponse is the day-bucketed history of one domain.
type HistoryResponse struct {
	Result struct {
		Count FlexibleFloat64 `json:"count"`
		Days  []DayCount      `json:"days"`
	} `json:"result"`
}

// DayCount is one day bucket of a history response.
type DayCount struct {
	Date  string          `json:"date"`
	Count FlexibleFloat64 `json:"count"`
}

// ToSeries maps day buckets to (UTC midnight epoch seconds, count) points sorted by date.
func (r HistoryResponse) ToSeries() (model.Series, error) {
	s := make(model.Series, 0, len(r.Result.Days))
	for _, d := range r.Result.Days {
		day, err := time.ParseInLocation(dateLayout, d.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", d.Date, err)
		}
		s = append(s, model.DataPoint{X: float64(day.Unix()), Y: d.Count.Float64()})
	}
	sort.SliceStable(s, func(i, j int) bool { return s[i].X < s[j].X })
	return s, nil
}

// TopDomainRaw is a top-domains entry with a loosely typed count.
type TopDomainRaw struct {
	Domain string        `json:"domain"`
	Count  FlexibleInt64 `json:"count"`
}

// ToTopDomain converts TopDomainRaw to model.TopDomain
func (t TopDomainRaw) ToTopDomain() model.TopDomain {
	return model.TopDomain{Domain: t.Domain, Count: t.Count.Int64()}
}

// FlexibleFloat64 parses a number, a numeric string or null. Null becomes NaN
// so the bucket is skipped by the fit instead of counting as zero.
type FlexibleFloat64 float64

// UnmarshalJSON parses number, string or null
func (f *FlexibleFloat64) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = FlexibleFloat64(math.NaN())
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		val, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("parse count %q: %w", str, err)
		}
		*f = FlexibleFloat64(val)
		return nil
	}
	var floatVal float64
	if err := json.Unmarshal(data, &floatVal); err != nil {
		return fmt.Errorf("cannot parse as float64: %s", string(data))
	}
	*f = FlexibleFloat64(floatVal)
	return nil
}

// Float64 returns float64 value
func (f FlexibleFloat64) Float64() float64 {
	return float64(f)
}

// FlexibleInt64 parses int or float (scientific notation) to int64
type FlexibleInt64 int64

// UnmarshalJSON parses int or float. Null is zero.
func (f *FlexibleInt64) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = 0
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		val, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*f = FlexibleInt64(int64(val))
		return nil
	}

	var floatVal float64
	if err := json.Unmarshal(data, &floatVal); err == nil {
		*f = FlexibleInt64(int64(floatVal))
		return nil
	}

	return fmt.Errorf("cannot parse as int64: %s", string(data))
}

// Int64 returns int64 value
func (f FlexibleInt64) Int64() int64 {
	return int64(f)
}
