package saver

import (
	"encoding/json"
	"math"
	"os"

	"ology/internal/model"
)

// JSONSaver writes rows as an indented JSON array.
// NaN counts (missing buckets) are written as 0 with kept=false.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(rows []model.TrendRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(finiteRows(rows)); err != nil {
		return err
	}
	return f.Close()
}

func finiteRows(rows []model.TrendRow) []model.TrendRow {
	out := rows
	copied := false
	for i, r := range rows {
		if math.IsNaN(r.Count) || math.IsInf(r.Count, 0) {
			if !copied {
				out = append([]model.TrendRow(nil), rows...)
				copied = true
			}
			out[i].Count = 0
			out[i].Kept = false
		}
	}
	return out
}
