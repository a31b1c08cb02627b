package saver

import (
	"github.com/parquet-go/parquet-go"

	"ology/internal/model"
)

// ParquetSaver writes rows as a Parquet file.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(rows []model.TrendRow, path string) error {
	return parquet.WriteFile(path, rows)
}
