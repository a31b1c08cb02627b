package saver

import (
	"strings"

	"ology/internal/model"
)

// PacketSaver persists the analyzed rows of one domain and date range.
// The crawl only depends on this interface; main picks the implementation.
type PacketSaver interface {
	Save(rows []model.TrendRow, path string) error
	Extension() string
}

// Formats lists the accepted SAVE_FORMAT values.
const Formats = "csv, parquet, json"

// NewPacketSaver creates implementation by format (csv, parquet, json).
// Returns nil if format not supported.
func NewPacketSaver(format string) PacketSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}
