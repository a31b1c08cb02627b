package saver

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ology/internal/model"
)

var rows = []model.TrendRow{
	{Timestamp: 1356998400, Count: 12, Trend: 11.5, Kept: true},
	{Timestamp: 1357084800, Count: 0, Trend: 12.25, Kept: false},
	{Timestamp: 1357171200, Count: 14, Trend: 13, Kept: true},
}

func TestNewPacketSaver(t *testing.T) {
	assert.Equal(t, "csv", NewPacketSaver("CSV").Extension())
	assert.Equal(t, "json", NewPacketSaver(" json ").Extension())
	assert.Equal(t, "parquet", NewPacketSaver("parquet").Extension())
	assert.Nil(t, NewPacketSaver("xml"))
}

func TestCSVSaver(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.csv")
	require.NoError(t, CSVSaver{}.Save(rows, p))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "x,y,trend,kept", lines[0])
	assert.Equal(t, "1357084800,0,12.25,false", lines[2])
}

func TestJSONSaver_ReplacesNaN(t *testing.T) {
	in := append([]model.TrendRow(nil), rows...)
	in[0].Count = math.NaN()
	p := filepath.Join(t.TempDir(), "a.json")
	require.NoError(t, JSONSaver{}.Save(in, p))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	var got []model.TrendRow
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 3)
	assert.Equal(t, 0.0, got[0].Count)
	assert.False(t, got[0].Kept)
	assert.Equal(t, rows[2], got[2])

	// Caller's slice is untouched.
	assert.True(t, math.IsNaN(in[0].Count))
}

func TestParquetSaver(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.parquet")
	require.NoError(t, ParquetSaver{}.Save(rows, p))

	got, err := parquet.ReadFile[model.TrendRow](p)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}
