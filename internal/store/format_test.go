package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRowsNoRows(t *testing.T) {
	assert.Equal(t, "Query returned no results.", FormatRows(nil, nil, 10))
	assert.Equal(t, "Query returned no results.\nColumns: a | b", FormatRows([]string{"a", "b"}, nil, 10))
}

func TestFormatRows(t *testing.T) {
	ts := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	out := FormatRows([]string{"id", "name", "at"}, [][]any{
		{int64(1), "alpha", ts},
		{int64(2), []byte("beta"), nil},
	}, 0)

	assert.Equal(t, "Results (2 rows):\n"+
		"Columns: id | name | at\n"+
		"----------------------------------------\n"+
		"1 | alpha | 2026-10-18T12:00:00Z\n"+
		"2 | beta | NULL\n", out)
}

func TestFormatValueFloats(t *testing.T) {
	assert.Equal(t, "3", formatValue(float64(3)))
	assert.Equal(t, "3.25", formatValue(3.25))
	assert.Equal(t, "0.5", formatValue(float32(0.5)))
}
