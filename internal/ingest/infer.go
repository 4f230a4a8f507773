package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Chative-core-poc-v1/sheetsql/internal/store"
)

// ColumnType is the storage type inferred for a sheet column.
type ColumnType string

const (
	ColumnInteger ColumnType = "INTEGER"
	ColumnReal    ColumnType = "REAL"
	ColumnText    ColumnType = "TEXT"
)

var integerPattern = regexp.MustCompile(`^-?[0-9]+$`)

// InferColumnTypes picks a type per column from its non-empty values:
// INTEGER when every value is a whole number, REAL when every value parses
// as a float, TEXT otherwise. A column without values is TEXT.
func InferColumnTypes(rows []Row, columns []string) []ColumnType {
	types := make([]ColumnType, len(columns))
	for i, col := range columns {
		isInteger, isReal, seen := true, true, false
		for _, row := range rows {
			v, _ := row.Get(col)
			if v == "" {
				continue
			}
			seen = true
			if isInteger && !integerPattern.MatchString(v) {
				isInteger = false
			}
			if isReal && !isInteger {
				if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
					isReal = false
				}
			}
			if !isInteger && !isReal {
				break
			}
		}
		switch {
		case !seen:
			types[i] = ColumnText
		case isInteger:
			types[i] = ColumnInteger
		case isReal:
			types[i] = ColumnReal
		default:
			types[i] = ColumnText
		}
	}
	return types
}

// sqlType maps an inferred type to the dialect's column type.
func (t ColumnType) sqlType(d store.Dialect) string {
	if d == store.DialectSQLite {
		return string(t)
	}
	switch t {
	case ColumnInteger:
		return "BIGINT"
	case ColumnReal:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

// convert turns cell text into the Go value bound for insertion. Empty
// cells become NULL.
func (t ColumnType) convert(v string) any {
	if v == "" {
		return nil
	}
	switch t {
	case ColumnInteger:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case ColumnReal:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return v
}
