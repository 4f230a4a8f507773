package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const noResults = "Query returned no results."

// FormatRows renders a result set as the text payload handed to the model.
// Rows beyond maxRows are summarised in a trailer.
func FormatRows(columns []string, rows [][]any, maxRows int) string {
	if len(rows) == 0 {
		if len(columns) == 0 {
			return noResults
		}
		return noResults + "\nColumns: " + strings.Join(columns, " | ")
	}
	if maxRows <= 0 {
		maxRows = len(rows)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Results (%d rows):\n", len(rows)))
	sb.WriteString("Columns: " + strings.Join(columns, " | ") + "\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")

	shown := min(maxRows, len(rows))
	for i := range shown {
		values := make([]string, len(rows[i]))
		for j, v := range rows[i] {
			values[j] = formatValue(v)
		}
		sb.WriteString(strings.Join(values, " | ") + "\n")
	}

	if len(rows) > shown {
		sb.WriteString(fmt.Sprintf("... and %d more rows\n", len(rows)-shown))
	}

	return sb.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
