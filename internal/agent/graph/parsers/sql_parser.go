package parsers

import "strings"

// ExtractSQL strips markdown code fences the model may wrap its answer in.
// Everything else, including trailing semicolons, is left to the database.
func ExtractSQL(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```sql", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
