package ingest

// Sheet is one tab of the spreadsheet as delivered by the export endpoint.
type Sheet struct {
	Name string
	Rows []Row
}

// Row keeps the key order of the exported JSON object. Values are the
// textual form of each cell; JSON null becomes the empty string.
type Row struct {
	Keys   []string
	Values map[string]string
}

// NewRow builds a row from alternating column/value pairs.
func NewRow(pairs ...string) Row {
	r := Row{Values: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.set(pairs[i], pairs[i+1])
	}
	return r
}

func (r *Row) set(key, value string) {
	if r.Values == nil {
		r.Values = make(map[string]string)
	}
	if _, ok := r.Values[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Values[key] = value
}

// Get returns the cell for column and whether the row carries it at all.
func (r Row) Get(column string) (string, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// Columns are the first row's keys with empty header names dropped.
func (s Sheet) Columns() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(s.Rows[0].Keys))
	for _, k := range s.Rows[0].Keys {
		if k != "" {
			cols = append(cols, k)
		}
	}
	return cols
}
