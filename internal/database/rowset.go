// Package database provides pgx-backed query execution over a connection
// pool, returning results as column-ordered row sets.
package database

// RowSet holds the result of a query as one shared ordered column list
// plus the records in that column order.
type RowSet struct {
	Columns []string `json:"columns"`
	Records [][]any  `json:"records"`
}

// Len returns the number of records
func (rs *RowSet) Len() int {
	if rs == nil {
		return 0
	}

	return len(rs.Records)
}

// Empty reports whether the result has no records
func (rs *RowSet) Empty() bool {
	return rs.Len() == 0
}

// ColumnIndex returns the position of the named column, or -1 when absent
func (rs *RowSet) ColumnIndex(name string) int {
	if rs == nil {
		return -1
	}

	for i, col := range rs.Columns {
		if col == name {
			return i
		}
	}

	return -1
}

// Value returns the value at the given record for the named column.
// The second return is false when the record or column does not exist.
func (rs *RowSet) Value(record int, column string) (any, bool) {
	idx := rs.ColumnIndex(column)
	if idx < 0 || record < 0 || record >= rs.Len() {
		return nil, false
	}

	row := rs.Records[record]
	if idx >= len(row) {
		return nil, false
	}

	return row[idx], true
}

// Maps converts the records into one map per row, keyed by column name.
// Intended for JSON responses where callers want named fields.
func (rs *RowSet) Maps() []map[string]any {
	if rs == nil {
		return nil
	}

	out := make([]map[string]any, 0, len(rs.Records))

	for _, row := range rs.Records {
		m := make(map[string]any, len(rs.Columns))

		for i, col := range rs.Columns {
			if i < len(row) {
				m[col] = row[i]
			}
		}

		out = append(out, m)
	}

	return out
}
