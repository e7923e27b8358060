// Package table provides the in-memory result-table abstraction shared by
// the validator and the chart classifier: named columns with inferred kinds
// over an ordered set of rows.
package table

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the inferred value type of a column.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindTime
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindTime:
		return "time"
	case KindBool:
		return "bool"
	default:
		return "text"
	}
}

// Column is a named, typed result column.
type Column struct {
	Name string
	Kind Kind
}

// Table is an ordered set of columns plus row-major values. A nil cell is a
// missing value. Tables are not safe for concurrent mutation; consumers that
// need to reorder rows must work on a Clone.
type Table struct {
	Columns []Column
	Rows    [][]any
}

// New builds a table from column names and row values, inferring each
// column's kind from its first non-nil value.
func New(names []string, rows [][]any) *Table {
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name, Kind: inferKind(rows, i)}
	}
	return &Table{Columns: cols, Rows: rows}
}

func inferKind(rows [][]any, col int) Kind {
	for _, row := range rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		switch row[col].(type) {
		case int, int32, int64, float32, float64:
			return KindNumeric
		case time.Time:
			return KindTime
		case bool:
			return KindBool
		default:
			return KindText
		}
	}
	return KindText
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.Rows) == 0 }

// ColumnNames returns the ordered column names.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at (row, col), nil when out of range.
func (t *Table) Value(row, col int) any {
	if row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][col]
}

// NullFraction returns the fraction of missing values in a column.
func (t *Table) NullFraction(col int) float64 {
	if len(t.Rows) == 0 {
		return 0
	}
	nulls := 0
	for _, row := range t.Rows {
		if col >= len(row) || row[col] == nil {
			nulls++
		}
	}
	return float64(nulls) / float64(len(t.Rows))
}

// Floats returns the non-missing values of a column converted to float64.
// Non-numeric cells are skipped.
func (t *Table) Floats(col int) []float64 {
	out := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		if f, ok := toFloat(row[col]); ok {
			out = append(out, f)
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// DistinctCount returns the number of distinct non-missing values in a column.
func (t *Table) DistinctCount(col int) int {
	seen := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		seen[fmt.Sprint(row[col])] = struct{}{}
	}
	return len(seen)
}

// HasDuplicates reports whether a column contains any repeated non-missing
// value, along with the duplicate count.
func (t *Table) HasDuplicates(col int) (bool, int) {
	seen := make(map[string]struct{}, len(t.Rows))
	dups := 0
	for _, row := range t.Rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		key := fmt.Sprint(row[col])
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups > 0, dups
}

// Sample returns up to n non-missing values of a column rendered as strings.
func (t *Table) Sample(col, n int) []string {
	out := make([]string, 0, n)
	for _, row := range t.Rows {
		if len(out) >= n {
			break
		}
		if col >= len(row) || row[col] == nil {
			continue
		}
		out = append(out, fmt.Sprint(row[col]))
	}
	return out
}

// Clone returns a deep copy of the table. Callers that sort or rewrite cells
// must clone first so the original row order is preserved.
func (t *Table) Clone() *Table {
	cols := make([]Column, len(t.Columns))
	copy(cols, t.Columns)
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]any, len(row))
		copy(r, row)
		rows[i] = r
	}
	return &Table{Columns: cols, Rows: rows}
}

// AsMaps renders rows as column-name keyed maps for JSON responses.
func (t *Table) AsMaps() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for j, c := range t.Columns {
			if j < len(row) {
				m[c.Name] = row[j]
			}
		}
		out[i] = m
	}
	return out
}

// Head renders the first n rows as tab-separated text, header included.
// Used to feed a small result sample to the explanation prompt.
func (t *Table) Head(n int) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.ColumnNames(), "\t"))
	for i, row := range t.Rows {
		if i >= n {
			break
		}
		sb.WriteString("\n")
		cells := make([]string, len(t.Columns))
		for j := range t.Columns {
			if j < len(row) && row[j] != nil {
				cells[j] = fmt.Sprint(row[j])
			}
		}
		sb.WriteString(strings.Join(cells, "\t"))
	}
	return sb.String()
}

// dateLayouts are tried in order when parsing text cells as dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"01/02/2006",
	"2006/01/02",
	"Jan 2006",
	"2006",
}

// ParseDate attempts to interpret a string as a calendar date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
