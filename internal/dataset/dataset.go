// Package dataset holds the in-memory tabular data exchanged between the
// ingestion layer, the option aggregator, the query runner, and the
// geo-aggregation helper.
package dataset

import (
	"strconv"
	"strings"
)

// Cell is a single tabular value. Valid=false represents SQL NULL or a
// missing spreadsheet cell, which is distinct from an empty string.
type Cell struct {
	String string
	Valid  bool
}

// NullCell is the missing-value cell.
var NullCell = Cell{}

// V wraps a plain string into a valid cell.
func V(s string) Cell {
	return Cell{String: s, Valid: true}
}

// IsBlank reports whether the cell holds a valid but whitespace-only string.
func (c Cell) IsBlank() bool {
	return c.Valid && strings.TrimSpace(c.String) == ""
}

// Float coerces the cell to a float64. Missing, blank, or non-numeric
// values coerce to 0. Accepts Brazilian decimal commas ("1234,56").
func (c Cell) Float() float64 {
	if !c.Valid {
		return 0
	}
	s := strings.TrimSpace(c.String)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// Dataset is a column-named table of cells. Rows are positional; column
// lookups go through the name index.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
}

// New creates an empty dataset with the given column names.
func New(columns ...string) *Dataset {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Dataset{columns: columns, index: idx}
}

// Columns returns the column names in declaration order.
func (d *Dataset) Columns() []string { return d.columns }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// HasColumn reports whether the named column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Append adds a row. Short rows are padded with null cells; long rows are
// truncated to the column count.
func (d *Dataset) Append(row ...Cell) {
	if len(row) > len(d.columns) {
		row = row[:len(d.columns)]
	}
	for len(row) < len(d.columns) {
		row = append(row, NullCell)
	}
	d.rows = append(d.rows, row)
}

// AppendStrings adds a row of plain string values, all valid.
func (d *Dataset) AppendStrings(values ...string) {
	row := make([]Cell, len(values))
	for i, v := range values {
		row[i] = V(v)
	}
	d.Append(row...)
}

// Row returns the i-th row.
func (d *Dataset) Row(i int) []Cell { return d.rows[i] }

// Cell returns the cell at row i in the named column. Unknown columns
// yield the null cell.
func (d *Dataset) Cell(i int, column string) Cell {
	j, ok := d.index[column]
	if !ok {
		return NullCell
	}
	return d.rows[i][j]
}

// Column returns all cells of the named column, or nil if it is absent.
func (d *Dataset) Column(name string) []Cell {
	j, ok := d.index[name]
	if !ok {
		return nil
	}
	out := make([]Cell, len(d.rows))
	for i, row := range d.rows {
		out[i] = row[j]
	}
	return out
}

// KeySet collects the distinct non-null, non-blank values of the named
// column, each zero-padded to width (0 = no padding). Used to build
// exclusion sets and served-key sets from CNPJ columns.
func (d *Dataset) KeySet(column string, width int) map[string]struct{} {
	j, ok := d.index[column]
	if !ok {
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(d.rows))
	for _, row := range d.rows {
		c := row[j]
		if !c.Valid || c.IsBlank() {
			continue
		}
		set[ZeroPad(strings.TrimSpace(c.String), width)] = struct{}{}
	}
	return set
}

// Filter returns a new dataset holding the rows for which keep returns true.
func (d *Dataset) Filter(keep func(i int) bool) *Dataset {
	out := New(d.columns...)
	for i := range d.rows {
		if keep(i) {
			out.rows = append(out.rows, d.rows[i])
		}
	}
	return out
}

// ZeroPad left-pads s with zeros to the given width. Width <= len(s) or
// width 0 returns s unchanged. CNPJs pad to 14, CEPs to 8.
func ZeroPad(s string, width int) string {
	if width <= len(s) {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
