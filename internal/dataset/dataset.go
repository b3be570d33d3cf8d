// Package dataset builds and combines in-memory tables.
package dataset

import (
	"fmt"

	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// New labels rows with columns. Rows shorter than columns are padded with
// missing cells.
func New(name string, columns []string, rows [][]reportload.Cell) (*reportload.Table, error) {
	out := make([][]reportload.Cell, len(rows))
	for i, row := range rows {
		if len(row) > len(columns) {
			return nil, fmt.Errorf("%s: row %d has %d cells for %d columns", name, i, len(row), len(columns))
		}
		padded := make([]reportload.Cell, len(columns))
		copy(padded, row)
		out[i] = padded
	}
	return &reportload.Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
		Rows:    out,
	}, nil
}

// FillColumn stores value in column idx of every row of t.
func FillColumn(t *reportload.Table, idx int, value reportload.Cell) error {
	if idx < 0 || idx >= len(t.Columns) {
		return fmt.Errorf("%s: column %d out of range", t.Name, idx)
	}
	for i := range t.Rows {
		t.Rows[i][idx] = value
	}
	return nil
}

// Concat stacks tables row-wise, aligning columns by name. The column order
// is the first table's order followed by new names in order of first
// appearance. Cells of columns a table lacks are missing. A name repeated
// within one table is matched by occurrence, so the second "a" of one table
// aligns with the second "a" of another.
func Concat(name string, tables ...*reportload.Table) *reportload.Table {
	unified := &reportload.Table{Name: name}
	slots := map[string][]int{}

	mappings := make([][]int, len(tables))
	total := 0
	for ti, t := range tables {
		if t == nil {
			continue
		}
		occurrence := map[string]int{}
		mapping := make([]int, len(t.Columns))
		for ci, col := range t.Columns {
			k := occurrence[col]
			occurrence[col]++
			if k >= len(slots[col]) {
				slots[col] = append(slots[col], len(unified.Columns))
				unified.Columns = append(unified.Columns, col)
			}
			mapping[ci] = slots[col][k]
		}
		mappings[ti] = mapping
		total += len(t.Rows)
	}

	width := len(unified.Columns)
	unified.Rows = make([][]reportload.Cell, 0, total)
	for ti, t := range tables {
		if t == nil {
			continue
		}
		mapping := mappings[ti]
		for _, row := range t.Rows {
			out := make([]reportload.Cell, width)
			for ci, cell := range row {
				if ci < len(mapping) {
					out[mapping[ci]] = cell
				}
			}
			unified.Rows = append(unified.Rows, out)
		}
	}
	return unified
}
