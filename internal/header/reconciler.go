package header

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// Reconciler derives the schema of one file in a fixed mode.
type Reconciler struct {
	mode             reportload.HeaderMode
	provenanceColumn string
}

// New creates a Reconciler. Single mode requires a provenance column name;
// in merge mode a non-empty provenanceColumn is appended the same way.
func New(mode reportload.HeaderMode, provenanceColumn string) (*Reconciler, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("unknown header mode %q: %w", mode, reportload.ErrInvalidConfig)
	}
	if mode == reportload.HeaderModeSingle && provenanceColumn == "" {
		return nil, fmt.Errorf("single header mode needs a provenance column: %w", reportload.ErrInvalidConfig)
	}
	return &Reconciler{mode: mode, provenanceColumn: provenanceColumn}, nil
}

// Mode returns the reconciliation mode.
func (r *Reconciler) Mode() reportload.HeaderMode {
	return r.mode
}

// ProvenanceColumn returns the requested name of the trailing provenance
// column, or "" when none is appended. The uniqueness pass may still rename it.
func (r *Reconciler) ProvenanceColumn() string {
	return r.provenanceColumn
}

// Reconcile returns the unique column names for the header rows of the file
// at path. dataWidth is the column count of the data region; a value of 0
// means the file has no data rows and the header width is used.
// When a provenance column is configured the result has one extra trailing
// column for it.
func (r *Reconciler) Reconcile(path string, headerRows [][]reportload.Cell, dataWidth int) ([]string, error) {
	rows := headerRows
	if r.mode == reportload.HeaderModeSingle && len(rows) > 1 {
		rows = rows[:1]
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if dataWidth > 0 && dataWidth != width {
		return nil, &reportload.SchemaMismatchError{Path: path, HeaderColumns: width, DataColumns: dataWidth}
	}

	var names []string
	if r.mode == reportload.HeaderModeMerge {
		names = Merge(rows, width)
	} else {
		var row []reportload.Cell
		if len(rows) > 0 {
			row = rows[0]
		}
		names = Single(row, width)
	}
	if r.provenanceColumn != "" {
		names = append(names, r.provenanceColumn)
	}
	return Uniquify(names), nil
}

// Merge joins the non-empty fragments of each column position across rows.
// A column without any fragment gets the placeholder col_<i>.
func Merge(rows [][]reportload.Cell, width int) []string {
	names := make([]string, width)
	parts := make([]string, 0, len(rows))
	for i := 0; i < width; i++ {
		parts = parts[:0]
		for _, row := range rows {
			if i < len(row) && !row[i].IsMissing() && row[i].String != "" {
				parts = append(parts, row[i].String)
			}
		}
		name := strings.Join(parts, reportload.HeaderSeparator)
		if name == "" {
			name = Placeholder(i)
		}
		names[i] = name
	}
	return names
}

// Single takes each cell of row verbatim. Missing or absent cells get the
// placeholder col_<i>.
func Single(row []reportload.Cell, width int) []string {
	names := make([]string, width)
	for i := 0; i < width; i++ {
		if i < len(row) && !row[i].IsMissing() && row[i].String != "" {
			names[i] = row[i].String
			continue
		}
		names[i] = Placeholder(i)
	}
	return names
}

// Uniquify renames repeated names: the Nth occurrence of a name becomes
// name_N. Counts are kept per original name only.
func Uniquify(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		seen[name]++
		if n := seen[name]; n > 1 {
			out[i] = name + "_" + strconv.Itoa(n)
			continue
		}
		out[i] = name
	}
	return out
}

// Placeholder returns the positional name of column i.
func Placeholder(i int) string {
	return reportload.PlaceholderPrefix + strconv.Itoa(i)
}
