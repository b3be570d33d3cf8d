package manager

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// TableName is an optionally schema-qualified table name.
type TableName struct {
	Schema string
	Name   string
}

// ParseTableName splits "schema.table" or "table". Names are taken
// verbatim, without case folding.
func ParseTableName(s string) (TableName, error) {
	parts := strings.Split(s, ".")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return TableName{Name: parts[0]}, nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return TableName{Schema: parts[0], Name: parts[1]}, nil
	}
	return TableName{}, fmt.Errorf("invalid table name %q: want \"table\" or \"schema.table\": %w", s, reportload.ErrInvalidConfig)
}

// Identifier returns the name as a pgx identifier.
func (t TableName) Identifier() pgx.Identifier {
	if t.Schema == "" {
		return pgx.Identifier{t.Name}
	}
	return pgx.Identifier{t.Schema, t.Name}
}

// Sanitize returns the quoted SQL form of the name.
func (t TableName) Sanitize() string {
	return t.Identifier().Sanitize()
}

func (t TableName) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// TruncateIdentifier shortens name the way PostgreSQL does: to at most
// MaxIdentifierLength bytes without splitting a UTF-8 sequence.
func TruncateIdentifier(name string) string {
	if len(name) <= reportload.MaxIdentifierLength {
		return name
	}
	cut := reportload.MaxIdentifierLength
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}

// CheckColumnNames rejects column lists PostgreSQL would not accept as the
// columns of one table: empty names, and names that are equal after
// identifier truncation.
func CheckColumnNames(columns []string) error {
	seen := make(map[string]string, len(columns))
	var problems []string
	for _, col := range columns {
		if col == "" {
			problems = append(problems, "empty column name")
			continue
		}
		key := TruncateIdentifier(col)
		if prev, ok := seen[key]; ok {
			if prev == col {
				problems = append(problems, fmt.Sprintf("duplicate column %q", col))
			} else {
				problems = append(problems, fmt.Sprintf("columns %q and %q are identical after truncation to %d bytes", prev, col, reportload.MaxIdentifierLength))
			}
			continue
		}
		seen[key] = col
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}
