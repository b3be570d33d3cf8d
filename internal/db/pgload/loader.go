// Package pgload writes a unified table into PostgreSQL with COPY.
//
// Replace mode drops and recreates the target inside one transaction, so a
// failed load leaves the previous table in place. Append mode creates the
// target when it is missing and otherwise requires every column of the
// data to exist in it. Every column is created as text; missing cells are
// written as NULL.
package pgload

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/groundwater-portal/reportload/internal/db/manager"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// TxBeginner starts transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Loader implements reportload.BulkLoader and reportload.TableInspector.
type Loader struct {
	db     TxBeginner
	mgr    *manager.Manager
	logger reportload.Logger
}

// New creates a Loader on db.
func New(db TxBeginner, logger reportload.Logger) *Loader {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Loader{db: db, mgr: manager.New(), logger: logger}
}

// TableExists reports whether table exists.
func (l *Loader) TableExists(ctx context.Context, table string) (bool, error) {
	name, err := manager.ParseTableName(table)
	if err != nil {
		return false, err
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	return l.mgr.TableExists(ctx, tx, name)
}

// Load writes data into table. Nothing is committed unless every step succeeds.
// Failures are returned as *reportload.LoadError.
func (l *Loader) Load(ctx context.Context, table string, data *reportload.Table, mode reportload.LoadMode) (reportload.LoadStats, error) {
	stats, err := l.load(ctx, table, data, mode)
	if err != nil {
		return reportload.LoadStats{}, &reportload.LoadError{Table: table, Err: err}
	}
	return stats, nil
}

func (l *Loader) load(ctx context.Context, table string, data *reportload.Table, mode reportload.LoadMode) (reportload.LoadStats, error) {
	var stats reportload.LoadStats

	if data == nil {
		return stats, fmt.Errorf("no data: %w", reportload.ErrInvalidConfig)
	}
	if !mode.IsValid() {
		return stats, fmt.Errorf("unknown mode %q: %w", mode, reportload.ErrInvalidConfig)
	}
	name, err := manager.ParseTableName(table)
	if err != nil {
		return stats, err
	}
	if err := manager.CheckColumnNames(data.Columns); err != nil {
		return stats, err
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	switch mode {
	case reportload.LoadModeReplace:
		l.logger.Verbose("dropping table %s", name)
		if err := l.mgr.Drop(ctx, tx, name); err != nil {
			return stats, err
		}
		if err := l.create(ctx, tx, name, data.Columns); err != nil {
			return stats, err
		}
		stats.Created = true

	case reportload.LoadModeAppend:
		exists, err := l.mgr.TableExists(ctx, tx, name)
		if err != nil {
			return stats, err
		}
		if !exists {
			if err := l.create(ctx, tx, name, data.Columns); err != nil {
				return stats, err
			}
			stats.Created = true
			break
		}
		existing, err := l.mgr.Columns(ctx, tx, name)
		if err != nil {
			return stats, err
		}
		if missing := missingColumns(data.Columns, existing); len(missing) > 0 {
			return stats, fmt.Errorf("table %s has no column(s) %s", name, strings.Join(quoteAll(missing), ", "))
		}
	}

	rows, err := tx.CopyFrom(ctx, name.Identifier(), data.Columns, pgx.CopyFromSlice(len(data.Rows), func(i int) ([]any, error) {
		return rowValues(data.Rows[i], len(data.Columns)), nil
	}))
	if err != nil {
		return stats, fmt.Errorf("copy into %s: %w", name, err)
	}
	stats.RowsLoaded = rows
	l.logger.Verbose("copied %d rows into %s", rows, name)

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("failed to commit: %w", err)
	}
	return stats, nil
}

func (l *Loader) create(ctx context.Context, tx pgx.Tx, name manager.TableName, columns []string) error {
	l.logger.Verbose("creating table %s with %d text columns", name, len(columns))
	return l.mgr.Create(ctx, tx, name, columns)
}

// rowValues converts one row to COPY values; missing cells become NULL.
func rowValues(row []reportload.Cell, width int) []any {
	values := make([]any, width)
	for i := 0; i < width && i < len(row); i++ {
		values[i] = row[i].Value()
	}
	return values
}

// missingColumns returns the names in want that are absent from have.
// Names are compared after identifier truncation, as PostgreSQL stores them.
func missingColumns(want, have []string) []string {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	var missing []string
	for _, w := range want {
		if _, ok := set[manager.TruncateIdentifier(w)]; !ok {
			missing = append(missing, w)
		}
	}
	return missing
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}

var (
	_ reportload.BulkLoader     = (*Loader)(nil)
	_ reportload.TableInspector = (*Loader)(nil)
)
