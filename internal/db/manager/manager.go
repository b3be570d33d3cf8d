package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	queryTableExists  = "SELECT to_regclass($1) IS NOT NULL"
	// Resolved through to_regclass like queryTableExists, so an unqualified
	// name finds the same table anywhere on the search_path.
	queryTableColumns = `
		SELECT coalesce(array_agg(a.attname::text ORDER BY a.attnum), '{}')
		FROM pg_attribute a
		WHERE a.attrelid = to_regclass($1) AND a.attnum > 0 AND NOT a.attisdropped
	`
)

// Querier is the subset of pgx shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Manager implements table lifecycle operations.
// Stateless and safe for concurrent use; thread safety depends on the injected Querier.
type Manager struct{}

// New creates a new Manager instance.
func New() *Manager {
	return &Manager{}
}

// TableExists checks if the table exists on the search path or in its schema.
func (m *Manager) TableExists(ctx context.Context, q Querier, table TableName) (bool, error) {
	var exists bool
	if err := q.QueryRow(ctx, queryTableExists, table.Sanitize()).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existence of table %s: %w", table, err)
	}
	return exists, nil
}

// Columns returns the column names of the table in ordinal order.
func (m *Manager) Columns(ctx context.Context, q Querier, table TableName) ([]string, error) {
	var columns []string
	if err := q.QueryRow(ctx, queryTableColumns, table.Sanitize()).Scan(&columns); err != nil {
		return nil, fmt.Errorf("failed to list columns of table %s: %w", table, err)
	}
	return columns, nil
}

// Drop drops the table if it exists.
func (m *Manager) Drop(ctx context.Context, q Querier, table TableName) error {
	if _, err := q.Exec(ctx, DropSQL(table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	return nil
}

// Create creates the table with one text column per name.
func (m *Manager) Create(ctx context.Context, q Querier, table TableName, columns []string) error {
	if _, err := q.Exec(ctx, CreateSQL(table, columns)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// DropSQL returns the statement Drop executes.
func DropSQL(table TableName) string {
	return "DROP TABLE IF EXISTS " + table.Sanitize()
}

// CreateSQL returns the statement Create executes.
func CreateSQL(table TableName, columns []string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = pgx.Identifier{col}.Sanitize() + " text"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table.Sanitize(), strings.Join(defs, ", "))
}
