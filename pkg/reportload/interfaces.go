package reportload

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector is a unified interface for establishing database connections.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM, etc.).
type Connector interface {
	// Connect establishes a connection pool to the database.
	// The returned pool should be closed by the caller when done.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}

// ConnectorFactory builds the Connector matching a connection's auth method.
type ConnectorFactory func(config *ConnectionConfig, logger Logger) (Connector, error)

// BulkLoader writes a unified table into the destination database.
//
// In LoadModeReplace the target is dropped and recreated with exactly the
// table's columns. In LoadModeAppend the target must accept every column.
type BulkLoader interface {
	Load(ctx context.Context, table string, data *Table, mode LoadMode) (LoadStats, error)
}

// LoadStats describes what a BulkLoader did.
type LoadStats struct {
	RowsLoaded int64
	Created    bool
}

// TableInspector answers questions about the destination table before a load.
type TableInspector interface {
	TableExists(ctx context.Context, table string) (bool, error)
}

// Approver handles user interaction for approval workflows,
// particularly before an existing table is dropped and recreated.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to type the table name for confirmation
type Approver interface {
	// RequestApproval prompts for confirmation before replacing table.
	// Returns true if approved, false if denied.
	RequestApproval(ctx context.Context, table string) (bool, error)
}

// ErrorClassifier determines whether an error is transient (retryable) or fatal.
type ErrorClassifier interface {
	// IsTransient returns true if the error is temporary and the operation should be retried.
	IsTransient(err error) bool
}

// BackoffStrategy calculates the delay before the next retry attempt.
type BackoffStrategy interface {
	// NextDelay returns the duration to wait before the next attempt.
	// attempt is zero-indexed (0 = first retry, 1 = second retry, etc.)
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of retry attempts (0 = no retries, -1 = unlimited)
	MaxAttempts() int
}
