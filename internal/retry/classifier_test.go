package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPostgreSQLErrorClassifier_IsTransient(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil", nil, false},
		{"connection_failure 08006", &pgconn.PgError{Code: "08006"}, true},
		{"cannot_connect_now 57P03", &pgconn.PgError{Code: "57P03"}, true},
		{"too_many_connections 53300", &pgconn.PgError{Code: "53300"}, true},
		{"serialization_failure 40001", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock 40P01", &pgconn.PgError{Code: "40P01"}, true},
		{"lock_not_available 55P03", &pgconn.PgError{Code: "55P03"}, true},
		{"wrapped pg error", fmt.Errorf("connect: %w", &pgconn.PgError{Code: "08001"}), true},
		{"syntax_error 42601", &pgconn.PgError{Code: "42601"}, false},
		{"invalid_password 28P01", &pgconn.PgError{Code: "28P01"}, false},
		{"undefined_table 42P01", &pgconn.PgError{Code: "42P01"}, false},
		{"refused syscall", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"reset syscall", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"temporary dns", &net.DNSError{Err: "lookup", IsTemporary: true}, true},
		{"permanent dns", &net.DNSError{Err: "no such host", IsNotFound: true}, false},
		{"wrapped permanent dns", fmt.Errorf("dial tcp: %w", &net.DNSError{Err: "no such host", Name: "db.typo", IsNotFound: true}), false},
		{"unresolvable host text", errors.New("dial tcp: lookup db.typo: no such host"), false},
		{"dns timeout", &net.DNSError{Err: "i/o timeout", IsTimeout: true}, true},
		{"message pattern", errors.New("read: connection reset by peer"), true},
		{"startup message", errors.New("FATAL: the database system is starting up"), true},
		{"plain error", errors.New("permission denied"), false},
		{"context canceled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, classifier.IsTransient(tt.err))
		})
	}
}
