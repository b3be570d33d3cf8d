package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundwater-portal/reportload/internal/logging"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

func TestWrapConnectionError(t *testing.T) {
	tests := []struct {
		raw  string
		host string
		want string
	}{
		{"dial tcp 10.1.1.5:5433: connection refused", "10.1.1.5", "connection refused to 10.1.1.5:5433"},
		{"connectex: the target machine actively refused it", "10.1.1.5", "connection refused to 10.1.1.5:5433"},
		{"CONNECTION REFUSED by firewall", "gw.internal", "pg_isready -h gw.internal -p 5433"},
		{"lookup db.nowhere: no such host", "db.nowhere", `cannot resolve host "db.nowhere"`},
		{`password authentication failed for user "loader"`, "db", `password authentication failed for database "groundwater"`},
		{`database "groundwater" does not exist`, "db", "createdb groundwater"},
		{"dial tcp 10.0.0.1:5433: i/o timeout", "10.0.0.1", "connection timed out to 10.0.0.1:5433"},
		{"SSL is not enabled on the server", "db", "SSL/TLS connection error"},
		{"tls: handshake failure", "db", "SSL/TLS connection error"},
		{"FATAL: sorry, too many connections for role", "db", `too many connections to database "groundwater"`},
		{"the moon is in the wrong phase", "db", "failed to connect to database"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			raw := errors.New(tt.raw)
			wrapped := wrapConnectionError(raw, tt.host, 5433, "groundwater")

			assert.Contains(t, wrapped.Error(), tt.want)
			assert.ErrorIs(t, wrapped, raw)
			assert.ErrorIs(t, wrapped, reportload.ErrConnectionFailed)
			assert.Equal(t, reportload.ExitConnectionError, reportload.ExitCodeForError(wrapped))
		})
	}
}

func TestNewConnector_SelectsByAuthMethod(t *testing.T) {
	logger := logging.NewNullLogger()

	conn, err := NewConnector(&reportload.ConnectionConfig{Host: "localhost", Port: 5432}, logger)
	require.NoError(t, err)
	assert.IsType(t, &StandardConnector{}, conn)

	conn, err = NewConnector(&reportload.ConnectionConfig{
		AuthMethod:     reportload.AuthMethodGoogleIAM,
		Username:       "loader@project.iam",
		GoogleInstance: "project:region:instance",
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &GoogleCloudSQLConnector{}, conn)

	conn, err = NewConnector(&reportload.ConnectionConfig{
		AuthMethod: reportload.AuthMethodAWSIAM,
		Host:       "db.rds.amazonaws.com",
		Port:       5432,
		Username:   "loader",
		AWSRegion:  "eu-west-1",
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &TokenBasedConnector{}, conn)
}

func TestNewConnector_Errors(t *testing.T) {
	logger := logging.NewNullLogger()

	_, err := NewConnector(&reportload.ConnectionConfig{AuthMethod: reportload.AuthMethod(42)}, logger)
	assert.ErrorIs(t, err, reportload.ErrUnsupportedAuthMethod)

	_, err = NewConnector(&reportload.ConnectionConfig{AuthMethod: reportload.AuthMethodGoogleIAM, Username: "u"}, logger)
	assert.ErrorIs(t, err, reportload.ErrInvalidConfig)

	_, err = NewConnector(&reportload.ConnectionConfig{AuthMethod: reportload.AuthMethodAWSIAM, Host: "h", Port: 5432, Username: "u"}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")
}
