package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/groundwater-portal/reportload/internal/retry"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns bounds the pool; a load uses one connection for its
	// transaction and one for the pre-load inspection.
	DefaultMaxConns = 2

	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime keeps the connection alive during long COPY runs.
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger reportload.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}
}

// openPool parses connStr, applies tweaks, opens a pool and pings it.
func openPool(ctx context.Context, connStr string, config *reportload.ConnectionConfig, logger reportload.Logger, tweaks ...func(*pgxpool.Config)) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	configurePool(poolConfig, logger)
	for _, tweak := range tweaks {
		tweak(poolConfig)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}
	return pool, nil
}

// StandardConnector implements the Connector interface for standard
// username/password authentication with automatic retry on transient failures.
type StandardConnector struct {
	config        *reportload.ConnectionConfig
	retryExecutor *retry.Executor
	logger        reportload.Logger
}

// NewStandardConnector creates a new StandardConnector with the given configuration.
// Retry behavior uses the reportload defaults: DefaultRetryMaxAttempts attempts,
// exponential backoff starting at DefaultRetryInitialDelay, max DefaultRetryMaxDelay.
func NewStandardConnector(config *reportload.ConnectionConfig, logger reportload.Logger) *StandardConnector {
	return &StandardConnector{
		config:        config,
		retryExecutor: retry.NewDefaultExecutor(logger),
		logger:        logger,
	}
}

// Connect establishes a connection pool using standard authentication with automatic retry.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	connStr := BuildConnectionString(c.config)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		var err error
		pool, err = openPool(ctx, connStr, c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pool, nil
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the ConnectionConfig's AuthMethod.
func NewConnector(config *reportload.ConnectionConfig, logger reportload.Logger) (reportload.Connector, error) {
	switch config.AuthMethod {
	case reportload.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case reportload.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case reportload.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case reportload.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, reportload.ErrUnsupportedAuthMethod)
	}
}

// connectionHint pairs error text fragments with a diagnosis for the operator.
type connectionHint struct {
	needles []string
	explain func(host string, port int, database string) string
}

var connectionHints = []connectionHint{
	{[]string{"connection refused", "actively refused"}, func(host string, port int, _ string) string {
		return fmt.Sprintf("connection refused to %s:%d\n\n"+
			"Is PostgreSQL running there? Check with: pg_isready -h %s -p %d\n"+
			"Otherwise verify the host, the port and any firewall in between.", host, port, host, port)
	}},
	{[]string{"no such host", "no host"}, func(host string, _ int, _ string) string {
		return fmt.Sprintf("cannot resolve host %q\n\nCheck the spelling and the DNS setup of this machine.", host)
	}},
	{[]string{"password authentication failed"}, func(_ string, _ int, database string) string {
		return fmt.Sprintf("password authentication failed for database %q\n\n"+
			"Check the user name and the password in PGPASSWORD, .env or the connection string.", database)
	}},
	{[]string{"does not exist"}, func(_ string, _ int, database string) string {
		return fmt.Sprintf("database %q does not exist\n\nCreate it first: createdb %s", database, database)
	}},
	{[]string{"timeout", "timed out"}, func(host string, port int, _ string) string {
		return fmt.Sprintf("connection timed out to %s:%d\n\n"+
			"The server is unreachable or overloaded; raise connect_timeout if the network is slow.", host, port)
	}},
	{[]string{"ssl", "tls"}, func(string, int, string) string {
		return "SSL/TLS connection error\n\n" +
			"Check --sslmode against the server setup, and sslcert/sslkey/sslrootcert in reportload.yaml."
	}},
	{[]string{"too many connections"}, func(_ string, _ int, database string) string {
		return fmt.Sprintf("too many connections to database %q\n\n"+
			"max_connections is exhausted; wait for other loads to finish.", database)
	}},
}

// wrapConnectionError adds a diagnosis to raw pgx connection errors. The
// result matches both err and reportload.ErrConnectionFailed.
func wrapConnectionError(err error, host string, port int, database string) error {
	text := strings.ToLower(err.Error())
	for _, hint := range connectionHints {
		for _, needle := range hint.needles {
			if strings.Contains(text, needle) {
				return fmt.Errorf("%s\n\n%w: %w", hint.explain(host, port, database), reportload.ErrConnectionFailed, err)
			}
		}
	}
	return fmt.Errorf("failed to connect to database: %w: %w", reportload.ErrConnectionFailed, err)
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *reportload.ConnectionConfig, logger reportload.Logger) (reportload.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", logger), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Google Cloud SQL IAM authentication.
func newGoogleConnector(config *reportload.ConnectionConfig, logger reportload.Logger) (reportload.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", reportload.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", reportload.ErrInvalidConfig)
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance, logger), nil
}

// newAzureConnector creates a token-based connector with the Azure Entra ID token provider.
// If explicit credentials (tenant, client, secret) are provided, uses Service Principal auth.
// Otherwise, falls back to DefaultAzureCredential chain.
func newAzureConnector(config *reportload.ConnectionConfig, logger reportload.Logger) (reportload.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			config.AzureTenantID,
			config.AzureClientID,
			config.AzureClientSecret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure", logger), nil
}
