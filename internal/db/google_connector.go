package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/groundwater-portal/reportload/internal/retry"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// cloudDialer is the part of *cloudsqlconn.Dialer the connector needs.
type cloudDialer interface {
	Dial(ctx context.Context, icn string, opts ...cloudsqlconn.DialOption) (net.Conn, error)
	Close() error
}

// GoogleCloudSQLConnector reaches a Cloud SQL instance through the Cloud SQL
// Go Connector with IAM database authentication. The dialer owns TLS and the
// token, so the DSN carries no password and sslmode=disable.
//
// Close must be called after the returned pool is closed.
type GoogleCloudSQLConnector struct {
	config        *reportload.ConnectionConfig
	instance      string
	newDialer     func(ctx context.Context) (cloudDialer, error)
	dialer        cloudDialer
	retryExecutor *retry.Executor
	logger        reportload.Logger
}

// NewGoogleCloudSQLConnector creates a connector for instance, given as
// project:region:instance.
func NewGoogleCloudSQLConnector(config *reportload.ConnectionConfig, instance string, logger reportload.Logger) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{
		config:   config,
		instance: instance,
		newDialer: func(ctx context.Context) (cloudDialer, error) {
			return cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
		},
		retryExecutor: retry.NewDefaultExecutor(logger),
		logger:        logger,
	}
}

// cloudSQLConnString builds the DSN for the Cloud SQL dialer. The host is the
// instance name, which DialFunc ignores.
func cloudSQLConnString(config *reportload.ConnectionConfig, instance string) string {
	dsn := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable", instance, config.Username, config.Database)
	if config.AppName != "" {
		dsn += " application_name=" + config.AppName
	}
	return dsn
}

// Connect creates the dialer once and retries opening the pool through it.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dialer, err := c.newDialer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w: %w", reportload.ErrConnectionFailed, err)
	}
	c.logger.Verbose("Cloud SQL dialer ready for %s", c.instance)

	dial := func(pc *pgxpool.Config) {
		pc.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.Dial(ctx, c.instance)
		}
	}

	var pool *pgxpool.Pool
	err = c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		p, openErr := openPool(ctx, cloudSQLConnString(c.config, c.instance), c.config, c.logger, dial)
		pool = p
		return openErr
	})
	if err != nil {
		dialer.Close()
		return nil, err
	}

	c.dialer = dialer
	return pool, nil
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer == nil {
		return nil
	}
	err := c.dialer.Close()
	c.dialer = nil
	return err
}
