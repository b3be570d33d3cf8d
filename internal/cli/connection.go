package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/groundwater-portal/reportload/internal/config"
	"github.com/groundwater-portal/reportload/internal/db"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// connectionFlags holds the connection-related flag values.
type connectionFlags struct {
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	azure          bool
	azureTenantID  string
	azureClientID  string
	aws            bool
	awsRegion      string
	google         bool
	googleInstance string
}

func addConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	flags := cmd.Flags()

	flags.StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI or key=value format).\n"+
			"Mutually exclusive with granular flags (--host, --port, --username).\n"+
			"Alternative: REPORTLOAD_CONNECTION_STRING or DATABASE_URL environment variable.\n"+
			"Example: postgresql://loader@localhost:5432/groundwater")

	// Precedence: flag > environment variable > reportload.yaml > default
	flags.StringVarP(&f.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > reportload.yaml > localhost")
	flags.IntVarP(&f.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > reportload.yaml > 5432")
	flags.StringVarP(&f.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or current OS user)")
	flags.StringVarP(&f.database, "database", "d", "",
		"Target database (overrides the database of a connection string)")
	flags.StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")

	flags.BoolVar(&f.azure, "azure", false,
		"Enable Azure Entra ID authentication\n"+
			"Uses DefaultAzureCredential chain (Managed Identity, Azure CLI, etc.)")
	flags.StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	flags.StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")
	flags.BoolVar(&f.aws, "aws", false,
		"Enable AWS RDS IAM authentication (default AWS credential chain)")
	flags.StringVar(&f.awsRegion, "aws-region", "",
		"AWS region of the RDS instance (overrides $AWS_REGION)")
	flags.BoolVar(&f.google, "google", false,
		"Enable Google Cloud SQL IAM authentication")
	flags.StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")

	_ = cmd.RegisterFlagCompletionFunc("sslmode", completeSSLModes)
}

// connectionStringFromEnv returns the first non-empty connection string from
// REPORTLOAD_CONNECTION_STRING or DATABASE_URL.
func connectionStringFromEnv() string {
	if s := os.Getenv("REPORTLOAD_CONNECTION_STRING"); s != "" {
		return s
	}
	return os.Getenv("DATABASE_URL")
}

// resolveConnection turns flags, environment and reportload.yaml into one
// connection. It does not connect.
func resolveConnection(f connectionFlags, projectCfg *config.ProjectConfig) (*reportload.ConnectionConfig, error) {
	connString := f.connection
	if connString == "" {
		connString = connectionStringFromEnv()
	}

	granular := &db.GranularConnFlags{
		Host:     f.host,
		Port:     f.port,
		Username: f.username,
		Database: f.database,
		SSLMode:  f.sslMode,
	}
	cloud := &db.CloudFlags{
		Azure:          f.azure,
		AzureTenantID:  f.azureTenantID,
		AzureClientID:  f.azureClientID,
		AWS:            f.aws,
		AWSRegion:      f.awsRegion,
		Google:         f.google,
		GoogleInstance: f.googleInstance,
	}

	return db.ResolveConnectionParams(connString, granular, cloud, db.LoadFromEnvironment(), projectCfg)
}

// logConnectionVerbose logs connection details; never the password.
func logConnectionVerbose(logger reportload.Logger, c *reportload.ConnectionConfig) {
	logger.Verbose("Connection resolved:")
	logger.Verbose("  Host: %s", c.Host)
	logger.Verbose("  Port: %d", c.Port)
	logger.Verbose("  User: %s", c.Username)
	logger.Verbose("  Database: %s", c.Database)
	logger.Verbose("  SSL Mode: %s", c.SSLMode)
	if c.SSLRootCert != "" {
		logger.Verbose("  SSL Root Cert: %s", c.SSLRootCert)
	}
	logger.Verbose("  Auth Method: %s", c.AuthMethod)
}
