package db

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/groundwater-portal/reportload/internal/config"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Note: Password is NOT included as a CLI flag for security reasons.
// Use one of these methods instead:
//  1. $PGPASSWORD environment variable (a .env file is loaded first)
//  2. .pgpass file (PostgreSQL standard)
//  3. Connection string with embedded password
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were provided by the user.
// Note: Database flag is excluded from this check because it can be used to override
// the database specified in a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags selects a cloud IAM authentication method from the command line.
// Note: the Azure client secret is NOT a flag; use AZURE_CLIENT_SECRET.
type CloudFlags struct {
	Azure         bool
	AzureTenantID string // Overrides AZURE_TENANT_ID
	AzureClientID string // Overrides AZURE_CLIENT_ID

	AWS       bool
	AWSRegion string // Overrides AWS_REGION

	Google         bool
	GoogleInstance string
}

// EnvVars represents PostgreSQL standard environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string // PostgreSQL server host
	PGPORT       string // PostgreSQL server port
	PGUSER       string // PostgreSQL username
	PGPASSWORD   string // PostgreSQL password (discouraged, use .pgpass instead)
	PGDATABASE   string // Default database name
	PGSSLMODE    string // SSL mode
	DATABASE_URL string // Full connection string (Heroku/Rails convention)

	// Azure Entra ID environment variables (Azure SDK standard names)
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string

	// AWS region for RDS IAM tokens (AWS SDK standard names)
	AWS_REGION         string
	AWS_DEFAULT_REGION string
}

// LoadFromEnvironment loads PostgreSQL and cloud provider environment variables.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
		AWS_DEFAULT_REGION:  os.Getenv("AWS_DEFAULT_REGION"),
	}
}

// HasAzureCredentials returns true if Azure Entra ID environment variables are set.
func (e *EnvVars) HasAzureCredentials() bool {
	return e.AZURE_TENANT_ID != "" || e.AZURE_CLIENT_ID != ""
}

// ParseAuthMethod maps the auth_method value of reportload.yaml.
func ParseAuthMethod(s string) (reportload.AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return reportload.AuthMethodStandard, nil
	case "aws", "aws-iam":
		return reportload.AuthMethodAWSIAM, nil
	case "google", "google-iam", "gcp":
		return reportload.AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id", "entra":
		return reportload.AuthMethodAzureEntraID, nil
	}
	return reportload.AuthMethodStandard, fmt.Errorf("unknown auth_method %q: %w", s, reportload.ErrUnsupportedAuthMethod)
}

// ResolveConnectionParams resolves connection parameters using PostgreSQL-standard precedence:
//
//  1. Connection string flag (--connection) - if provided, parse and use directly
//  2. DATABASE_URL environment variable - if no granular flags
//  3. Granular flags (-h, -p, -U, -d), then environment variables (PGHOST, PGPORT, ...),
//     then reportload.yaml, then defaults (localhost:5432, prefer SSL)
//
// The auth method comes from --aws, --google or --azure, then from auth_method in
// reportload.yaml, then from Azure environment variables; at most one flag may be set.
//
// Returns an error if BOTH --connection and granular flags are provided.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*reportload.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/groundwater\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d groundwater\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser: %w",
			reportload.ErrInvalidConfig,
		)
	}

	var cfg *reportload.ConnectionConfig
	var err error
	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envVars.DATABASE_URL != "":
		cfg, err = resolveFromConnectionString(envVars.DATABASE_URL, envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, pc)
	}
	if err != nil {
		return nil, err
	}

	// -d always selects the target database, also with a connection string
	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}
	applyCertificates(cfg, pc)

	if err := applyAuthMethod(cfg, cloudFlags, envVars, pc); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyCertificates(cfg *reportload.ConnectionConfig, pc config.ConnectionConfig) {
	if cfg.SSLCert == "" {
		cfg.SSLCert = pc.SSLCert
	}
	if cfg.SSLKey == "" {
		cfg.SSLKey = pc.SSLKey
	}
	if cfg.SSLRootCert == "" {
		cfg.SSLRootCert = pc.SSLRootCert
	}
}

// applyAuthMethod sets the auth method and the provider-specific fields.
// Flags take precedence over reportload.yaml, which takes precedence over
// environment detection.
func applyAuthMethod(cfg *reportload.ConnectionConfig, flags *CloudFlags, env *EnvVars, pc config.ConnectionConfig) error {
	selected := 0
	for _, on := range []bool{flags.Azure, flags.AWS, flags.Google} {
		if on {
			selected++
		}
	}
	if selected > 1 {
		return fmt.Errorf("--azure, --aws and --google are mutually exclusive: %w", reportload.ErrInvalidConfig)
	}

	method, err := ParseAuthMethod(pc.AuthMethod)
	if err != nil {
		return err
	}
	switch {
	case flags.Azure:
		method = reportload.AuthMethodAzureEntraID
	case flags.AWS:
		method = reportload.AuthMethodAWSIAM
	case flags.Google:
		method = reportload.AuthMethodGoogleIAM
	case method == reportload.AuthMethodStandard &&
		(flags.AzureTenantID != "" || flags.AzureClientID != "" || env.HasAzureCredentials()):
		method = reportload.AuthMethodAzureEntraID
	}
	cfg.AuthMethod = method

	switch method {
	case reportload.AuthMethodAzureEntraID:
		cfg.AzureTenantID = firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
		cfg.AzureClientID = firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case reportload.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, env.AWS_DEFAULT_REGION, pc.AWSRegion)
	case reportload.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	}
	return nil
}

// resolveFromConnectionString parses a connection string. Environment variables
// are applied as fallbacks for parameters the string leaves out, following libpq.
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*reportload.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w: %w", reportload.ErrInvalidConfig, err)
	}

	if cfg.SSLMode == "" {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}
	if cfg.Password == "" {
		cfg.Password = envVars.PGPASSWORD
	}

	return cfg, nil
}

// resolveFromGranularParams builds ConnectionConfig from granular flags, environment
// variables and reportload.yaml.
//
// Precedence for each parameter (following PostgreSQL standards):
//  1. CLI flag (highest priority)
//  2. Environment variable
//  3. reportload.yaml
//  4. Default value (lowest priority)
func resolveFromGranularParams(flags *GranularConnFlags, envVars *EnvVars, pc config.ConnectionConfig) (*reportload.ConnectionConfig, error) {
	cfg := &reportload.ConnectionConfig{
		AuthMethod:       reportload.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, "localhost")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case envVars.PGPORT != "":
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", envVars.PGPORT, reportload.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = 5432
	}

	// Username falls back to the current OS user, as libpq does
	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = envVars.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, envVars.PGDATABASE, pc.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, "prefer")

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
