package reportload

import (
	"errors"
	"fmt"
	"time"
)

// Cell is a single value read from a report file.
// A cell is either a string value or the missing-value marker (Valid == false).
type Cell struct {
	String string
	Valid  bool
}

// Missing is the missing-value marker.
var Missing = Cell{}

// Text returns a present cell holding s.
func Text(s string) Cell {
	return Cell{String: s, Valid: true}
}

// IsMissing reports whether the cell carries no data.
func (c Cell) IsMissing() bool {
	return !c.Valid
}

// Value returns the cell as a driver value: nil for missing cells, the string otherwise.
func (c Cell) Value() any {
	if !c.Valid {
		return nil
	}
	return c.String
}

// RawRecord is one parsed record of a report file.
type RawRecord struct {
	// Line is the 0-indexed line of the file on which the record starts.
	Line  int
	Cells []Cell
}

// RawTable is the content of one report file before any interpretation.
type RawTable struct {
	// Path identifies the file the records were read from.
	Path    string
	Records []RawRecord
	// Checksum is the hex SHA-256 of the file's bytes.
	Checksum string
}

// Table is a named, column-labelled set of rows.
// Every row has exactly len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Cell
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HeaderMode selects how column names are derived from a file's header block.
type HeaderMode string

const (
	// HeaderModeMerge joins several header rows into one name per column.
	HeaderModeMerge HeaderMode = "merge"

	// HeaderModeSingle takes one header row verbatim and appends a provenance column.
	HeaderModeSingle HeaderMode = "single"
)

// IsValid returns true if the mode is a defined value.
func (m HeaderMode) IsValid() bool {
	return m == HeaderModeMerge || m == HeaderModeSingle
}

// LoadMode selects what happens to existing rows of the target table.
type LoadMode string

const (
	// LoadModeReplace drops and recreates the target table.
	LoadModeReplace LoadMode = "replace"

	// LoadModeAppend adds rows to the target table, creating it if needed.
	LoadModeAppend LoadMode = "append"
)

// IsValid returns true if the mode is a defined value.
func (m LoadMode) IsValid() bool {
	return m == LoadModeReplace || m == LoadModeAppend
}

// Layout locates the header block and the data region inside a report file.
// Offsets are 0-indexed file lines.
type Layout struct {
	// HeaderLine is the line on which the first header row starts.
	HeaderLine int `yaml:"header_line"`

	// HeaderRows is the number of records that make up the header block.
	HeaderRows int `yaml:"header_rows"`

	// DataLine is the line on which the first data row starts.
	DataLine int `yaml:"data_line"`
}

// Validate checks that the layout describes a usable header block and data region.
func (l Layout) Validate() error {
	var errs []error
	if l.HeaderLine < 0 {
		errs = append(errs, fmt.Errorf("header_line cannot be negative: %w", ErrInvalidConfig))
	}
	if l.HeaderRows < 1 {
		errs = append(errs, fmt.Errorf("header_rows must be at least 1: %w", ErrInvalidConfig))
	}
	if l.DataLine < l.HeaderLine+l.HeaderRows {
		errs = append(errs, fmt.Errorf("data_line %d overlaps the header block (lines %d-%d): %w",
			l.DataLine, l.HeaderLine, l.HeaderLine+l.HeaderRows-1, ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// InputFile is one report file and the layout of its header block and data.
type InputFile struct {
	Path   string
	Layout Layout
}

// LoadConfig contains all parameters needed for one load run.
type LoadConfig struct {
	// Files is the ordered list of report files to ingest.
	Files []InputFile

	// Table is the destination table, optionally schema-qualified ("public.reports").
	Table string

	// Mode selects replace or append semantics.
	Mode LoadMode

	// Connection is the resolved connection, used to pick the connector.
	Connection *ConnectionConfig

	// Force bypasses interactive approval before replacing an existing table
	Force bool

	// Timeout is the global timeout for the entire run
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if len(c.Files) == 0 {
		errs = append(errs, fmt.Errorf("at least one input file is required: %w", ErrInvalidConfig))
	}
	for i, f := range c.Files {
		if f.Path == "" {
			errs = append(errs, fmt.Errorf("file %d has no path: %w", i, ErrInvalidConfig))
		}
		if err := f.Layout.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("file %s: %w", f.Path, err))
		}
	}
	if c.Table == "" {
		errs = append(errs, fmt.Errorf("Table is required: %w", ErrInvalidConfig))
	}
	if !c.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("mode %q must be %q or %q: %w", c.Mode, LoadModeReplace, LoadModeAppend, ErrInvalidConfig))
	}
	if c.Connection == nil {
		errs = append(errs, fmt.Errorf("Connection is required: %w", ErrInvalidConfig))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// LoadResult summarizes a completed load.
type LoadResult struct {
	RunID        string
	Table        string
	Mode         LoadMode
	Files        int
	RowsLoaded   int64
	Columns      []string
	TableCreated bool
	Duration     time.Duration
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	SSLCert     string
	SSLKey      string
	SSLRootCert string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID: Service Principal auth when all three are set,
	// DefaultAzureCredential chain otherwise.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for RDS IAM authentication.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}
