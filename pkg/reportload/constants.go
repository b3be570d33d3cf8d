package reportload

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Load completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to database
	ExitApprovalDenied  = 12 // User denied table replacement
	ExitLoadFailed      = 13 // Bulk load failed
	ExitFileReadError   = 14 // Report file missing or unreadable
	ExitSchemaMismatch  = 15 // Header and data column counts differ
)

const (
	// DefaultTable is the destination table when none is configured.
	DefaultTable = "reports"

	// DefaultMode is the load mode when none is configured.
	DefaultMode = LoadModeReplace

	// DefaultHeaderMode is the header reconciliation mode when none is configured.
	DefaultHeaderMode = HeaderModeMerge

	// DefaultProvenanceColumn names the column holding the per-file tag.
	DefaultProvenanceColumn = "period"

	// HeaderSeparator joins header fragments in merge mode.
	HeaderSeparator = "_"

	// PlaceholderPrefix prefixes the positional name of a column without header text.
	PlaceholderPrefix = "col_"

	// DefaultTimeout is the catastrophic-failure timeout of a whole run.
	DefaultTimeout = 5 * time.Minute

	// DefaultForceApprovalCountdown is the countdown duration before force approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// MaxIdentifierLength is PostgreSQL's NAMEDATALEN-1; longer identifiers are truncated.
	MaxIdentifierLength = 63
)

// DefaultLayout is the layout of the central report exports:
// three header rows starting on line 7, data from line 10.
var DefaultLayout = Layout{HeaderLine: 7, HeaderRows: 3, DataLine: 10}

// DefaultNAValues are the cell texts treated as missing values: the default
// NA tokens of dataframe CSV readers, so "None" or "n/a" header cells drop
// out of merged column names.
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}
