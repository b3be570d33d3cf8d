package reportload

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := svc.Run(ctx, cfg)
//	if errors.Is(err, reportload.ErrSchemaMismatch) {
//	    // a file's header and data regions disagree
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrFileRead indicates a report file is missing or unreadable.
	ErrFileRead = errors.New("file read failed")

	// ErrSchemaMismatch indicates a file's header and data column counts differ.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrLoad indicates the bulk load into the destination table failed.
	ErrLoad = errors.New("load failed")

	// ErrApprovalDenied indicates the user denied approval for the operation.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// FileReadError reports a report file that could not be opened or parsed.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// Is matches ErrFileRead.
func (e *FileReadError) Is(target error) bool { return target == ErrFileRead }

// SchemaMismatchError reports a file whose header block and data region
// have a different number of columns.
type SchemaMismatchError struct {
	Path          string
	HeaderColumns int
	DataColumns   int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: header has %d columns but data has %d", e.Path, e.HeaderColumns, e.DataColumns)
}

// Is matches ErrSchemaMismatch.
func (e *SchemaMismatchError) Is(target error) bool { return target == ErrSchemaMismatch }

// LoadError reports a failure of the bulk load into the destination table.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load into %s failed: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is matches ErrLoad.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
//
// A LoadError always maps to ExitLoadFailed, whatever it wraps. Other
// errors that wrap ErrInvalidConfig map to ExitConfigError, so a file read
// that failed on a bad encoding setting reports a configuration problem.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrLoad):
		return ExitLoadFailed
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrFileRead):
		return ExitFileReadError
	case errors.Is(err, ErrSchemaMismatch):
		return ExitSchemaMismatch
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	errStr := err.Error()
	if isUsageError(errStr) {
		return ExitUsageError
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// isUsageError recognizes the argument and flag errors produced by cobra.
func isUsageError(msg string) bool {
	for _, prefix := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"requires at least",
		"required flag",
		"invalid argument",
		"flag needs an argument",
	} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
