// Package logging implements reportload.Logger.
//
// ConsoleLogger prefixes errors with [ERROR] and verbose lines with
// [VERBOSE]; info lines are written bare so progress messages read cleanly.
// NullLogger drops everything. Both are safe for concurrent use.
package logging
