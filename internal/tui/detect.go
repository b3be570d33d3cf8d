package tui

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// Mode is the interaction mode of a run.
type Mode int

const (
	// ModeNonInteractive covers pipelines, cron jobs and redirected output.
	ModeNonInteractive Mode = iota
	// ModeInteractive means a person is watching a terminal.
	ModeInteractive
)

// nonInteractiveEnv returns the first environment variable that forces
// plain output, or "" when none does.
//
// REPORTLOAD_NON_INTERACTIVE accepts any strconv.ParseBool truth value;
// CI and NO_COLOR only need to be non-empty.
func nonInteractiveEnv(getenv func(string) string) string {
	if on, err := strconv.ParseBool(getenv("REPORTLOAD_NON_INTERACTIVE")); err == nil && on {
		return "REPORTLOAD_NON_INTERACTIVE"
	}
	for _, name := range []string{"CI", "NO_COLOR"} {
		if getenv(name) != "" {
			return name
		}
	}
	return ""
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// DetectMode is interactive only when no override is set and both stdin
// and stdout are terminals.
func DetectMode() Mode {
	if nonInteractiveEnv(os.Getenv) != "" {
		return ModeNonInteractive
	}
	if !IsTerminal(os.Stdin) || !IsTerminal(os.Stdout) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive reports DetectMode() == ModeInteractive.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
