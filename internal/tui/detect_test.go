package tui

import (
	"os"
	"testing"
)

func envOf(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}

func TestNonInteractiveEnv(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"nothing set", nil, ""},
		{"explicit 1", map[string]string{"REPORTLOAD_NON_INTERACTIVE": "1"}, "REPORTLOAD_NON_INTERACTIVE"},
		{"explicit true", map[string]string{"REPORTLOAD_NON_INTERACTIVE": "true"}, "REPORTLOAD_NON_INTERACTIVE"},
		{"explicit false", map[string]string{"REPORTLOAD_NON_INTERACTIVE": "false"}, ""},
		{"garbage ignored", map[string]string{"REPORTLOAD_NON_INTERACTIVE": "please"}, ""},
		{"CI", map[string]string{"CI": "true"}, "CI"},
		{"NO_COLOR", map[string]string{"NO_COLOR": "1"}, "NO_COLOR"},
		{"override wins over CI", map[string]string{"REPORTLOAD_NON_INTERACTIVE": "1", "CI": "1"}, "REPORTLOAD_NON_INTERACTIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nonInteractiveEnv(envOf(tt.vars)); got != tt.want {
				t.Errorf("nonInteractiveEnv() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectMode_NoTerminalInTests(t *testing.T) {
	t.Setenv("REPORTLOAD_NON_INTERACTIVE", "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")

	if got := DetectMode(); got != ModeNonInteractive {
		t.Errorf("DetectMode() = %d, want ModeNonInteractive", got)
	}
	if IsInteractive() {
		t.Error("IsInteractive() = true without a terminal")
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(nil) {
		t.Error("nil file is not a terminal")
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("regular file reported as terminal")
	}
}
