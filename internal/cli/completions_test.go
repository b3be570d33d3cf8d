package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestCompleteSSLModes(t *testing.T) {
	cmd := &cobra.Command{}

	t.Run("returns all modes for empty input", func(t *testing.T) {
		completions, directive := completeSSLModes(cmd, nil, "")
		if len(completions) != len(sslModes) {
			t.Errorf("expected %d completions, got %d", len(sslModes), len(completions))
		}
		if directive != cobra.ShellCompDirectiveNoFileComp {
			t.Errorf("expected ShellCompDirectiveNoFileComp, got %v", directive)
		}
	})

	t.Run("filters by prefix", func(t *testing.T) {
		completions, _ := completeSSLModes(cmd, nil, "ver")
		if len(completions) != 2 {
			t.Errorf("expected 2 completions (verify-ca, verify-full), got %d", len(completions))
		}
	})

	t.Run("returns empty for non-matching prefix", func(t *testing.T) {
		completions, _ := completeSSLModes(cmd, nil, "xyz")
		if len(completions) != 0 {
			t.Errorf("expected 0 completions, got %d", len(completions))
		}
	})
}

func TestCompleteModes(t *testing.T) {
	cmd := &cobra.Command{}

	if got, _ := completeLoadModes(cmd, nil, "ap"); len(got) != 1 || got[0] != "append" {
		t.Errorf("completeLoadModes(ap) = %v", got)
	}
	if got, _ := completeHeaderModes(cmd, nil, ""); len(got) != 2 {
		t.Errorf("completeHeaderModes() = %v, want both modes", got)
	}
}

func TestCompleteReportFiles(t *testing.T) {
	exts, directive := completeReportFiles(&cobra.Command{}, nil, "")
	if directive != cobra.ShellCompDirectiveFilterFileExt {
		t.Errorf("expected ShellCompDirectiveFilterFileExt, got %v", directive)
	}
	if len(exts) != 3 {
		t.Errorf("expected csv, xlsx and xlsm, got %v", exts)
	}
}
