package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// sslModes contains valid PostgreSQL SSL modes for shell completion.
var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

func completeFrom(values []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var matches []string
	for _, v := range values {
		if strings.HasPrefix(v, toComplete) {
			matches = append(matches, v)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

// completeSSLModes provides shell completion for SSL mode flag values.
func completeSSLModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeFrom(sslModes, toComplete)
}

func completeLoadModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeFrom([]string{string(reportload.LoadModeReplace), string(reportload.LoadModeAppend)}, toComplete)
}

func completeHeaderModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeFrom([]string{string(reportload.HeaderModeMerge), string(reportload.HeaderModeSingle)}, toComplete)
}

// completeReportFiles offers CSV and workbook files as positional arguments.
func completeReportFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"csv", "xlsx", "xlsm"}, cobra.ShellCompDirectiveFilterFileExt
}
