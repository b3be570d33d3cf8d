package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reportload",
	Short: "Load multi-header CSV report exports into PostgreSQL",
	Long: `reportload reads CSV (or .xlsx) report exports whose header spans several
rows, reconciles every file's header into one set of unique column names,
concatenates the files and bulk-loads the result into a PostgreSQL table.

Input files, layouts and the target are configured in reportload.yaml;
flags override the file, and libpq environment variables (PGHOST, PGUSER,
PGPASSWORD, ...) or a .env file supply the connection.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - User denied table replacement
  13 - Bulk load failed
  14 - Report file missing or unreadable
  15 - Header and data column counts differ`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		writeVersion(os.Stdout, resolveVersionInfo())
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// -h is the PostgreSQL host flag, so help is long-form only.
	rootCmd.PersistentFlags().Bool("help", false, "Help for reportload")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
