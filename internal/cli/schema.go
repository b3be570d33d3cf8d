package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/groundwater-portal/reportload/internal/files/filesystem"
	"github.com/groundwater-portal/reportload/internal/logging"
	"github.com/groundwater-portal/reportload/internal/tui"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [file...]",
	Short: "Show the reconciled columns of each file and of the combined table",
	Long: `Schema reads and reconciles the report files exactly as load does, then
prints each file's column names and row count followed by the columns and
shape of the combined table. It never connects to a database.

Use it to check a new export's header layout before loading.

Examples:
  reportload schema
  reportload schema CentralReport14-15.csv --format v2`,
	RunE:              runSchema,
	ValidArgsFunction: completeReportFiles,
}

var schemaFlags batchFlags

func init() {
	rootCmd.AddCommand(schemaCmd)
	addBatchFlags(schemaCmd, &schemaFlags)
}

func runSchema(cmd *cobra.Command, args []string) error {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))

	projectCfg, err := loadProjectConfig(schemaFlags.config)
	if err != nil {
		return err
	}
	if err := applyBatchFlags(projectCfg, schemaFlags); err != nil {
		return err
	}
	inputs, err := resolveInputs(projectCfg, args, schemaFlags.format)
	if err != nil {
		return err
	}
	assembler, err := newAssembler(projectCfg, filesystem.NewOSFileSystem(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := assembler.Assemble(ctx, projectCfg.Table, inputs)
	if err != nil {
		return err
	}
	return tui.RenderSchemaReport(cmd.OutOrStdout(), result, tui.IsInteractive())
}
