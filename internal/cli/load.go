package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/groundwater-portal/reportload/internal/config"
	"github.com/groundwater-portal/reportload/internal/db"
	"github.com/groundwater-portal/reportload/internal/files/filesystem"
	"github.com/groundwater-portal/reportload/internal/logging"
	"github.com/groundwater-portal/reportload/internal/services"
	"github.com/groundwater-portal/reportload/internal/tui"
	"github.com/groundwater-portal/reportload/internal/ui"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

var loadCmd = &cobra.Command{
	Use:   "load [file...]",
	Short: "Reconcile report headers and load the files into PostgreSQL",
	Long: `Load reads every report file, derives one unique column name per column
from its header block, concatenates the files and copies the rows into the
destination table. Every column is created as text; empty cells and NA
tokens are loaded as NULL.

Files come from the arguments, or from the files: list of reportload.yaml.
Nothing is written unless every file was read and reconciled.

Modes:
  replace  Drop and recreate the table in one transaction (default).
           Replacing an existing table asks you to type its name,
           or counts down with --force.
  append   Create the table when missing; otherwise every column of the
           files must already exist in it.

Password Authentication:
  Password is NOT accepted as a CLI flag. Use $PGPASSWORD (a .env file in the
  working directory is loaded first), .pgpass, or a connection string.

Examples:
  # Files and layouts from ./reportload.yaml
  reportload load -d groundwater

  # Explicit files, single-row headers tagged by file name
  reportload load CentralReport12-13.csv CentralReport13-14.csv \
    --header-mode single -d groundwater --table staging.reports

  # CI: replace without prompting
  reportload load --connection "$DATABASE_URL" --force`,
	RunE:              runLoad,
	ValidArgsFunction: completeReportFiles,
}

type loadFlagValues struct {
	batch   batchFlags
	conn    connectionFlags
	mode    string
	force   bool
	timeout time.Duration
}

var loadFlags loadFlagValues

func init() {
	rootCmd.AddCommand(loadCmd)

	addBatchFlags(loadCmd, &loadFlags.batch)
	addConnectionFlags(loadCmd, &loadFlags.conn)

	loadCmd.Flags().StringVarP(&loadFlags.mode, "mode", "m", "",
		"Load mode: replace or append (default: replace)")
	loadCmd.Flags().BoolVar(&loadFlags.force, "force", false,
		"Skip the interactive confirmation before replacing an existing table\n"+
			"A short countdown is shown instead; use in CI/CD pipelines")
	loadCmd.Flags().DurationVar(&loadFlags.timeout, "timeout", reportload.DefaultTimeout,
		"Catastrophic failure protection timeout for the whole run\n"+
			"Examples: 30s, 5m, 1h30m")

	_ = loadCmd.RegisterFlagCompletionFunc("mode", completeLoadModes)
}

// buildLoadConfig resolves configuration, inputs and connection without
// touching the files or the database.
func buildLoadConfig(cmd *cobra.Command, args []string, flags loadFlagValues, logger reportload.Logger) (reportload.LoadConfig, *config.ProjectConfig, error) {
	projectCfg, err := loadProjectConfig(flags.batch.config)
	if err != nil {
		return reportload.LoadConfig{}, nil, err
	}
	if flags.mode != "" {
		projectCfg.Mode = reportload.LoadMode(flags.mode)
	}
	if err := applyBatchFlags(projectCfg, flags.batch); err != nil {
		return reportload.LoadConfig{}, nil, err
	}

	inputs, err := resolveInputs(projectCfg, args, flags.batch.format)
	if err != nil {
		return reportload.LoadConfig{}, nil, err
	}

	conn, err := resolveConnection(flags.conn, projectCfg)
	if err != nil {
		return reportload.LoadConfig{}, nil, err
	}
	logConnectionVerbose(logger, conn)

	timeout, err := resolveTimeout(cmd, projectCfg, flags.timeout)
	if err != nil {
		return reportload.LoadConfig{}, nil, err
	}

	cfg := reportload.LoadConfig{
		Files:      inputs,
		Table:      projectCfg.Table,
		Mode:       projectCfg.Mode,
		Connection: conn,
		Force:      flags.force,
		Timeout:    timeout,
		Verbose:    getVerboseFlag(cmd),
	}
	return cfg, projectCfg, cfg.Validate()
}

func runLoad(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	cfg, projectCfg, err := buildLoadConfig(cmd, args, loadFlags, logger)
	if err != nil {
		return err
	}

	assembler, err := newAssembler(projectCfg, filesystem.NewOSFileSystem(), logger)
	if err != nil {
		return err
	}

	var approver reportload.Approver
	if cfg.Force {
		approver = ui.NewForcedApprover(verbose)
	} else {
		approver = ui.NewInteractiveApprover(verbose)
	}

	// Verbose log lines would tear the spinner, so it only runs in quiet mode.
	progress := tui.NewProgress(os.Stderr, tui.IsInteractive() && tui.IsTerminal(os.Stderr) && !verbose)

	svc := services.NewLoadService(
		db.NewConnector,
		services.PgTarget,
		approver,
		assembler,
		logger,
		services.WithProgress(progress),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling load...")
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := svc.Load(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	logger.Verbose("run %s finished in %s (table created: %t)", result.RunID, result.Duration.Round(time.Millisecond), result.TableCreated)
	return nil
}
