// Package services orchestrates a load run: assemble the batch, connect,
// confirm destructive replacement, and bulk-load.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/groundwater-portal/reportload/internal/batch"
	"github.com/groundwater-portal/reportload/internal/db/pgload"
	"github.com/groundwater-portal/reportload/internal/tui"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// Target is the destination side of a load.
type Target interface {
	reportload.BulkLoader
	reportload.TableInspector
}

// TargetFactory builds a Target on an open pool.
type TargetFactory func(pool *pgxpool.Pool, logger reportload.Logger) Target

// PgTarget is the TargetFactory backed by COPY.
func PgTarget(pool *pgxpool.Pool, logger reportload.Logger) Target {
	return pgload.New(pool, logger)
}

// Assembler turns the input files into one unified table.
type Assembler interface {
	Assemble(ctx context.Context, name string, files []batch.FileSpec) (*batch.Result, error)
}

// ProgressReporter wraps the bulk load, e.g. with a spinner.
type ProgressReporter interface {
	Run(ctx context.Context, message string, task tui.Task) (string, error)
}

// Option configures a LoadService.
type Option func(*LoadService)

// WithProgress reports the bulk load through p.
func WithProgress(p ProgressReporter) Option {
	return func(s *LoadService) { s.progress = p }
}

// WithRunID fixes the run identifier generator. Tests use it for stable output.
func WithRunID(gen func() string) Option {
	return func(s *LoadService) { s.newRunID = gen }
}

// LoadService implements one load run.
// Not safe for concurrent Load calls on the same instance.
type LoadService struct {
	connectorFactory reportload.ConnectorFactory
	targetFactory    TargetFactory
	approver         reportload.Approver
	assembler        Assembler
	logger           reportload.Logger
	progress         ProgressReporter
	newRunID         func() string
	now              func() time.Time
}

// NewLoadService creates a LoadService. Nil dependencies are programmer
// errors and panic at construction.
func NewLoadService(
	connectorFactory reportload.ConnectorFactory,
	targetFactory TargetFactory,
	approver reportload.Approver,
	assembler Assembler,
	logger reportload.Logger,
	opts ...Option,
) *LoadService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if targetFactory == nil {
		panic("targetFactory cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if assembler == nil {
		panic("assembler cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	s := &LoadService{
		connectorFactory: connectorFactory,
		targetFactory:    targetFactory,
		approver:         approver,
		assembler:        assembler,
		logger:           logger,
		newRunID:         uuid.NewString,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load assembles every input file and loads the unified table.
// Nothing touches the database unless the whole batch assembled.
func (s *LoadService) Load(ctx context.Context, cfg reportload.LoadConfig) (*reportload.LoadResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := s.now()
	runID := s.newRunID()
	s.logger.Verbose("run %s: %d file(s) into %s (%s)", runID, len(cfg.Files), cfg.Table, cfg.Mode)

	assembled, err := s.assembler.Assemble(ctx, cfg.Table, cfg.Files)
	if err != nil {
		return nil, err
	}

	conn := *cfg.Connection
	if conn.AppName == "" {
		conn.AppName = applicationName(runID)
	}
	connector, err := s.connectorFactory(&conn, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}
	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		defer pool.Close()
	}
	target := s.targetFactory(pool, s.logger)

	if cfg.Mode == reportload.LoadModeReplace {
		if err := s.confirmReplace(ctx, target, cfg.Table); err != nil {
			return nil, err
		}
	}

	stats, err := s.bulkLoad(ctx, target, cfg, assembled.Table)
	if err != nil {
		return nil, err
	}

	result := &reportload.LoadResult{
		RunID:        runID,
		Table:        cfg.Table,
		Mode:         cfg.Mode,
		Files:        len(assembled.Files),
		RowsLoaded:   stats.RowsLoaded,
		Columns:      assembled.Table.Columns,
		TableCreated: stats.Created,
		Duration:     s.now().Sub(start),
	}
	s.logger.Info("✓ Loaded %d rows from %d file(s) into %s", result.RowsLoaded, result.Files, result.Table)
	return result, nil
}

// confirmReplace asks for approval only when replace would destroy an existing table.
func (s *LoadService) confirmReplace(ctx context.Context, target Target, table string) error {
	exists, err := target.TableExists(ctx, table)
	if err != nil {
		return fmt.Errorf("failed to check table %s: %w", table, err)
	}
	if !exists {
		s.logger.Verbose("table %s does not exist; it will be created", table)
		return nil
	}

	approved, err := s.approver.RequestApproval(ctx, table)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("approval failed: %w", err)
	}
	if !approved {
		return fmt.Errorf("replacement of table %s not approved: %w", table, reportload.ErrApprovalDenied)
	}
	return nil
}

func (s *LoadService) bulkLoad(ctx context.Context, target Target, cfg reportload.LoadConfig, data *reportload.Table) (reportload.LoadStats, error) {
	var stats reportload.LoadStats
	task := func(ctx context.Context) (string, error) {
		var err error
		stats, err = target.Load(ctx, cfg.Table, data, cfg.Mode)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d rows copied into %s", stats.RowsLoaded, cfg.Table), nil
	}

	if s.progress == nil {
		_, err := task(ctx)
		return stats, err
	}
	message := fmt.Sprintf("Loading %d rows into %s (%s)", data.NumRows(), cfg.Table, cfg.Mode)
	_, err := s.progress.Run(ctx, message, task)
	return stats, err
}

// applicationName tags server sessions of one run, visible in pg_stat_activity.
func applicationName(runID string) string {
	if len(runID) > 8 {
		runID = runID[:8]
	}
	return "reportload-" + runID
}
