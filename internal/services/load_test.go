package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundwater-portal/reportload/internal/batch"
	"github.com/groundwater-portal/reportload/internal/logging"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

type fixture struct {
	connector  *mockConnector
	target     *mockTarget
	approver   *mockApprover
	assembler  *mockAssembler
	progress   *recordingProgress
	gotConfig  *reportload.ConnectionConfig
	factoryErr error
}

func newFixture() *fixture {
	table := &reportload.Table{
		Name:    "reports",
		Columns: []string{"Station", "period"},
		Rows: [][]reportload.Cell{
			{reportload.Text("S1"), reportload.Text("12-13")},
			{reportload.Text("S2"), reportload.Text("13-14")},
		},
	}
	return &fixture{
		connector: &mockConnector{},
		target:    &mockTarget{stats: reportload.LoadStats{RowsLoaded: 2, Created: true}},
		approver:  &mockApprover{approved: true},
		assembler: &mockAssembler{result: &batch.Result{
			Table: table,
			Files: []batch.FileSchema{{Path: "a.csv"}, {Path: "b.csv"}},
		}},
		progress: &recordingProgress{},
	}
}

func (f *fixture) service() *LoadService {
	factory := func(cfg *reportload.ConnectionConfig, _ reportload.Logger) (reportload.Connector, error) {
		f.gotConfig = cfg
		if f.factoryErr != nil {
			return nil, f.factoryErr
		}
		return f.connector, nil
	}
	targets := func(_ *pgxpool.Pool, _ reportload.Logger) Target { return f.target }
	return NewLoadService(factory, targets, f.approver, f.assembler, logging.NewNullLogger(),
		WithProgress(f.progress),
		WithRunID(func() string { return "0123456789abcdef" }))
}

func loadConfig(mode reportload.LoadMode) reportload.LoadConfig {
	return reportload.LoadConfig{
		Files: []reportload.InputFile{
			{Path: "a.csv", Layout: reportload.DefaultLayout},
			{Path: "b.csv", Layout: reportload.DefaultLayout},
		},
		Table:      "reports",
		Mode:       mode,
		Connection: &reportload.ConnectionConfig{Host: "localhost", Port: 5432, Database: "reports"},
	}
}

func TestLoad_ReplaceNewTableSkipsApproval(t *testing.T) {
	f := newFixture()

	result, err := f.service().Load(context.Background(), loadConfig(reportload.LoadModeReplace))
	require.NoError(t, err)

	assert.Empty(t, f.approver.asked)
	assert.Equal(t, reportload.LoadModeReplace, f.target.mode)
	assert.Same(t, f.assembler.result.Table, f.target.loaded)
	assert.Equal(t, "0123456789abcdef", result.RunID)
	assert.Equal(t, 2, result.Files)
	assert.Equal(t, int64(2), result.RowsLoaded)
	assert.True(t, result.TableCreated)
	assert.Equal(t, []string{"Station", "period"}, result.Columns)
	assert.Equal(t, []string{"Loading 2 rows into reports (replace)"}, f.progress.messages)
}

func TestLoad_SetsApplicationNameWithoutMutatingInput(t *testing.T) {
	f := newFixture()
	cfg := loadConfig(reportload.LoadModeAppend)

	_, err := f.service().Load(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "reportload-01234567", f.gotConfig.AppName)
	assert.Empty(t, cfg.Connection.AppName)
}

func TestLoad_KeepsExplicitApplicationName(t *testing.T) {
	f := newFixture()
	cfg := loadConfig(reportload.LoadModeAppend)
	cfg.Connection.AppName = "nightly"

	_, err := f.service().Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "nightly", f.gotConfig.AppName)
}

func TestLoad_ReplaceExistingTableRequiresApproval(t *testing.T) {
	f := newFixture()
	f.target.exists = true

	_, err := f.service().Load(context.Background(), loadConfig(reportload.LoadModeReplace))
	require.NoError(t, err)
	assert.Equal(t, []string{"reports"}, f.approver.asked)
}

func TestLoad_ApprovalDenied(t *testing.T) {
	f := newFixture()
	f.target.exists = true
	f.approver.approved = false

	_, err := f.service().Load(context.Background(), loadConfig(reportload.LoadModeReplace))
	require.Error(t, err)
	assert.ErrorIs(t, err, reportload.ErrApprovalDenied)
	assert.Equal(t, reportload.ExitApprovalDenied, reportload.ExitCodeForError(err))
	assert.Nil(t, f.target.loaded)
}

func TestLoad_ApprovalCancelled(t *testing.T) {
	f := newFixture()
	f.target.exists = true
	f.approver.err = context.Canceled

	_, err := f.service().Load(context.Background(), loadConfig(reportload.LoadModeReplace))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, f.target.loaded)
}

func TestLoad_AppendNeverAsks(t *testing.T) {
	f := newFixture()
	f.target.exists = true

	_, err := f.service().Load(context.Background(), loadConfig(reportload.LoadModeAppend))
	require.NoError(t, err)
	assert.Empty(t, f.approver.asked)
	assert.Equal(t, reportload.LoadModeAppend, f.target.mode)
}

func TestLoad_AssemblyFailureNeverConnects(t *testing.T) {
	f := newFixture()
	f.assembler.err = &reportload.SchemaMismatchError{Path: "b.csv", HeaderColumns: 3, DataColumns: 4}

	_, err := f.service().Load(context.Background(), loadConfig(reportload.LoadModeReplace))
	assert.ErrorIs(t, err, reportload.ErrSchemaMismatch)
	assert.Nil(t, f.gotConfig)
	assert.Equal(t, 0, f.connector.calls)
}

func TestLoad_InvalidConfig(t *testing.T) {
	f := newFixture()
	cfg := loadConfig(reportload.LoadModeReplace)
	cfg.Files = nil

	_, err := f.service().Load(context.Background(), cfg)
	assert.ErrorIs(t, err, reportload.ErrInvalidConfig)
	assert.Nil(t, f.assembler.files)
}

func TestLoad_ConnectorErrors(t *testing.T) {
	f := newFixture()
	f.factoryErr = reportload.ErrUnsupportedAuthMethod
	_, err := f.service().Load(context.Background(), loadConfig(reportload.LoadModeAppend))
	assert.ErrorIs(t, err, reportload.ErrUnsupportedAuthMethod)

	f = newFixture()
	f.connector.err = fmt.Errorf("refused: %w", reportload.ErrConnectionFailed)
	_, err = f.service().Load(context.Background(), loadConfig(reportload.LoadModeAppend))
	assert.ErrorIs(t, err, reportload.ErrConnectionFailed)
	assert.Nil(t, f.target.loaded)
}

func TestLoad_LoadErrorPropagates(t *testing.T) {
	f := newFixture()
	f.target.loadErr = &reportload.LoadError{Table: "reports", Err: errors.New("copy failed")}

	_, err := f.service().Load(context.Background(), loadConfig(reportload.LoadModeAppend))
	assert.ErrorIs(t, err, reportload.ErrLoad)
}

func TestNewLoadService_PanicsOnNilDependencies(t *testing.T) {
	f := newFixture()
	factory := func(*reportload.ConnectionConfig, reportload.Logger) (reportload.Connector, error) { return nil, nil }
	assert.Panics(t, func() {
		NewLoadService(nil, PgTarget, f.approver, f.assembler, logging.NewNullLogger())
	})
	assert.Panics(t, func() {
		NewLoadService(factory, PgTarget, nil, f.assembler, logging.NewNullLogger())
	})
	assert.Panics(t, func() {
		NewLoadService(factory, PgTarget, f.approver, nil, logging.NewNullLogger())
	})
}

func TestApplicationName(t *testing.T) {
	assert.Equal(t, "reportload-abc", applicationName("abc"))
	assert.Equal(t, "reportload-01234567", applicationName("0123456789"))
}
