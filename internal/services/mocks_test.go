package services

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/groundwater-portal/reportload/internal/batch"
	"github.com/groundwater-portal/reportload/internal/tui"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

type mockConnector struct {
	err   error
	calls int
}

func (m *mockConnector) Connect(_ context.Context) (*pgxpool.Pool, error) {
	m.calls++
	return nil, m.err
}

type mockApprover struct {
	approved bool
	err      error
	asked    []string
}

func (m *mockApprover) RequestApproval(_ context.Context, table string) (bool, error) {
	m.asked = append(m.asked, table)
	return m.approved, m.err
}

type mockTarget struct {
	exists    bool
	existsErr error
	stats     reportload.LoadStats
	loadErr   error

	loaded *reportload.Table
	mode   reportload.LoadMode
}

func (m *mockTarget) TableExists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockTarget) Load(_ context.Context, _ string, data *reportload.Table, mode reportload.LoadMode) (reportload.LoadStats, error) {
	m.loaded = data
	m.mode = mode
	return m.stats, m.loadErr
}

type mockAssembler struct {
	result *batch.Result
	err    error
	files  []batch.FileSpec
}

func (m *mockAssembler) Assemble(_ context.Context, _ string, files []batch.FileSpec) (*batch.Result, error) {
	m.files = files
	return m.result, m.err
}

type recordingProgress struct {
	messages []string
}

func (p *recordingProgress) Run(ctx context.Context, message string, task tui.Task) (string, error) {
	p.messages = append(p.messages, message)
	return task(ctx)
}
