package manager_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundwater-portal/reportload/internal/db/manager"
	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// mockQuerier is a test double for manager.Querier
type mockQuerier struct {
	execSQL  []string
	execErr  error
	querySQL string
	args     []any
	row      pgx.Row
}

func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.execSQL = append(m.execSQL, sql)
	return pgconn.CommandTag{}, m.execErr
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.querySQL = sql
	m.args = args
	return m.row
}

// mockRow is a test double for pgx.Row
type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

func TestParseTableName(t *testing.T) {
	tests := []struct {
		in      string
		want    manager.TableName
		wantErr bool
	}{
		{in: "reports", want: manager.TableName{Name: "reports"}},
		{in: "staging.reports", want: manager.TableName{Schema: "staging", Name: "reports"}},
		{in: "Reports", want: manager.TableName{Name: "Reports"}},
		{in: "", wantErr: true},
		{in: "a.b.c", wantErr: true},
		{in: ".reports", wantErr: true},
		{in: "staging.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := manager.ParseTableName(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, reportload.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestTableName_Sanitize(t *testing.T) {
	assert.Equal(t, `"reports"`, manager.TableName{Name: "reports"}.Sanitize())
	assert.Equal(t, `"staging"."Central ""Reports"""`, manager.TableName{Schema: "staging", Name: `Central "Reports"`}.Sanitize())
}

func TestCreateSQL(t *testing.T) {
	sql := manager.CreateSQL(manager.TableName{Name: "reports"}, []string{"Station", "Level_min_m", `odd "name"`})
	assert.Equal(t, `CREATE TABLE "reports" ("Station" text, "Level_min_m" text, "odd ""name""" text)`, sql)
}

func TestDropSQL(t *testing.T) {
	assert.Equal(t, `DROP TABLE IF EXISTS "staging"."reports"`, manager.DropSQL(manager.TableName{Schema: "staging", Name: "reports"}))
}

func TestManager_TableExists(t *testing.T) {
	q := &mockQuerier{row: &mockRow{scanFunc: func(dest ...any) error {
		*dest[0].(*bool) = true
		return nil
	}}}

	exists, err := manager.New().TableExists(context.Background(), q, manager.TableName{Schema: "staging", Name: "reports"})
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Contains(t, q.querySQL, "to_regclass")
	assert.Equal(t, []any{`"staging"."reports"`}, q.args)
}

func TestManager_TableExists_Error(t *testing.T) {
	q := &mockQuerier{row: &mockRow{scanFunc: func(dest ...any) error { return errors.New("boom") }}}

	_, err := manager.New().TableExists(context.Background(), q, manager.TableName{Name: "reports"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reports")
}

func TestManager_Columns(t *testing.T) {
	q := &mockQuerier{row: &mockRow{scanFunc: func(dest ...any) error {
		*dest[0].(*[]string) = []string{"a", "b"}
		return nil
	}}}

	cols, err := manager.New().Columns(context.Background(), q, manager.TableName{Name: "reports"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cols)
	assert.Contains(t, q.querySQL, "to_regclass($1)")
	assert.Equal(t, []any{`"reports"`}, q.args, "unqualified names resolve through search_path")

	_, err = manager.New().Columns(context.Background(), q, manager.TableName{Schema: "staging", Name: "reports"})
	require.NoError(t, err)
	assert.Equal(t, []any{`"staging"."reports"`}, q.args)
}

func TestManager_DropAndCreate(t *testing.T) {
	q := &mockQuerier{}
	mgr := manager.New()
	table := manager.TableName{Name: "reports"}

	require.NoError(t, mgr.Drop(context.Background(), q, table))
	require.NoError(t, mgr.Create(context.Background(), q, table, []string{"a"}))
	assert.Equal(t, []string{`DROP TABLE IF EXISTS "reports"`, `CREATE TABLE "reports" ("a" text)`}, q.execSQL)

	q.execErr = errors.New("permission denied")
	err := mgr.Create(context.Background(), q, table, []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create table reports")
}

func TestTruncateIdentifier(t *testing.T) {
	short := "Level_min_m"
	assert.Equal(t, short, manager.TruncateIdentifier(short))

	long := strings.Repeat("a", 70)
	assert.Len(t, manager.TruncateIdentifier(long), reportload.MaxIdentifierLength)

	// 62 ASCII bytes followed by a two-byte rune: the rune would straddle byte 63
	multi := strings.Repeat("a", 62) + "é" + "tail"
	got := manager.TruncateIdentifier(multi)
	assert.Equal(t, strings.Repeat("a", 62), got)
}

func TestCheckColumnNames(t *testing.T) {
	assert.NoError(t, manager.CheckColumnNames([]string{"a", "b", "a_2"}))

	err := manager.CheckColumnNames([]string{"a", "b", "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate column "a"`)

	prefix := strings.Repeat("x", reportload.MaxIdentifierLength)
	err = manager.CheckColumnNames([]string{prefix + "_first", prefix + "_second"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identical after truncation")

	assert.Error(t, manager.CheckColumnNames([]string{""}))
}
