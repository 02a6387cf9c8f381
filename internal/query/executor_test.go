package query

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlchat/internal/conn"
	"sqlchat/internal/database"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	dir := t.TempDir()

	store := conn.NewStore(filepath.Join(dir, "connections.json"), "test-secret", nil)
	require.NoError(t, store.Save([]conn.Descriptor{{
		Name:             conn.DefaultName,
		Engine:           database.EngineSQLite,
		ConnectionString: filepath.Join(dir, "test.db"),
	}}))

	reg := conn.NewRegistry(store, nil)
	t.Cleanup(reg.Close)
	return New(reg, 10*time.Second, nil)
}

func TestExecutor_Select(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	res := exec.Execute(ctx, "SELECT 1 AS one, 'a' AS letter")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, []string{"one", "letter"}, res.Columns)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(1), res.Rows[0]["one"])
	assert.Equal(t, "a", res.Rows[0]["letter"])
	assert.Nil(t, res.RowCount)
}

func TestExecutor_Statements(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	res := exec.Execute(ctx, "CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)")
	require.True(t, res.Success, res.Error)

	res = exec.Execute(ctx, "INSERT INTO notes (body) VALUES ('hello'), ('world')")
	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.RowCount)
	assert.Equal(t, int64(2), *res.RowCount)

	res = exec.Execute(ctx, "UPDATE notes SET body = 'hi'")
	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.RowCount)
	assert.Equal(t, int64(2), *res.RowCount)

	res = exec.Execute(ctx, "SELECT body FROM notes")
	require.True(t, res.Success, res.Error)
	assert.Len(t, res.Rows, 2)
}

func TestExecutor_BadSQLDoesNotPoison(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	res := exec.Execute(ctx, "SELECT * FROM no_such_table")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)

	// the next statement works fine
	res = exec.Execute(ctx, "SELECT 42 AS answer")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, int64(42), res.Rows[0]["answer"])
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT * FROM t", true},
		{"  select 1", true},
		{"WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"EXPLAIN SELECT 1", true},
		{"PRAGMA table_info(t)", true},
		{"VALUES (1), (2)", true},
		{"INSERT INTO t VALUES (1)", false},
		{"UPDATE t SET a = 1", false},
		{"DELETE FROM t", false},
		{"CREATE TABLE t (id INTEGER)", false},
		{"DROP TABLE t", false},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			assert.Equal(t, tt.want, returnsRows(tt.sql))
		})
	}
}
