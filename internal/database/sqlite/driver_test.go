package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlchat/internal/database"
	"sqlchat/internal/errs"
)

func newTestDB(t *testing.T) *Driver {
	t.Helper()

	cfg := database.DefaultConfig(database.EngineSQLite, filepath.Join(t.TempDir(), "test.db"))
	db, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestDriver_PingAndDialect(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Ping(context.Background()))
	assert.Equal(t, database.DialectSQLite, db.Dialect())
}

func TestDriver_ExecAndQuery(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, "CREATE TABLE pets (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)")
	require.NoError(t, err)

	n, err := db.Exec(ctx, "INSERT INTO pets (id, name, age) VALUES (?, ?, ?)", 1, "Rex", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = db.Exec(ctx, "INSERT INTO pets (id, name, age) VALUES (?, ?, ?)", 2, "Mia", 2)
	require.NoError(t, err)

	rows, err := db.Query(ctx, "SELECT id, name, age FROM pets ORDER BY id")
	require.NoError(t, err)

	columns, data, err := database.ScanRows(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "age"}, columns)
	require.Len(t, data, 2)
	assert.Equal(t, "Rex", data[0]["name"])
	assert.Equal(t, int64(2), data[1]["id"])
}

func TestDriver_ListTables(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tables, err := db.ListTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)

	_, err = db.Exec(ctx, "CREATE TABLE alpha (id INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec(ctx, "CREATE TABLE beta (id INTEGER)")
	require.NoError(t, err)

	tables, err = db.ListTables(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, tables)
}

func TestDriver_TableColumns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, "CREATE TABLE books (id INTEGER PRIMARY KEY, title TEXT, pages INTEGER)")
	require.NoError(t, err)

	cols, err := db.TableColumns(ctx, "books")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, "INTEGER", cols[0].DataType)
	assert.Equal(t, "title", cols[1].Name)
	assert.Equal(t, "TEXT", cols[1].DataType)

	cols, err = db.TableColumns(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestDriver_TableExists(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	exists, err := db.TableExists(ctx, "nothing")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = db.Exec(ctx, "CREATE TABLE real_table (id INTEGER)")
	require.NoError(t, err)

	exists, err = db.TableExists(ctx, "real_table")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDriver_QueryErrorTagged(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Query(context.Background(), "SELECT * FROM no_such_table")
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err) || errs.IsNotFound(err))
}
