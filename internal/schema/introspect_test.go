package schema

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlchat/internal/conn"
	"sqlchat/internal/database"
)

func newTestIntrospector(t *testing.T) (*Introspector, *conn.Registry) {
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
	return New(reg, nil), reg
}

func mustExec(t *testing.T, reg *conn.Registry, sql string) {
	t.Helper()
	db, err := reg.Active(context.Background())
	require.NoError(t, err)
	_, err = db.Exec(context.Background(), sql)
	require.NoError(t, err)
}

func TestIntrospector_TableNames(t *testing.T) {
	intr, reg := newTestIntrospector(t)
	ctx := context.Background()

	// empty database reports an empty, non-nil slice
	tables, err := intr.TableNames(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Empty(t, tables)

	mustExec(t, reg, "CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT)")
	mustExec(t, reg, "CREATE TABLE orders (id INTEGER PRIMARY KEY)")

	tables, err = intr.TableNames(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"customers", "orders"}, tables)
}

func TestIntrospector_TableSchema(t *testing.T) {
	intr, reg := newTestIntrospector(t)
	ctx := context.Background()

	mustExec(t, reg, "CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT, created_at DATE)")

	cols, err := intr.TableSchema(ctx, "customers")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, database.Column{Name: "id", DataType: "INTEGER"}, cols[0])
	assert.Equal(t, database.Column{Name: "name", DataType: "TEXT"}, cols[1])

	// a missing table yields an empty slice, not an error
	cols, err = intr.TableSchema(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestIntrospector_AllSchemas(t *testing.T) {
	intr, reg := newTestIntrospector(t)
	ctx := context.Background()

	mustExec(t, reg, "CREATE TABLE a (id INTEGER)")
	mustExec(t, reg, "CREATE TABLE b (id INTEGER, label TEXT)")

	schemas, err := intr.AllSchemas(ctx)
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	assert.Len(t, schemas["a"], 1)
	assert.Len(t, schemas["b"], 2)
}

func TestIntrospector_PromptString(t *testing.T) {
	intr, reg := newTestIntrospector(t)
	ctx := context.Background()

	desc, err := intr.PromptString(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No tables found in the database.", desc)

	mustExec(t, reg, "CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT)")
	mustExec(t, reg, "CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER)")

	desc, err = intr.PromptString(ctx)
	require.NoError(t, err)

	assert.Contains(t, desc, "Table: customers")
	assert.Contains(t, desc, "  - id (INTEGER)")
	assert.Contains(t, desc, "  - name (TEXT)")
	assert.Contains(t, desc, "Table: orders")

	// deterministic ordering: customers before orders
	assert.Less(t,
		strings.Index(desc, "Table: customers"),
		strings.Index(desc, "Table: orders"))
}
