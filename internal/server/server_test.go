package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlchat/internal/config"
	"sqlchat/internal/conn"
	"sqlchat/internal/database"
	"sqlchat/internal/dataset"
	"sqlchat/internal/errs"
	"sqlchat/internal/logger"
	"sqlchat/internal/query"
	"sqlchat/internal/schema"
)

// stubOracle returns a canned statement, or an error when SQL is empty.
type stubOracle struct {
	sql string
}

func (s stubOracle) GenerateSQL(ctx context.Context, question, schemaDesc string) (string, error) {
	if s.sql == "" {
		return "", errs.New(errs.ErrKindOracleFailed, "generation unavailable")
	}
	return s.sql, nil
}

type testEnv struct {
	ts  *httptest.Server
	reg *conn.Registry
	dir string
}

func newTestEnv(t *testing.T, gen stubOracle) *testEnv {
	t.Helper()
	dir := t.TempDir()

	log := logger.New(&logger.Config{Level: "error", Output: bytes.NewBuffer(nil)})

	store := conn.NewStore(filepath.Join(dir, "connections.json"), "test-secret", log)
	require.NoError(t, store.Save([]conn.Descriptor{{
		Name:             conn.DefaultName,
		Engine:           database.EngineSQLite,
		ConnectionString: filepath.Join(dir, "test.db"),
	}}))

	reg := conn.NewRegistry(store, log)
	t.Cleanup(reg.Close)

	srv := New(Deps{
		Registry:     reg,
		Introspector: schema.New(reg, log),
		Executor:     query.New(reg, 10*time.Second, log),
		Importer:     dataset.NewImporter(reg, log),
		Oracle:       gen,
		Query:        config.QueryConfig{Timeout: 10 * time.Second, PreviewRows: 10},
		Log:          log,
	})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, reg: reg, dir: dir}
}

func (e *testEnv) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(e.ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) post(t *testing.T, path string, body, out any) int {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(e.ts.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) importAll(t *testing.T) {
	t.Helper()
	var res map[string]any
	code := e.post(t, "/import/all", map[string]any{}, &res)
	require.Equal(t, http.StatusOK, code, res)
}

func TestServer_Health(t *testing.T) {
	env := newTestEnv(t, stubOracle{sql: "SELECT 1"})

	var res map[string]any
	code := env.get(t, "/health", &res)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, res["success"])
	assert.Equal(t, "ok", res["status"])
	assert.Equal(t, "default", res["database"])
}

func TestServer_TablesAndSchema(t *testing.T) {
	env := newTestEnv(t, stubOracle{sql: "SELECT 1"})
	env.importAll(t)

	var tablesRes struct {
		Success bool     `json:"success"`
		Tables  []string `json:"tables"`
	}
	code := env.get(t, "/tables", &tablesRes)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, tablesRes.Success)
	assert.Contains(t, tablesRes.Tables, "customers")
	assert.Contains(t, tablesRes.Tables, "orders")

	var schemaRes struct {
		Success bool                         `json:"success"`
		Schema  map[string][]database.Column `json:"schema"`
	}
	code = env.post(t, "/schema", map[string]string{"table_name": "customers"}, &schemaRes)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, schemaRes.Schema, 1)
	assert.Equal(t, "id", schemaRes.Schema["customers"][0].Name)

	// unknown table is a 404
	var errRes map[string]any
	code = env.post(t, "/schema", map[string]string{"table_name": "ghost"}, &errRes)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, errRes["success"])

	// no table name returns every schema
	code = env.post(t, "/schema", map[string]string{}, &schemaRes)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, schemaRes.Schema, 8)
}

func TestServer_TablePreview(t *testing.T) {
	env := newTestEnv(t, stubOracle{sql: "SELECT 1"})
	env.importAll(t)

	var res struct {
		Success bool             `json:"success"`
		Table   string           `json:"table"`
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	code := env.get(t, "/tables/customers/preview?limit=3", &res)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, res.Success)
	assert.Equal(t, "customers", res.Table)
	assert.Len(t, res.Rows, 3)
	assert.Contains(t, res.Columns, "name")

	code = env.get(t, "/tables/ghost/preview", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code = env.get(t, "/tables/customers/preview?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestServer_Query(t *testing.T) {
	env := newTestEnv(t, stubOracle{sql: "SELECT name FROM customers ORDER BY id LIMIT 2"})
	env.importAll(t)

	var res struct {
		Success bool             `json:"success"`
		SQL     string           `json:"sql"`
		Data    []map[string]any `json:"data"`
	}
	code := env.post(t, "/query", map[string]string{"question": "who are my customers?"}, &res)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, res.Success)
	assert.Equal(t, "SELECT name FROM customers ORDER BY id LIMIT 2", res.SQL)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "John Smith", res.Data[0]["name"])
}

func TestServer_QueryEmptyQuestion(t *testing.T) {
	env := newTestEnv(t, stubOracle{sql: "SELECT 1"})

	code := env.post(t, "/query", map[string]string{"question": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestServer_QueryOracleFailure(t *testing.T) {
	env := newTestEnv(t, stubOracle{})

	var res map[string]any
	code := env.post(t, "/query", map[string]string{"question": "anything"}, &res)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, false, res["success"])
}

func TestServer_QueryBadGeneratedSQLStillReturnsSQL(t *testing.T) {
	env := newTestEnv(t, stubOracle{sql: "SELECT * FROM no_such_table"})

	var res struct {
		Success bool   `json:"success"`
		SQL     string `json:"sql"`
		Error   string `json:"error"`
	}
	code := env.post(t, "/query", map[string]string{"question": "anything"}, &res)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, res.Success)
	assert.Equal(t, "SELECT * FROM no_such_table", res.SQL)
	assert.NotEmpty(t, res.Error)
}

func TestServer_RawSQL(t *testing.T) {
	env := newTestEnv(t, stubOracle{sql: "SELECT 1"})
	env.importAll(t)

	var res struct {
		Success  bool   `json:"success"`
		RowCount *int64 `json:"row_count"`
	}
	code := env.post(t, "/sql", map[string]string{"sql": "DELETE FROM feedback"}, &res)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, res.Success)
	require.NotNil(t, res.RowCount)
	assert.Equal(t, int64(5), *res.RowCount)
}

func TestServer_ConnectionLifecycle(t *testing.T) {
	env := newTestEnv(t, stubOracle{sql: "SELECT 1"})

	// add
	code := env.post(t, "/connections/add", map[string]string{
		"name":              "scratch",
		"display_name":      "Scratch DB",
		"type":              "sqlite",
		"connection_string": filepath.Join(env.dir, "scratch.db"),
	}, nil)
	require.Equal(t, http.StatusOK, code)

	// list: two connections, scratch active
	var listRes struct {
		Success     bool        `json:"success"`
		Connections []conn.Info `json:"connections"`
	}
	code = env.get(t, "/connections", &listRes)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, listRes.Connections, 2)

	var activeRes struct {
		Connection conn.Info `json:"connection"`
	}
	code = env.get(t, "/connections/active", &activeRes)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "scratch", activeRes.Connection.Name)

	// duplicate add is a conflict
	code = env.post(t, "/connections/add", map[string]string{
		"name":              "scratch",
		"type":              "sqlite",
		"connection_string": filepath.Join(env.dir, "other.db"),
	}, nil)
	assert.Equal(t, http.StatusConflict, code)

	// switch back to default
	code = env.post(t, "/connections/switch", map[string]string{"name": "default"}, nil)
	require.Equal(t, http.StatusOK, code)

	// switching to an unknown name is a 404
	code = env.post(t, "/connections/switch", map[string]string{"name": "ghost"}, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// default cannot be removed
	req, err := http.NewRequest(http.MethodDelete, env.ts.URL+"/connections/default", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// scratch can
	req, err = http.NewRequest(http.MethodDelete, env.ts.URL+"/connections/scratch", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Datasets(t *testing.T) {
	env := newTestEnv(t, stubOracle{sql: "SELECT 1"})

	var res struct {
		Success bool `json:"success"`
		Tables  []struct {
			Name      string   `json:"name"`
			Rows      int      `json:"rows"`
			DependsOn []string `json:"depends_on"`
		} `json:"tables"`
	}
	code := env.get(t, "/datasets", &res)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, res.Tables, 8)

	// no object store configured
	code = env.get(t, "/datasets/files", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_ImportEndpoints(t *testing.T) {
	env := newTestEnv(t, stubOracle{sql: "SELECT 1"})

	var res struct {
		Success bool     `json:"success"`
		Tables  []string `json:"tables"`
	}
	code := env.post(t, "/import/table", map[string]string{"table": "customers"}, &res)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"customers"}, res.Tables)

	code = env.post(t, "/import/related", map[string]string{"table": "orders"}, &res)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, res.Tables, 4)

	// fail policy against populated table
	code = env.post(t, "/import/table", map[string]string{"table": "customers", "policy": "fail"}, nil)
	assert.Equal(t, http.StatusConflict, code)

	// unknown table
	code = env.post(t, "/import/table", map[string]string{"table": "unicorns"}, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// bad policy
	code = env.post(t, "/import/table", map[string]string{"table": "customers", "policy": "upsert"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestServer_CSVImportAndPreview(t *testing.T) {
	env := newTestEnv(t, stubOracle{sql: "SELECT 1"})

	csvPath := filepath.Join(env.dir, "cities.csv")
	require.NoError(t, os.WriteFile(csvPath,
		[]byte("id,city,population\n1,Springfield,30000\n2,Shelbyville,25000\n"), 0o600))

	var preview struct {
		Success   bool             `json:"success"`
		Columns   []string         `json:"columns"`
		Rows      []map[string]any `json:"preview_data"`
		TotalRows int              `json:"total_rows"`
	}
	code := env.post(t, "/import/csv/preview", map[string]any{"path": csvPath, "rows": 1}, &preview)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"id", "city", "population"}, preview.Columns)
	assert.Equal(t, 2, preview.TotalRows)
	assert.Len(t, preview.Rows, 1)

	var imported struct {
		Success  bool   `json:"success"`
		Table    string `json:"table"`
		RowCount int    `json:"row_count"`
	}
	code = env.post(t, "/import/csv", map[string]any{"path": csvPath, "table": "cities"}, &imported)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "cities", imported.Table)
	assert.Equal(t, 2, imported.RowCount)

	// the imported table is queryable
	var sqlRes struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
	}
	code = env.post(t, "/sql", map[string]string{"sql": "SELECT city FROM cities ORDER BY id"}, &sqlRes)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, sqlRes.Data, 2)
	assert.Equal(t, "Springfield", sqlRes.Data[0]["city"])

	// missing source
	code = env.post(t, "/import/csv", map[string]any{"table": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// nonexistent file
	code = env.post(t, "/import/csv", map[string]any{"path": filepath.Join(env.dir, "nope.csv"), "table": "x"}, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_UnknownFieldRejected(t *testing.T) {
	env := newTestEnv(t, stubOracle{sql: "SELECT 1"})

	code := env.post(t, "/query", map[string]string{"quest": "typo"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
