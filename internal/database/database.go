// Package database defines the engine-neutral contract every SQL backend
// implements. All layers above this package talk only to these interfaces —
// they never import the sqlite, postgres or mysql packages directly.
package database

import "context"

// Engine identifies the database backend.
type Engine string

const (
	EngineSQLite   Engine = "sqlite"
	EnginePostgres Engine = "postgresql"
	EngineMySQL    Engine = "mysql"
)

// Valid reports whether e names a supported engine.
func (e Engine) Valid() bool {
	switch e {
	case EngineSQLite, EnginePostgres, EngineMySQL:
		return true
	}
	return false
}

// Column describes one column of a table: its name and the declared type
// string exactly as the engine reports it.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// DB is the central contract for all database operations.
type DB interface {
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the connection pool.
	Close()

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// Exec executes a SQL statement that returns no rows and reports the
	// number of rows affected.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// ListTables returns all user-defined table names.
	ListTables(ctx context.Context) ([]string, error)

	// TableColumns returns the columns of a table in declaration order.
	// A missing table yields an empty slice and no error.
	TableColumns(ctx context.Context, table string) ([]Column, error)

	// TableExists reports whether a table with the given name exists.
	TableExists(ctx context.Context, table string) (bool, error)

	// Dialect returns the placeholder dialect for building parameterized SQL.
	Dialect() Dialect
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Columns returns the column names of the result set.
	Columns() ([]string, error)

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}
