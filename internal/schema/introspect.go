// Package schema introspects the active connection's live schema.
//
// Nothing here is cached: every call re-queries the engine's metadata
// catalog. Schemas change rarely, but they must never be stale right after
// an import, so freshness wins over latency.
package schema

import (
	"context"

	"sqlchat/internal/conn"
	"sqlchat/internal/database"
	"sqlchat/internal/logger"
)

// Introspector reads table and column metadata through the registry's
// active connection. Errors are returned tagged, not swallowed — callers
// can tell "no tables" apart from "introspection broke".
type Introspector struct {
	reg *conn.Registry
	log *logger.Logger
}

// New creates an Introspector over the given registry.
func New(reg *conn.Registry, log *logger.Logger) *Introspector {
	if log == nil {
		log = logger.New(nil)
	}
	return &Introspector{reg: reg, log: log}
}

// TableNames returns all user-defined table names in the active database.
func (i *Introspector) TableNames(ctx context.Context) ([]string, error) {
	db, err := i.reg.Active(ctx)
	if err != nil {
		return nil, err
	}

	tables, err := db.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []string{}
	}
	return tables, nil
}

// TableSchema returns the columns of one table in declaration order.
// A table that does not exist yields an empty slice and no error;
// introspection failures are returned as errors.
func (i *Introspector) TableSchema(ctx context.Context, table string) ([]database.Column, error) {
	db, err := i.reg.Active(ctx)
	if err != nil {
		return nil, err
	}

	exists, err := db.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []database.Column{}, nil
	}

	return db.TableColumns(ctx, table)
}

// AllSchemas returns the schema of every table in the active database,
// keyed by table name.
func (i *Introspector) AllSchemas(ctx context.Context) (map[string][]database.Column, error) {
	db, err := i.reg.Active(ctx)
	if err != nil {
		return nil, err
	}

	tables, err := db.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	schemas := make(map[string][]database.Column, len(tables))
	for _, table := range tables {
		cols, err := db.TableColumns(ctx, table)
		if err != nil {
			return nil, err
		}
		schemas[table] = cols
	}
	return schemas, nil
}
