package dataset

import (
	"context"
	"fmt"
	"strings"

	"sqlchat/internal/conn"
	"sqlchat/internal/database"
	"sqlchat/internal/errs"
	"sqlchat/internal/logger"
)

// Policy controls what happens when an import targets a table that already
// holds rows.
type Policy string

const (
	// PolicyReplace deletes existing rows before loading.
	PolicyReplace Policy = "replace"

	// PolicyAppend loads on top of whatever is there.
	PolicyAppend Policy = "append"

	// PolicyFail refuses to touch a table that already has rows.
	PolicyFail Policy = "fail"
)

// ParsePolicy validates a policy string. Empty defaults to replace.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return PolicyReplace, nil
	case PolicyReplace:
		return PolicyReplace, nil
	case PolicyAppend:
		return PolicyAppend, nil
	case PolicyFail:
		return PolicyFail, nil
	}
	return "", errs.Newf(errs.ErrKindInvalidInput, "invalid import policy %q (want replace, append or fail)", s)
}

// TableResult reports one table's import outcome.
type TableResult struct {
	Table       string `json:"table"`
	RowCount    int    `json:"row_count"`
	ColumnCount int    `json:"column_count"`
}

// Result reports a whole import run. Tables lists what was imported in the
// order it happened. Degraded is set when the dependency graph contained a
// cycle and the run fell back to unordered imports — data still loads, but
// foreign keys may point at rows that arrive later.
type Result struct {
	Tables   []string      `json:"tables"`
	Details  []TableResult `json:"details"`
	Degraded bool          `json:"degraded,omitempty"`
}

// Importer loads the built-in sample tables into the active connection,
// ordering multi-table runs so parents land before children.
type Importer struct {
	reg   *conn.Registry
	graph *Graph
	log   *logger.Logger
}

// NewImporter creates an Importer over the registry, using the built-in
// relationship graph.
func NewImporter(reg *conn.Registry, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.New(nil)
	}
	return &Importer{reg: reg, graph: SampleGraph(), log: log}
}

// ImportTable loads one built-in table.
func (im *Importer) ImportTable(ctx context.Context, table string, policy Policy) (Result, error) {
	return im.run(ctx, []string{table}, policy)
}

// ImportRelated loads a table together with its direct relatives: the
// tables it references and the tables that reference it.
func (im *Importer) ImportRelated(ctx context.Context, table string, policy Policy) (Result, error) {
	if _, ok := Table(table); !ok {
		return Result{}, errs.Newf(errs.ErrKindNotFound, "table %q not found in sample data", table)
	}
	return im.run(ctx, im.graph.Closure(table), policy)
}

// ImportAll loads every built-in table.
func (im *Importer) ImportAll(ctx context.Context, policy Policy) (Result, error) {
	return im.run(ctx, Tables(), policy)
}

// run imports the given tables in dependency order. A cycle downgrades to
// the unordered set and marks the result Degraded instead of aborting. The
// first per-table failure stops the run; tables already imported stay
// imported — there is no cross-table rollback.
func (im *Importer) run(ctx context.Context, tables []string, policy Policy) (Result, error) {
	for _, t := range tables {
		if _, ok := Table(t); !ok {
			return Result{}, errs.Newf(errs.ErrKindNotFound, "table %q not found in sample data", t)
		}
	}

	db, err := im.reg.Active(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Tables: []string{}, Details: []TableResult{}}

	ordered, err := im.graph.Order(tables)
	if err != nil {
		if !errs.IsCycleDetected(err) {
			return Result{}, err
		}
		im.log.With().Err(err).Logger().Warn("importing tables unordered")
		res.Degraded = true
	}

	for _, table := range ordered {
		tr, err := im.importOne(ctx, db, table, policy)
		if err != nil {
			return res, err
		}
		res.Tables = append(res.Tables, table)
		res.Details = append(res.Details, tr)
	}

	im.log.With().Int("tables", len(res.Tables)).Logger().Info("sample data imported")
	return res, nil
}

func (im *Importer) importOne(ctx context.Context, db database.DB, table string, policy Policy) (TableResult, error) {
	def, _ := Table(table)

	if _, err := db.Exec(ctx, def.DDL()); err != nil {
		return TableResult{}, err
	}

	switch policy {
	case PolicyFail:
		n, err := countRows(ctx, db, table)
		if err != nil {
			return TableResult{}, err
		}
		if n > 0 {
			return TableResult{}, errs.Newf(errs.ErrKindAlreadyPopulated, "table %q already contains %d rows", table, n)
		}
	case PolicyReplace:
		if _, err := db.Exec(ctx, "DELETE FROM "+database.QuoteIdent(table)); err != nil {
			return TableResult{}, err
		}
	}

	if err := insertRows(ctx, db, def); err != nil {
		return TableResult{}, err
	}

	return TableResult{
		Table:       table,
		RowCount:    len(def.Rows),
		ColumnCount: len(def.Columns),
	}, nil
}

func countRows(ctx context.Context, db database.DB, table string) (int64, error) {
	rows, err := db.Query(ctx, "SELECT COUNT(*) FROM "+database.QuoteIdent(table))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

// insertRows loads a table's seed rows one INSERT at a time. The built-in
// tables are small enough that batching is not worth the dialect gymnastics.
func insertRows(ctx context.Context, db database.DB, def TableDef) error {
	cols := def.ColumnNames()
	quoted := make([]string, len(cols))
	holes := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = database.QuoteIdent(c)
		holes[i] = database.Placeholder(db.Dialect(), i+1)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		database.QuoteIdent(def.Name),
		strings.Join(quoted, ", "),
		strings.Join(holes, ", "))

	for _, row := range def.Rows {
		if _, err := db.Exec(ctx, stmt, row...); err != nil {
			return err
		}
	}
	return nil
}
