// Package query executes raw SQL text against the registry's active
// connection and materializes the result into a JSON-serializable form.
package query

import (
	"context"
	"strings"
	"time"

	"sqlchat/internal/conn"
	"sqlchat/internal/database"
	"sqlchat/internal/logger"
)

// Result is the outcome of executing one SQL statement.
//
// For statements that return rows, Columns preserves the result-set column
// order that the per-row maps cannot. For everything else RowCount carries
// the number of rows affected. Error is the raw engine message, passed
// through verbatim — it is surfaced to the user as diagnostic context.
type Result struct {
	Success  bool             `json:"success"`
	Columns  []string         `json:"columns,omitempty"`
	Rows     []map[string]any `json:"rows,omitempty"`
	RowCount *int64           `json:"row_count,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Executor runs arbitrary SQL against whatever connection is active.
// A failed statement never poisons the registry; the next call starts clean.
type Executor struct {
	reg     *conn.Registry
	log     *logger.Logger
	timeout time.Duration
}

// New creates an Executor. timeout bounds each statement; zero means no
// deadline beyond what the driver enforces.
func New(reg *conn.Registry, timeout time.Duration, log *logger.Logger) *Executor {
	if log == nil {
		log = logger.New(nil)
	}
	return &Executor{reg: reg, log: log, timeout: timeout}
}

// Execute runs exactly the given SQL text. The text is assumed fully
// formed (typically by the oracle upstream) — no parameterization happens
// here. Statements whose leading keyword announces a result set go down
// the rows path; everything else is executed and reports rows affected.
func (e *Executor) Execute(ctx context.Context, sqlText string) Result {
	db, err := e.reg.Active(ctx)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if returnsRows(sqlText) {
		return e.executeQuery(ctx, db, sqlText)
	}
	return e.executeStatement(ctx, db, sqlText)
}

func (e *Executor) executeQuery(ctx context.Context, db database.DB, sqlText string) Result {
	rows, err := db.Query(ctx, sqlText)
	if err != nil {
		e.log.With().Err(err).Logger().Debug("query failed")
		return Result{Success: false, Error: err.Error()}
	}

	columns, data, err := database.ScanRows(rows)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}

	return Result{Success: true, Columns: columns, Rows: data}
}

func (e *Executor) executeStatement(ctx context.Context, db database.DB, sqlText string) Result {
	n, err := db.Exec(ctx, sqlText)
	if err != nil {
		e.log.With().Err(err).Logger().Debug("exec failed")
		return Result{Success: false, Error: err.Error()}
	}
	return Result{Success: true, RowCount: &n}
}

// rowKeywords are the leading SQL keywords that produce a result set.
var rowKeywords = map[string]bool{
	"select":  true,
	"with":    true,
	"show":    true,
	"explain": true,
	"pragma":  true,
	"values":  true,
}

// returnsRows inspects the first keyword of the statement.
func returnsRows(sqlText string) bool {
	trimmed := strings.TrimSpace(sqlText)
	if i := strings.IndexAny(trimmed, " \t\r\n("); i > 0 {
		trimmed = trimmed[:i]
	}
	return rowKeywords[strings.ToLower(trimmed)]
}
