package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"sqlchat/internal/database"
	"sqlchat/internal/errs"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "sqlchat API is running"})
}

// handleHealth probes the active database connection.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	type health struct {
		Success  bool   `json:"success"`
		Status   string `json:"status"`
		Database string `json:"database"`
	}

	db, err := s.reg.Active(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, health{Success: false, Status: "degraded", Database: err.Error()})
		return
	}
	if err := db.Ping(r.Context()); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, health{Success: false, Status: "degraded", Database: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, health{Success: true, Status: "ok", Database: s.reg.ActiveName()})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.intr.TableNames(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		Success bool     `json:"success"`
		Tables  []string `json:"tables"`
	}{true, tables})
}

// handleTablePreview returns the first rows of a table. The limit query
// parameter caps the page, bounded by the configured maximum.
func (s *Server) handleTablePreview(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	db, err := s.reg.Active(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	exists, err := db.TableExists(r.Context(), table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !exists {
		s.writeError(w, errs.Newf(errs.ErrKindNotFound, "table %q not found", table))
		return
	}

	limit := s.qcfg.PreviewRows
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, errs.Newf(errs.ErrKindInvalidInput, "invalid limit %q", raw))
			return
		}
		if n < limit {
			limit = n
		}
	}

	sql, args, err := database.Select(table, db.Dialect()).Limit(limit).Build()
	if err != nil {
		s.writeError(w, err)
		return
	}

	rows, err := db.Query(r.Context(), sql, args...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	columns, data, err := database.ScanRows(rows)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		Success bool             `json:"success"`
		Table   string           `json:"table"`
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}{true, table, columns, data})
}

// handleSchema returns the column layout of one table, or of every table
// when the request names none.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableName string `json:"table_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	type schemaResponse struct {
		Success bool                         `json:"success"`
		Schema  map[string][]database.Column `json:"schema"`
	}

	if req.TableName != "" {
		cols, err := s.intr.TableSchema(r.Context(), req.TableName)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if len(cols) == 0 {
			s.writeError(w, errs.Newf(errs.ErrKindNotFound, "table %q not found", req.TableName))
			return
		}
		s.writeJSON(w, http.StatusOK, schemaResponse{true, map[string][]database.Column{req.TableName: cols}})
		return
	}

	schemas, err := s.intr.AllSchemas(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, schemaResponse{true, schemas})
}

// queryResponse is the answer to a natural-language question: the SQL the
// oracle produced plus the outcome of running it. A failed execution still
// returns the SQL so the user can see what was attempted.
type queryResponse struct {
	Success  bool             `json:"success"`
	SQL      string           `json:"sql,omitempty"`
	Columns  []string         `json:"columns,omitempty"`
	Data     []map[string]any `json:"data,omitempty"`
	RowCount *int64           `json:"row_count,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "question cannot be empty"))
		return
	}

	schemaDesc, err := s.intr.PromptString(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	sql, err := s.oracle.GenerateSQL(r.Context(), req.Question, schemaDesc)
	if err != nil {
		s.writeJSON(w, statusFor(err), queryResponse{Success: false, Error: err.Error()})
		return
	}

	res := s.exec.Execute(r.Context(), sql)
	if !res.Success {
		s.writeJSON(w, http.StatusOK, queryResponse{Success: false, SQL: sql, Error: res.Error})
		return
	}

	s.writeJSON(w, http.StatusOK, queryResponse{
		Success:  true,
		SQL:      sql,
		Columns:  res.Columns,
		Data:     res.Rows,
		RowCount: res.RowCount,
	})
}

// handleSQL executes caller-supplied SQL directly, bypassing the oracle.
func (s *Server) handleSQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SQL string `json:"sql"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "sql cannot be empty"))
		return
	}

	res := s.exec.Execute(r.Context(), req.SQL)
	s.writeJSON(w, http.StatusOK, queryResponse{
		Success:  res.Success,
		SQL:      req.SQL,
		Columns:  res.Columns,
		Data:     res.Rows,
		RowCount: res.RowCount,
		Error:    res.Error,
	})
}
