package server

import (
	"io"
	"net/http"
	"os"

	"sqlchat/internal/dataset"
	"sqlchat/internal/errs"
	"sqlchat/internal/filestore"
)

// handleDatasets lists the built-in sample tables and their relationships.
func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	graph := dataset.SampleGraph()

	type tableInfo struct {
		Name      string   `json:"name"`
		Rows      int      `json:"rows"`
		Columns   []string `json:"columns"`
		DependsOn []string `json:"depends_on,omitempty"`
	}

	tables := make([]tableInfo, 0)
	for _, name := range dataset.Tables() {
		def, _ := dataset.Table(name)
		tables = append(tables, tableInfo{
			Name:      name,
			Rows:      len(def.Rows),
			Columns:   def.ColumnNames(),
			DependsOn: graph.Dependencies(name),
		})
	}

	s.writeJSON(w, http.StatusOK, struct {
		Success bool        `json:"success"`
		Tables  []tableInfo `json:"tables"`
	}{true, tables})
}

// handleDatasetFiles lists CSV files available in the configured object
// store bucket.
func (s *Server) handleDatasetFiles(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errs.New(errs.ErrKindNotFound, "no dataset file storage is configured"))
		return
	}

	objects, err := s.store.ListObjects(r.Context(), s.bucket, filestore.ListOptions{
		Prefix: r.URL.Query().Get("prefix"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if objects == nil {
		objects = []filestore.ObjectInfo{}
	}

	s.writeJSON(w, http.StatusOK, struct {
		Success bool                   `json:"success"`
		Bucket  string                 `json:"bucket"`
		Files   []filestore.ObjectInfo `json:"files"`
	}{true, s.bucket, objects})
}

type importRequest struct {
	Table  string `json:"table"`
	Policy string `json:"policy"`
}

// importResponse wraps an import run's outcome.
type importResponse struct {
	Success bool `json:"success"`
	dataset.Result
}

func (s *Server) handleImportTable(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Table == "" {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "table is required"))
		return
	}

	policy, err := dataset.ParsePolicy(req.Policy)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.imp.ImportTable(r.Context(), req.Table, policy)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, importResponse{Success: true, Result: res})
}

func (s *Server) handleImportRelated(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Table == "" {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "table is required"))
		return
	}

	policy, err := dataset.ParsePolicy(req.Policy)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.imp.ImportRelated(r.Context(), req.Table, policy)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, importResponse{Success: true, Result: res})
}

func (s *Server) handleImportAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Policy string `json:"policy"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	policy, err := dataset.ParsePolicy(req.Policy)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.imp.ImportAll(r.Context(), policy)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, importResponse{Success: true, Result: res})
}

// csvRequest names a CSV source: a server-local path or an object key in
// the configured bucket. Exactly one of Path and Key must be set.
type csvRequest struct {
	Path      string `json:"path,omitempty"`
	Key       string `json:"key,omitempty"`
	Table     string `json:"table,omitempty"`
	Policy    string `json:"policy,omitempty"`
	Delimiter string `json:"delimiter,omitempty"`
	NoHeader  bool   `json:"no_header,omitempty"`
	Rows      int    `json:"rows,omitempty"`
}

// openCSV resolves the request's source to a reader. The caller closes it.
func (s *Server) openCSV(r *http.Request, req csvRequest) (io.ReadCloser, error) {
	switch {
	case req.Path != "" && req.Key != "":
		return nil, errs.New(errs.ErrKindInvalidInput, "specify either path or key, not both")
	case req.Path != "":
		f, err := os.Open(req.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errs.Newf(errs.ErrKindNotFound, "CSV file not found: %s", req.Path)
			}
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to open CSV file", err)
		}
		return f, nil
	case req.Key != "":
		if s.store == nil {
			return nil, errs.New(errs.ErrKindInvalidInput, "no dataset file storage is configured")
		}
		return s.store.GetObject(r.Context(), s.bucket, req.Key)
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, "path or key is required")
	}
}

func (s *Server) parseCSV(r *http.Request, req csvRequest) (*dataset.CSVFile, error) {
	src, err := s.openCSV(r, req)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	opts := dataset.CSVOptions{NoHeader: req.NoHeader}
	if req.Delimiter != "" {
		runes := []rune(req.Delimiter)
		if len(runes) != 1 {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "delimiter must be a single character, got %q", req.Delimiter)
		}
		opts.Delimiter = runes[0]
	}

	return dataset.ReadCSV(src, opts)
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	var req csvRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Table == "" {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "table is required"))
		return
	}

	policy, err := dataset.ParsePolicy(req.Policy)
	if err != nil {
		s.writeError(w, err)
		return
	}

	f, err := s.parseCSV(r, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.imp.ImportCSV(r.Context(), f, req.Table, policy)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		dataset.TableResult
	}{true, res})
}

func (s *Server) handlePreviewCSV(w http.ResponseWriter, r *http.Request) {
	var req csvRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	f, err := s.parseCSV(r, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		dataset.CSVPreview
	}{true, f.Preview(req.Rows)})
}
