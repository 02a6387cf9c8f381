// Package server exposes the service over HTTP: schema inspection,
// natural-language querying, raw SQL execution, connection management and
// dataset imports.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sqlchat/internal/config"
	"sqlchat/internal/conn"
	"sqlchat/internal/dataset"
	"sqlchat/internal/filestore"
	"sqlchat/internal/logger"
	"sqlchat/internal/oracle"
	"sqlchat/internal/query"
	"sqlchat/internal/schema"
)

// Deps carries everything the server needs. Store may be nil when no
// object storage is configured; the dataset-file endpoints then report it
// as unavailable.
type Deps struct {
	Registry     *conn.Registry
	Introspector *schema.Introspector
	Executor     *query.Executor
	Importer     *dataset.Importer
	Oracle       oracle.Oracle
	Store        filestore.Store
	Bucket       string
	Query        config.QueryConfig
	Log          *logger.Logger
}

// Server is the HTTP layer. It holds no state of its own — all state lives
// in the registry and the stores behind it.
type Server struct {
	reg    *conn.Registry
	intr   *schema.Introspector
	exec   *query.Executor
	imp    *dataset.Importer
	oracle oracle.Oracle
	store  filestore.Store
	bucket string
	qcfg   config.QueryConfig
	log    *logger.Logger
}

// New creates a Server from its dependencies.
func New(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = logger.New(nil)
	}
	if d.Query.PreviewRows <= 0 {
		d.Query.PreviewRows = 10
	}
	return &Server{
		reg:    d.Registry,
		intr:   d.Introspector,
		exec:   d.Executor,
		imp:    d.Importer,
		oracle: d.Oracle,
		store:  d.Store,
		bucket: d.Bucket,
		qcfg:   d.Query,
		log:    log,
	}
}

// Router assembles the HTTP routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Get("/tables", s.handleTables)
	r.Get("/tables/{table}/preview", s.handleTablePreview)
	r.Post("/schema", s.handleSchema)

	r.Post("/query", s.handleQuery)
	r.Post("/sql", s.handleSQL)

	r.Route("/connections", func(r chi.Router) {
		r.Get("/", s.handleConnections)
		r.Get("/active", s.handleActiveConnection)
		r.Post("/switch", s.handleSwitchConnection)
		r.Post("/add", s.handleAddConnection)
		r.Delete("/{name}", s.handleRemoveConnection)
	})

	r.Get("/datasets", s.handleDatasets)
	r.Get("/datasets/files", s.handleDatasetFiles)

	r.Route("/import", func(r chi.Router) {
		r.Post("/table", s.handleImportTable)
		r.Post("/related", s.handleImportRelated)
		r.Post("/all", s.handleImportAll)
		r.Post("/csv", s.handleImportCSV)
		r.Post("/csv/preview", s.handlePreviewCSV)
	})

	return r
}

// requestLogger logs one line per completed request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Request(r, ww.Status(), time.Since(start))
	})
}
