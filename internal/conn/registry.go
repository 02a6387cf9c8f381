package conn

import (
	"context"
	"sync"

	"sqlchat/internal/database"
	"sqlchat/internal/database/mysql"
	"sqlchat/internal/database/postgres"
	"sqlchat/internal/database/sqlite"
	"sqlchat/internal/errs"
	"sqlchat/internal/logger"
)

// Registry owns the live engine handles, keyed by descriptor name, and the
// single mutable active-name pointer. It is created by the composition root
// and injected into every component that needs a database — there is no
// package-level state.
//
// All mutation goes through one mutex, so concurrent handlers see a
// consistent registry; the active pointer is still last-write-wins across
// requests, which is the intended behavior for this admin-grade tool.
type Registry struct {
	mu          sync.Mutex
	store       *Store
	connections map[string]database.DB
	activeName  string
	log         *logger.Logger
}

// NewRegistry creates an empty registry over the given store. No connection
// is opened until Connect (callers usually probe "default" at startup).
func NewRegistry(store *Store, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.New(nil)
	}
	return &Registry{
		store:       store,
		connections: make(map[string]database.DB),
		activeName:  DefaultName,
		log:         log,
	}
}

// Connect makes the named connection active, opening an engine handle for it
// on first use. Reconnecting to an already-open name just switches the
// active pointer. On any open or probe failure the registry is left exactly
// as it was — no partial registration.
func (r *Registry) Connect(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connectLocked(ctx, name)
}

func (r *Registry) connectLocked(ctx context.Context, name string) error {
	if _, ok := r.connections[name]; ok {
		r.activeName = name
		return nil
	}

	desc, ok := r.store.Find(name)
	if !ok {
		return errs.Newf(errs.ErrKindConfigNotFound, "no database configuration found with name: %s", name)
	}

	db, err := r.open(ctx, desc)
	if err != nil {
		return err
	}

	r.connections[name] = db
	r.activeName = name
	r.log.With().Str("connection", name).Logger().Info("connected to database")
	return nil
}

// open builds an engine handle from a descriptor and probes it.
// Each driver's New pings before returning, so a handle that comes back
// is known live.
func (r *Registry) open(ctx context.Context, desc Descriptor) (database.DB, error) {
	dsn, err := r.store.DSN(desc)
	if err != nil {
		return nil, err
	}

	cfg := database.DefaultConfig(desc.Engine, dsn)

	switch desc.Engine {
	case database.EngineSQLite:
		return sqlite.New(ctx, cfg)
	case database.EnginePostgres:
		return postgres.New(ctx, cfg)
	case database.EngineMySQL:
		return mysql.New(ctx, cfg)
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unsupported engine type: %q", desc.Engine)
	}
}

// Add validates and persists a new descriptor, then immediately connects to
// it. If the connect fails after the persist succeeded, the descriptor stays
// on disk but is not active; the caller sees the connect error.
func (r *Registry) Add(ctx context.Context, desc Descriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descs := r.store.Load()
	for _, d := range descs {
		if d.Name == desc.Name {
			return errs.Newf(errs.ErrKindDuplicateName, "database with name %q already exists", desc.Name)
		}
	}

	descs = append(descs, desc)
	if err := r.store.Save(descs); err != nil {
		return err
	}

	return r.connectLocked(ctx, desc.Name)
}

// Remove deletes a connection: drops its live handle and removes the
// descriptor from the store. The default connection is protected. Removing
// the currently active connection switches back to default first so the
// registry is never left without an active name.
func (r *Registry) Remove(ctx context.Context, name string) error {
	if name == DefaultName {
		return errs.New(errs.ErrKindProtectedDefault, "cannot remove the default database connection")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if name == r.activeName {
		if err := r.connectLocked(ctx, DefaultName); err != nil {
			// Default is unreachable; Active() will fall back to whatever
			// remains. Removal still proceeds.
			r.log.ErrorWith("failed to switch to default before removal", err, map[string]interface{}{"removing": name})
		}
	}

	if db, ok := r.connections[name]; ok {
		db.Close()
		delete(r.connections, name)
	}

	descs := r.store.Load()
	kept := descs[:0]
	for _, d := range descs {
		if d.Name != name {
			kept = append(kept, d)
		}
	}
	return r.store.Save(kept)
}

// Active returns the live handle for the active connection. An empty
// registry lazily connects to default; a dangling active name falls back to
// default if open, else to any remaining handle (iteration order is not
// deterministic — callers must not depend on which one wins).
func (r *Registry) Active(ctx context.Context) (database.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.connections) == 0 {
		if err := r.connectLocked(ctx, DefaultName); err != nil {
			return nil, err
		}
	}

	if _, ok := r.connections[r.activeName]; !ok {
		if _, ok := r.connections[DefaultName]; ok {
			r.activeName = DefaultName
		} else {
			for name := range r.connections {
				r.activeName = name
				break
			}
		}
	}

	db, ok := r.connections[r.activeName]
	if !ok {
		return nil, errs.New(errs.ErrKindConnectionFailed, "no live database connection available")
	}
	return db, nil
}

// ActiveName returns the name of the active connection.
func (r *Registry) ActiveName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeName
}

// ActiveInfo returns the safe descriptor view for the active connection.
// If the active name has no descriptor (removed concurrently), the default
// descriptor's info is returned.
func (r *Registry) ActiveInfo() Info {
	name := r.ActiveName()

	desc, ok := r.store.Find(name)
	if !ok {
		desc, ok = r.store.Find(DefaultName)
		if !ok {
			desc = DefaultDescriptor()
		}
	}
	return desc.Info(true)
}

// AllInfo returns the safe view of every persisted descriptor, annotated
// with which one is active. Connection strings are never exposed.
func (r *Registry) AllInfo() []Info {
	active := r.ActiveName()

	descs := r.store.Load()
	infos := make([]Info, len(descs))
	for i, d := range descs {
		infos[i] = d.Info(d.Name == active)
	}
	return infos
}

// Close drops every live handle. Called on shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, db := range r.connections {
		db.Close()
		delete(r.connections, name)
	}
}
