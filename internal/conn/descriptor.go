// Package conn manages named database connections: the persisted descriptor
// store and the registry of live engine handles with a single active pointer.
package conn

import (
	"sqlchat/internal/database"
	"sqlchat/internal/errs"
)

// DefaultName is the reserved name of the built-in connection. A descriptor
// with this name always exists and can never be removed.
const DefaultName = "default"

// Descriptor is a persisted record of how to reach one database.
// The JSON field names match the on-disk connection-configuration file.
type Descriptor struct {
	Name             string          `json:"name"`
	DisplayName      string          `json:"display_name"`
	Description      string          `json:"description"`
	Engine           database.Engine `json:"type"`
	ConnectionString string          `json:"connection_string"`

	// Encrypted marks whether ConnectionString has already been passed
	// through the store's cipher. Guards against double encryption.
	Encrypted bool `json:"encrypted,omitempty"`
}

// Validate checks the required fields. It does not touch the network.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return errs.New(errs.ErrKindInvalidInput, "connection name is required")
	}
	if d.Engine == "" {
		return errs.New(errs.ErrKindInvalidInput, "engine type is required")
	}
	if !d.Engine.Valid() {
		return errs.Newf(errs.ErrKindInvalidInput, "unsupported engine type: %q", d.Engine)
	}
	if d.ConnectionString == "" {
		return errs.New(errs.ErrKindInvalidInput, "connection string is required")
	}
	return nil
}

// Info is the safe, connection-string-free view of a descriptor that is
// exposed to the UI/API layer.
type Info struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Description string          `json:"description"`
	Engine      database.Engine `json:"type"`
	IsActive    bool            `json:"is_active"`
}

// Info returns the descriptor's safe view, annotated with the active flag.
func (d *Descriptor) Info(active bool) Info {
	display := d.DisplayName
	if display == "" {
		display = d.Name
	}
	return Info{
		Name:        d.Name,
		DisplayName: display,
		Description: d.Description,
		Engine:      d.Engine,
		IsActive:    active,
	}
}

// DefaultDescriptor returns the built-in SQLite connection that the store
// synthesizes when the configuration file is missing or malformed.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		Name:             DefaultName,
		DisplayName:      "SQLite Sample Database",
		Description:      "SQLite Database",
		Engine:           database.EngineSQLite,
		ConnectionString: "data/sqlchat.db",
	}
}
