// Package errs provides the unified error type used across all of sqlchat.
//
// Every subsystem (connection registry, database drivers, importer, oracle,
// server, …) wraps its native errors into *errs.Error before returning them
// to callers. Callers use the Is* predicates to handle errors without
// importing driver-specific packages.
//
// Usage:
//
//	// In a driver — wrap native errors:
//	return errs.Wrap(errs.ErrKindTimeout, "query timed out", pgErr)
//
//	// In a handler — check error kind:
//	if errs.IsNotFound(err) {
//	    http.Error(w, "not found", http.StatusNotFound)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
// All backends (SQLite, Postgres, MySQL, MinIO, the oracle, …) map their
// native errors to one of these kinds, giving callers a single consistent API.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no rows, no object, no table
	ErrKindConnectionFailed         // cannot reach the backend, or the liveness probe failed
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindQueryFailed              // SQL or storage operation error
	ErrKindInvalidInput             // bad arguments from the caller (missing descriptor fields, …)
	ErrKindPermissionDenied         // access denied / auth failure
	ErrKindConfigNotFound           // no persisted descriptor with the requested name
	ErrKindDuplicateName            // descriptor name already registered
	ErrKindProtectedDefault         // attempt to remove or break the default connection
	ErrKindCycleDetected            // import relationship graph is not acyclic
	ErrKindAlreadyPopulated         // import with the fail policy hit existing rows
	ErrKindOracleFailed             // the text-to-SQL oracle could not produce a query
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindConfigNotFound:
		return "config_not_found"
	case ErrKindDuplicateName:
		return "duplicate_name"
	case ErrKindProtectedDefault:
		return "protected_default"
	case ErrKindCycleDetected:
		return "cycle_detected"
	case ErrKindAlreadyPopulated:
		return "already_populated"
	case ErrKindOracleFailed:
		return "oracle_failed"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all sqlchat subsystems.
// Drivers produce it; callers inspect it via the Is* predicates below.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates an *Error with a formatted message and no cause.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsNotFound reports whether err represents a "not found" result
// (no rows, missing object, unknown table, …).
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity or probe failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether err is a backend operation failure
// (SQL execution error, storage I/O error, …).
func IsQueryFailed(err error) bool {
	return KindOf(err) == ErrKindQueryFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsConfigNotFound reports whether err means no descriptor exists with the
// requested connection name.
func IsConfigNotFound(err error) bool {
	return KindOf(err) == ErrKindConfigNotFound
}

// IsDuplicateName reports whether err means the descriptor name is taken.
func IsDuplicateName(err error) bool {
	return KindOf(err) == ErrKindDuplicateName
}

// IsProtectedDefault reports whether err was caused by an attempt to remove
// the default connection.
func IsProtectedDefault(err error) bool {
	return KindOf(err) == ErrKindProtectedDefault
}

// IsCycleDetected reports whether err means the import graph has a cycle.
func IsCycleDetected(err error) bool {
	return KindOf(err) == ErrKindCycleDetected
}

// IsAlreadyPopulated reports whether err means a fail-policy import found rows.
func IsAlreadyPopulated(err error) bool {
	return KindOf(err) == ErrKindAlreadyPopulated
}

// IsOracleFailed reports whether err came from the text-to-SQL oracle.
func IsOracleFailed(err error) bool {
	return KindOf(err) == ErrKindOracleFailed
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
