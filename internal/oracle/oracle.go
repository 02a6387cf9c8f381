// Package oracle turns natural-language questions into SQL using an
// OpenAI-compatible chat completion endpoint.
package oracle

import (
	"context"
	"time"

	"sqlchat/internal/errs"
)

// Oracle generates a SQL statement from a question and a plain-text schema
// description of the active database.
type Oracle interface {
	GenerateSQL(ctx context.Context, question, schemaDesc string) (string, error)
}

// Config holds the settings for the chat completion client.
type Config struct {
	// APIKey authenticates against the endpoint. Empty disables the oracle.
	APIKey string

	// Model is the chat model name, e.g. "gpt-4o".
	Model string

	// BaseURL overrides the API root, for proxies and compatible servers.
	// Empty means the public OpenAI endpoint.
	BaseURL string

	// Timeout bounds one completion round-trip.
	Timeout time.Duration
}

// DefaultConfig returns the standard oracle settings for the given key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		Model:   "gpt-4o",
		Timeout: 60 * time.Second,
	}
}

// Disabled is an Oracle that always fails with a clear message. Used when
// no API key is configured so the rest of the service stays functional.
type Disabled struct{}

func (Disabled) GenerateSQL(ctx context.Context, question, schemaDesc string) (string, error) {
	return "", errs.New(errs.ErrKindOracleFailed, "SQL generation is not configured: set an API key to enable it")
}
