// Package config loads the service configuration from a YAML file with
// environment overrides for secrets.
package config

import (
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"sqlchat/internal/errs"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
	Query     QueryConfig     `yaml:"query"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Filestore FilestoreConfig `yaml:"filestore"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig controls descriptor persistence.
type StoreConfig struct {
	// Path is the JSON file connection descriptors are persisted to.
	Path string `yaml:"path"`

	// Secret derives the key that encrypts connection strings at rest.
	// Overridden by SQLCHAT_SECRET when set.
	Secret string `yaml:"secret"`
}

// QueryConfig controls statement execution.
type QueryConfig struct {
	// Timeout bounds a single statement. Zero disables the deadline.
	Timeout time.Duration `yaml:"timeout"`

	// PreviewRows caps table preview responses.
	PreviewRows int `yaml:"preview_rows"`
}

// OracleConfig controls the text-to-SQL backend.
type OracleConfig struct {
	// APIKey authenticates against the completion endpoint.
	// Overridden by OPENAI_API_KEY when set. Empty disables generation.
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// FilestoreConfig points at the optional object store holding external CSV
// datasets. Disabled unless Endpoint is set.
type FilestoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
}

// Enabled reports whether an object store is configured.
func (f FilestoreConfig) Enabled() bool {
	return f.Endpoint != ""
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Path: "data/connections.json",
		},
		Query: QueryConfig{
			Timeout:     30 * time.Second,
			PreviewRows: 10,
		},
		Oracle: OracleConfig{
			Model:   "gpt-4o",
			Timeout: 60 * time.Second,
		},
	}
}

// Load reads the YAML file at path, layered over defaults. A missing file
// is not an error — the defaults stand. Environment variables override the
// two secrets regardless of where the rest came from.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return nil, errs.Wrap(errs.ErrKindConfigNotFound, "failed to read config file", err)
		default:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse config file", err)
			}
		}
	}

	if v := os.Getenv("SQLCHAT_SECRET"); v != "" {
		cfg.Store.Secret = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Oracle.APIKey = v
	}

	return cfg, nil
}
