// Package filestore abstracts the object store that holds external CSV
// datasets. The server lists a configured bucket to advertise importable
// files and streams individual objects into the CSV importer.
//
// Callers depend only on this package, never on a provider package.
package filestore

import (
	"context"
	"io"
	"time"
)

// Provider identifies the object storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds the settings needed to reach the dataset bucket.
type Config struct {
	Provider  Provider
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string

	// Bucket is the bucket CSV datasets live in.
	Bucket string
}

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	// Key is the full object path within the bucket.
	Key string `json:"key"`

	// Size is the byte size of the object. -1 if unknown.
	Size int64 `json:"size"`

	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Object is a streaming handle to an object's content.
// The caller MUST call Close() after reading.
type Object interface {
	io.ReadCloser

	// Info returns the metadata for this object.
	Info() *ObjectInfo
}

// ListOptions filters ListObjects results.
type ListOptions struct {
	// Prefix restricts results to keys starting with this string.
	Prefix string

	// Limit caps the number of results. 0 means backend default.
	Limit int
}

// Store is the contract every object storage provider implements.
// Read-only: the service never writes datasets back.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// ListObjects returns the objects in bucket matching opts.
	ListObjects(ctx context.Context, bucket string, opts ListOptions) ([]ObjectInfo, error)

	// GetObject opens a streaming handle to the object at key.
	// The caller MUST call Object.Close() after reading.
	GetObject(ctx context.Context, bucket, key string) (Object, error)

	// StatObject returns metadata for the object at key without
	// downloading its content.
	StatObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)
}
