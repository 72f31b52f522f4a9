// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup:
// GCS is the default, MinIO covers any S3-compatible provider, and the
// in-memory store serves local development and tests.
package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Object is the metadata view of a stored object.
type Object struct {
	Bucket      string    `json:"bucket"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	MD5         string    `json:"md5Hash,omitempty"`
	ETag        string    `json:"etag,omitempty"`
	Created     time.Time `json:"timeCreated"`
	Updated     time.Time `json:"updated"`
	PublicURL   string    `json:"publicUrl"`
}

// DeleteResult describes a completed deletion.
type DeleteResult struct {
	Bucket  string `json:"bucket"`
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

// Query filters a listing. Delimiter groups keys into prefixes; entries that
// are only prefixes are never returned.
type Query struct {
	Prefix    string
	Delimiter string
}

// Storage is the interface for bucket and object operations against one
// configured bucket.
type Storage interface {
	// BucketName returns the configured bucket.
	BucketName() string
	// ListBuckets returns the names of all buckets visible to the credentials.
	ListBuckets(ctx context.Context) ([]string, error)
	// List returns the objects matching q in key order.
	List(ctx context.Context, q Query) ([]Object, error)
	// Stat returns the metadata of key, or ErrNotFound.
	Stat(ctx context.Context, key string) (*Object, error)
	// Exists reports whether key exists.
	Exists(ctx context.Context, key string) (bool, error)
	// Upload writes reader to key in a single request, replacing any existing object.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes key. A missing object is reported as ErrNotFound or as
	// success, depending on the provider.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for key.
	PublicURL(key string) string
	// Close releases the client.
	Close() error
}

// PublicURL builds https://<host>/<bucket>/<key> with each key segment escaped.
func PublicURL(host, bucket, key string) string {
	return "https://" + strings.TrimRight(host, "/") + "/" + bucket + "/" + escapeKey(key)
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
