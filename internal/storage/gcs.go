package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// gcsClient abstracts *gcs.Client for testability.
type gcsClient interface {
	Bucket(name string) gcsBucketHandle
	Buckets(ctx context.Context, projectID string) bucketIterator
	Close() error
}

// bucketIterator abstracts a GCS bucket iterator.
type bucketIterator interface {
	Next() (*gcs.BucketAttrs, error)
}

// gcsBucketHandle abstracts a GCS bucket handle.
type gcsBucketHandle interface {
	Objects(ctx context.Context, q *gcs.Query) objectIterator
	Object(name string) objectHandle
}

// objectIterator abstracts a GCS object iterator.
type objectIterator interface {
	Next() (*gcs.ObjectAttrs, error)
}

// objectHandle abstracts a GCS object handle.
type objectHandle interface {
	NewWriter(ctx context.Context, contentType string) io.WriteCloser
	Delete(ctx context.Context) error
	Attrs(ctx context.Context) (*gcs.ObjectAttrs, error)
}

type realClient struct{ c *gcs.Client }

func (r *realClient) Bucket(name string) gcsBucketHandle {
	return &realBucketHandle{r.c.Bucket(name)}
}

func (r *realClient) Buckets(ctx context.Context, projectID string) bucketIterator {
	return r.c.Buckets(ctx, projectID)
}

func (r *realClient) Close() error { return r.c.Close() }

type realBucketHandle struct{ bh *gcs.BucketHandle }

func (r *realBucketHandle) Objects(ctx context.Context, q *gcs.Query) objectIterator {
	return r.bh.Objects(ctx, q)
}

func (r *realBucketHandle) Object(name string) objectHandle {
	return &realObjectHandle{r.bh.Object(name)}
}

type realObjectHandle struct{ oh *gcs.ObjectHandle }

// NewWriter returns a single-request (non-resumable) writer.
func (r *realObjectHandle) NewWriter(ctx context.Context, contentType string) io.WriteCloser {
	w := r.oh.NewWriter(ctx)
	w.ChunkSize = 0
	w.ContentType = contentType
	return w
}

func (r *realObjectHandle) Delete(ctx context.Context) error { return r.oh.Delete(ctx) }

func (r *realObjectHandle) Attrs(ctx context.Context) (*gcs.ObjectAttrs, error) {
	return r.oh.Attrs(ctx)
}

// GCSConfig configures the Google Cloud Storage backend.
type GCSConfig struct {
	ProjectID       string
	CredentialsFile string // service account key; empty uses application default credentials
	Endpoint        string // emulator endpoint; empty for the real service
	Bucket          string
	PublicHost      string
}

// GCS implements Storage using Google Cloud Storage.
type GCS struct {
	client     gcsClient
	projectID  string
	bucket     string
	publicHost string
}

// NewGCS creates the GCS client. No request is made until the first operation.
func NewGCS(ctx context.Context, cfg GCSConfig) (*GCS, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return newGCS(&realClient{client}, cfg), nil
}

func newGCS(client gcsClient, cfg GCSConfig) *GCS {
	return &GCS{
		client:     client,
		projectID:  cfg.ProjectID,
		bucket:     cfg.Bucket,
		publicHost: cfg.PublicHost,
	}
}

// BucketName returns the configured bucket.
func (g *GCS) BucketName() string { return g.bucket }

// ListBuckets returns the names of all buckets in the project.
func (g *GCS) ListBuckets(ctx context.Context) ([]string, error) {
	it := g.client.Buckets(ctx, g.projectID)
	names := []string{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list buckets in project %q: %w", g.projectID, err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

// List returns objects matching q. Synthetic prefix entries are skipped.
func (g *GCS) List(ctx context.Context, q Query) ([]Object, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &gcs.Query{Prefix: q.Prefix, Delimiter: q.Delimiter})
	objects := []Object{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects with prefix %q: %w", q.Prefix, err)
		}
		if attrs.Name == "" {
			continue
		}
		objects = append(objects, g.toObject(attrs))
	}
	return objects, nil
}

// Stat returns the metadata of key.
func (g *GCS) Stat(ctx context.Context, key string) (*Object, error) {
	attrs, err := g.client.Bucket(g.bucket).Object(key).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat object %q: %w", key, err)
	}
	obj := g.toObject(attrs)
	return &obj, nil
}

// Exists reports whether key exists.
func (g *GCS) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.Stat(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Upload writes reader to key with a single non-resumable request.
func (g *GCS) Upload(ctx context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx, contentType)
	if _, err := io.Copy(w, reader); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer for object %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (g *GCS) Delete(ctx context.Context, key string) error {
	err := g.client.Bucket(g.bucket).Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

// PublicURL returns https://<public host>/<bucket>/<key>.
func (g *GCS) PublicURL(key string) string {
	return PublicURL(g.publicHost, g.bucket, key)
}

// Close closes the GCS client.
func (g *GCS) Close() error {
	if err := g.client.Close(); err != nil {
		return fmt.Errorf("close gcs client: %w", err)
	}
	return nil
}

func (g *GCS) toObject(attrs *gcs.ObjectAttrs) Object {
	obj := Object{
		Bucket:      attrs.Bucket,
		Name:        attrs.Name,
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		ETag:        attrs.Etag,
		Created:     attrs.Created,
		Updated:     attrs.Updated,
		PublicURL:   g.PublicURL(attrs.Name),
	}
	if obj.Bucket == "" {
		obj.Bucket = g.bucket
	}
	if len(attrs.MD5) > 0 {
		obj.MD5 = base64.StdEncoding.EncodeToString(attrs.MD5)
	}
	return obj
}

// compile-time check
var _ Storage = (*GCS)(nil)
