package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig configures the S3-compatible backend.
type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Region     string
	Bucket     string
	PublicBase string // browser-accessible base URL; defaults to <scheme>://<endpoint>/<bucket>
}

// Minio implements Storage using a MinIO (or any S3-compatible) backend.
type Minio struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewMinio creates a MinIO client. Call EnsureBucket to create the bucket
// and apply the public-read policy.
func NewMinio(cfg MinioConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	publicBase := cfg.PublicBase
	if publicBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBase = scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
	}

	return &Minio{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// EnsureBucket creates the bucket if missing and sets a public-read policy.
// It reports whether the bucket was created.
func (s *Minio) EnsureBucket(ctx context.Context) (bool, error) {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return false, fmt.Errorf("check bucket existence: %w", err)
	}
	created := false
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return false, fmt.Errorf("create bucket %q: %w", s.bucket, err)
		}
		created = true
	}

	if err := s.client.SetBucketPolicy(ctx, s.bucket, publicReadPolicy(s.bucket)); err != nil {
		return created, fmt.Errorf("set bucket policy: %w", err)
	}
	return created, nil
}

// BucketName returns the configured bucket.
func (s *Minio) BucketName() string { return s.bucket }

// ListBuckets returns the names of all buckets owned by the credentials.
func (s *Minio) ListBuckets(ctx context.Context) ([]string, error) {
	buckets, err := s.client.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	return names, nil
}

// List returns objects under q.Prefix. S3 only groups on "/", so any
// delimiter switches to a non-recursive listing.
func (s *Minio) List(ctx context.Context, q Query) ([]Object, error) {
	objects := []Object{}
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    q.Prefix,
		Recursive: q.Delimiter == "",
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list objects with prefix %q: %w", q.Prefix, info.Err)
		}
		// common prefixes come back as keys ending in "/" with no ETag
		if q.Delimiter != "" && info.ETag == "" && strings.HasSuffix(info.Key, "/") {
			continue
		}
		objects = append(objects, s.toObject(info))
	}
	return objects, nil
}

// Stat returns the metadata of key.
func (s *Minio) Stat(ctx context.Context, key string) (*Object, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat object %q: %w", key, err)
	}
	obj := s.toObject(info)
	return &obj, nil
}

// Exists reports whether key exists.
func (s *Minio) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Stat(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Upload streams reader to MinIO under key. size must be the exact byte count
// (pass -1 only if the size is genuinely unknown; MinIO will buffer it).
func (s *Minio) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// Delete removes the object at key from the bucket. S3 reports success for
// missing keys.
func (s *Minio) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// PublicURL returns the browser-accessible URL for the given key.
// For local MinIO: "http://localhost:9000/uploads/example-folder/file.jpg"
func (s *Minio) PublicURL(key string) string {
	return s.publicBase + "/" + escapeKey(key)
}

// Close is a no-op; the MinIO client holds no closable resources.
func (s *Minio) Close() error { return nil }

func (s *Minio) toObject(info minio.ObjectInfo) Object {
	return Object{
		Bucket:      s.bucket,
		Name:        info.Key,
		Size:        info.Size,
		ContentType: info.ContentType,
		ETag:        info.ETag,
		Updated:     info.LastModified,
		PublicURL:   s.PublicURL(info.Key),
	}
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}

// compile-time check
var _ Storage = (*Minio)(nil)
