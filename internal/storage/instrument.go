package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Observer receives one call per storage operation.
type Observer interface {
	Observe(op string, bytes int64, err error, dur time.Duration)
}

// Instrument wraps s so that every operation is reported to obs.
// ErrNotFound is reported as success: it is an answer, not a failure.
func Instrument(s Storage, obs Observer) Storage {
	return &instrumented{next: s, obs: obs}
}

type instrumented struct {
	next Storage
	obs  Observer
}

func (i *instrumented) observe(op string, bytes int64, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	i.obs.Observe(op, bytes, err, time.Since(start))
}

func (i *instrumented) BucketName() string { return i.next.BucketName() }

func (i *instrumented) ListBuckets(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := i.next.ListBuckets(ctx)
	i.observe("list_buckets", 0, start, err)
	return names, err
}

func (i *instrumented) List(ctx context.Context, q Query) ([]Object, error) {
	start := time.Now()
	objs, err := i.next.List(ctx, q)
	i.observe("list", 0, start, err)
	return objs, err
}

func (i *instrumented) Stat(ctx context.Context, key string) (*Object, error) {
	start := time.Now()
	obj, err := i.next.Stat(ctx, key)
	i.observe("stat", 0, start, err)
	return obj, err
}

func (i *instrumented) Exists(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	ok, err := i.next.Exists(ctx, key)
	i.observe("exists", 0, start, err)
	return ok, err
}

func (i *instrumented) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	start := time.Now()
	err := i.next.Upload(ctx, key, reader, size, contentType)
	var n int64
	if err == nil && size > 0 {
		n = size
	}
	i.observe("upload", n, start, err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Delete(ctx, key)
	i.observe("delete", 0, start, err)
	return err
}

func (i *instrumented) PublicURL(key string) string { return i.next.PublicURL(key) }

func (i *instrumented) Close() error { return i.next.Close() }
