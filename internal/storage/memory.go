package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
	created     time.Time
	updated     time.Time
}

// Memory is an in-process Storage holding a single bucket. Contents are lost
// on restart.
type Memory struct {
	mu         sync.RWMutex
	bucket     string
	publicHost string
	objects    map[string]memoryObject
	now        func() time.Time
}

// NewMemory creates an empty in-memory bucket.
func NewMemory(bucket, publicHost string) *Memory {
	return &Memory{
		bucket:     bucket,
		publicHost: publicHost,
		objects:    make(map[string]memoryObject),
		now:        time.Now,
	}
}

// BucketName returns the configured bucket.
func (m *Memory) BucketName() string { return m.bucket }

// ListBuckets returns the single configured bucket.
func (m *Memory) ListBuckets(context.Context) ([]string, error) {
	return []string{m.bucket}, nil
}

// List returns objects whose key starts with q.Prefix. With a delimiter,
// keys containing the delimiter after the prefix are grouped away.
func (m *Memory) List(_ context.Context, q Query) ([]Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if !strings.HasPrefix(k, q.Prefix) {
			continue
		}
		if q.Delimiter != "" && strings.Contains(k[len(q.Prefix):], q.Delimiter) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	objects := make([]Object, 0, len(keys))
	for _, k := range keys {
		objects = append(objects, m.toObject(k, m.objects[k]))
	}
	return objects, nil
}

// Stat returns the metadata of key.
func (m *Memory) Stat(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	obj := m.toObject(key, o)
	return &obj, nil
}

// Exists reports whether key exists.
func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.objects[key]
	return ok, nil
}

// Upload stores the full content of reader under key.
func (m *Memory) Upload(ctx context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return fmt.Errorf("read object %q: %w", key, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	created := now
	if prev, ok := m.objects[key]; ok {
		created = prev.created
	}
	m.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType, created: created, updated: now}
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

// PublicURL returns https://<public host>/<bucket>/<key>.
func (m *Memory) PublicURL(key string) string {
	return PublicURL(m.publicHost, m.bucket, key)
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func (m *Memory) toObject(key string, o memoryObject) Object {
	sum := md5.Sum(o.data)
	return Object{
		Bucket:      m.bucket,
		Name:        key,
		Size:        int64(len(o.data)),
		ContentType: o.contentType,
		MD5:         base64.StdEncoding.EncodeToString(sum[:]),
		Created:     o.created,
		Updated:     o.updated,
		PublicURL:   m.PublicURL(key),
	}
}

// compile-time check
var _ Storage = (*Memory)(nil)
