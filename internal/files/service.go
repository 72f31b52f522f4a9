// Package files serves the bucket and file endpoints.
package files

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/filegate/service/internal/apperror"
	"github.com/filegate/service/internal/storage"
	"github.com/filegate/service/internal/upload"
)

// ErrFileNotFound is the message returned when a requested file is missing.
const ErrFileNotFound = "File doesn't exists"

// Service contains the file operations behind the handlers.
type Service struct {
	store    storage.Storage
	uploader *upload.Uploader
	log      zerolog.Logger
}

// NewService creates a new files Service.
func NewService(store storage.Storage, uploader *upload.Uploader, log zerolog.Logger) *Service {
	return &Service{store: store, uploader: uploader, log: log}
}

// ListBuckets returns the names of all visible buckets. Failures carry the
// provider's raw error body.
func (s *Service) ListBuckets(ctx context.Context) ([]string, error) {
	names, err := s.store.ListBuckets(ctx)
	if err != nil {
		return nil, apperror.Upstream("Unable to list buckets", err).WithRaw(storage.RawError(err))
	}
	return names, nil
}

// ListFiles returns the public URL of every object in the upload folder.
// Folder placeholder objects are skipped.
func (s *Service) ListFiles(ctx context.Context) ([]string, error) {
	// Only the upload folder is listed. A second folder that nothing writes
	// to used to be listed as well and its result ignored.
	objs, err := s.store.List(ctx, storage.Query{Prefix: s.folderPrefix()})
	if err != nil {
		return nil, apperror.Upstream("Unable to list files", err)
	}

	urls := make([]string, 0, len(objs))
	for _, obj := range objs {
		if strings.HasSuffix(obj.Name, "/") {
			continue
		}
		urls = append(urls, s.store.PublicURL(obj.Name))
	}
	return urls, nil
}

// GetFile returns the metadata of filename. The name is used as given and a
// bare name is looked up under the upload folder, never at the bucket root.
func (s *Service) GetFile(ctx context.Context, filename string) (*storage.Object, error) {
	key := s.objectKey(filename)

	obj, err := s.store.Stat(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.NotFound(ErrFileNotFound)
	}
	if err != nil {
		return nil, apperror.Upstream("Unable to fetch file", err)
	}
	return obj, nil
}

// DeleteFile removes filename after replacing spaces with underscores.
// A missing file is not an error: the result is nil.
func (s *Service) DeleteFile(ctx context.Context, filename string) (*storage.DeleteResult, error) {
	key := s.objectKey(upload.NormalizeName(filename))

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return nil, apperror.Upstream("Unable to delete file", err)
	}
	if !exists {
		s.log.Debug().Str("key", key).Msg("delete skipped, object missing")
		return nil, nil
	}

	err = s.store.Delete(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Upstream("Unable to delete file", err)
	}

	s.log.Info().Str("key", key).Msg("object deleted")
	return &storage.DeleteResult{Bucket: s.store.BucketName(), Name: key, Deleted: true}, nil
}

// Upload stores f in the upload folder and returns its public URL.
func (s *Service) Upload(ctx context.Context, f upload.File) (string, error) {
	return s.uploader.Upload(ctx, f)
}

func (s *Service) folderPrefix() string {
	if s.uploader.Folder() == "" {
		return ""
	}
	return s.uploader.Folder() + "/"
}

// objectKey places a bare name in the upload folder. Names that already
// carry the folder prefix are used unchanged.
func (s *Service) objectKey(name string) string {
	prefix := s.folderPrefix()
	if prefix == "" || strings.HasPrefix(name, prefix) {
		return name
	}
	return prefix + name
}
