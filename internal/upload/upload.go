// Package upload writes in-memory files to the upload folder of the bucket
// and returns their public URL.
package upload

import (
	"bytes"
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/filegate/service/internal/apperror"
	"github.com/filegate/service/internal/storage"
)

// FailureMessage is the only detail clients get when an upload fails.
const FailureMessage = "Unable to upload image, something went wrong"

// File is an uploaded file held fully in memory.
type File struct {
	Name        string
	Data        []byte
	ContentType string
}

// Uploader stores files under a fixed folder.
type Uploader struct {
	store  storage.Storage
	folder string
	log    zerolog.Logger
}

// NewUploader creates an Uploader writing under folder.
func NewUploader(store storage.Storage, folder string, log zerolog.Logger) *Uploader {
	return &Uploader{
		store:  store,
		folder: strings.Trim(folder, "/"),
		log:    log,
	}
}

// NormalizeName replaces every space with an underscore.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// Folder returns the folder uploads are written to, without slashes.
func (u *Uploader) Folder() string { return u.folder }

// Key returns the storage key for an original file name.
func (u *Uploader) Key(name string) string {
	if u.folder == "" {
		return NormalizeName(name)
	}
	return u.folder + "/" + NormalizeName(name)
}

// Upload writes f and returns its public URL. Existing objects are
// overwritten. On failure the returned error carries FailureMessage only.
func (u *Uploader) Upload(ctx context.Context, f File) (string, error) {
	key := u.Key(f.Name)

	err := u.store.Upload(ctx, key, bytes.NewReader(f.Data), int64(len(f.Data)), f.ContentType)
	if err != nil {
		u.log.Error().Err(err).Str("key", key).Msg("upload failed")
		return "", apperror.Upstream(FailureMessage, err)
	}

	u.log.Info().Str("key", key).Int("size", len(f.Data)).Msg("object uploaded")
	return u.store.PublicURL(key), nil
}
