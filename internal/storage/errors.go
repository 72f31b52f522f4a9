package storage

import (
	"errors"

	"github.com/minio/minio-go/v7"
	"google.golang.org/api/googleapi"
)

// RawError returns err in the shape the provider reported it, ready to be
// JSON-encoded. Errors without a provider shape become {"message": ...}.
func RawError(err error) interface{} {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr
	}
	var merr minio.ErrorResponse
	if errors.As(err, &merr) {
		return merr
	}
	return map[string]string{"message": err.Error()}
}
