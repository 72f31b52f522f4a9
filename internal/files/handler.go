package files

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/filegate/service/internal/apperror"
	"github.com/filegate/service/internal/response"
	"github.com/filegate/service/internal/upload"
)

// multipartOverhead is the slack allowed on top of the file limit for
// boundaries and part headers.
const multipartOverhead = 1 << 20

// Options configures a Handler.
type Options struct {
	MaxUploadBytes  int64
	ViewFile        string
	CredentialsFile string
}

// Handler holds HTTP handlers for the bucket and file endpoints.
type Handler struct {
	svc  *Service
	log  zerolog.Logger
	opts Options
}

// NewHandler creates a new files Handler.
func NewHandler(svc *Service, log zerolog.Logger, opts Options) *Handler {
	return &Handler{svc: svc, log: log, opts: opts}
}

// ListBuckets godoc
//
//	@Summary		List buckets
//	@Description	Names of all buckets visible to the configured credentials.
//	@Tags			buckets
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]string}
//	@Failure		400	{object}	object	"raw provider error"
//	@Router			/list-bucket [get]
func (h *Handler) ListBuckets(w http.ResponseWriter, r *http.Request) error {
	names, err := h.svc.ListBuckets(r.Context())
	if err != nil {
		return err
	}
	response.OK(w, names)
	return nil
}

// ListFiles godoc
//
//	@Summary		List files
//	@Description	Public URLs of every file in the upload folder.
//	@Tags			files
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]string}
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/get-all [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) error {
	urls, err := h.svc.ListFiles(r.Context())
	if err != nil {
		return err
	}
	response.OK(w, urls)
	return nil
}

// GetFile godoc
//
//	@Summary		Get file metadata
//	@Description	Metadata of a file. The name is used literally, spaces are not replaced. A bare name is looked up under the upload folder, so objects at the bucket root are only reachable by a name that already carries the folder prefix.
//	@Tags			files
//	@Produce		json
//	@Param			filename	path		string	true	"File name"
//	@Success		200			{object}	response.Envelope{data=storage.Object}
//	@Failure		500			{object}	response.ErrorBody
//	@Router			/get-file/{filename} [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) error {
	obj, err := h.svc.GetFile(r.Context(), pathParam(r, "filename"))
	if err != nil {
		return err
	}
	response.OK(w, obj)
	return nil
}

// DeleteFile godoc
//
//	@Summary		Delete file
//	@Description	Deletes a file in the upload folder after replacing spaces with underscores. Deleting a missing file succeeds without data.
//	@Tags			files
//	@Produce		json
//	@Param			filename	path		string	true	"File name"
//	@Success		200			{object}	response.Envelope{data=storage.DeleteResult}
//	@Failure		500			{object}	response.ErrorBody
//	@Router			/delete/{filename} [delete]
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) error {
	result, err := h.svc.DeleteFile(r.Context(), pathParam(r, "filename"))
	if err != nil {
		return err
	}
	if result == nil {
		response.Success(w)
		return nil
	}
	response.OK(w, result)
	return nil
}

// Upload godoc
//
//	@Summary		Upload file
//	@Description	Stores the multipart field "file" in the upload folder and returns its public URL.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File, under 10 MiB"
//	@Success		200		{object}	response.Envelope{data=string}
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) error {
	f, err := h.readFile(w, r)
	if err != nil {
		return err
	}

	publicURL, err := h.svc.Upload(r.Context(), *f)
	if err != nil {
		return err
	}
	response.OK(w, publicURL)
	return nil
}

// Hello godoc
//
//	@Summary	Diagnostic ping
//	@Tags		diagnostics
//	@Produce	json
//	@Success	200	{object}	response.DataOnly{data=string}
//	@Router		/hello [get]
func (h *Handler) Hello(w http.ResponseWriter, _ *http.Request) {
	h.log.Debug().Str("credentials_file", h.opts.CredentialsFile).Msg("hello")
	response.JSON(w, http.StatusOK, response.DataOnly{Data: "hello"})
}

// View serves the static upload page.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, h.opts.ViewFile)
}

// readFile parses the multipart body and returns the "file" field. The whole
// body is capped so oversized uploads never reach the uploader.
func (h *Handler) readFile(w http.ResponseWriter, r *http.Request) (*upload.File, error) {
	limit := h.opts.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
		switch {
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary), isEmptyBody(err):
			return nil, apperror.InvalidInput("No files selected")
		case isTooLarge(err):
			return nil, apperror.InvalidInput("File too large")
		default:
			return nil, apperror.InvalidInput("Malformed multipart body")
		}
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, apperror.InvalidInput("No files selected")
	}
	if err != nil {
		return nil, apperror.InvalidInput("Malformed multipart body")
	}
	defer file.Close()

	if header.Size >= limit {
		return nil, apperror.InvalidInput("File too large")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperror.InvalidInput("Malformed multipart body")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &upload.File{Name: header.Filename, Data: data, ContentType: contentType}, nil
}

// isEmptyBody reports a multipart body that ended before its first part.
func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF) || strings.HasSuffix(err.Error(), "NextPart: EOF")
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// pathParam returns a route parameter, unescaped when the request path
// carried escapes chi kept (e.g. %2F).
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
