package server_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filegate/service/internal/files"
	"github.com/filegate/service/internal/metrics"
	"github.com/filegate/service/internal/middleware"
	"github.com/filegate/service/internal/server"
	"github.com/filegate/service/internal/storage"
	"github.com/filegate/service/internal/upload"
)

type testServer struct {
	handler http.Handler
	logs    *bytes.Buffer
}

func newTestServer(t *testing.T, typed bool) testServer {
	t.Helper()

	view := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(view, []byte("<html><body>upload</body></html>"), 0o600))

	var logs bytes.Buffer
	log := zerolog.New(&logs)
	m := metrics.New()

	store := storage.Instrument(storage.NewMemory("kitkat_example_bucket", "storage.googleapis.com"), m)
	svc := files.NewService(store, upload.NewUploader(store, "example-folder", log), log)
	h := files.NewHandler(svc, log, files.Options{MaxUploadBytes: 10 << 20, ViewFile: view})

	return testServer{
		handler: server.NewRouter(server.Deps{
			Files:   h,
			Errors:  middleware.NewErrors(log, typed),
			Metrics: m,
			Log:     log,
		}),
		logs: &logs,
	}
}

func (s testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func uploadRequest(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func listedURLs(t *testing.T, s testServer) []string {
	t.Helper()
	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/get-all", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.True(t, body.Success)
	return body.Data
}

func TestUploadListDeleteRoundTrip(t *testing.T) {
	s := newTestServer(t, false)
	want := "https://storage.googleapis.com/kitkat_example_bucket/example-folder/a_b.png"

	rr := s.do(t, uploadRequest(t, "a b.png", []byte("\x89PNG\r\n\x1a\n")))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":"`+want+`"}`, rr.Body.String())

	assert.Contains(t, listedURLs(t, s), want)

	rr = s.do(t, httptest.NewRequest(http.MethodGet, "/get-file/a_b.png", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"contentType":"image/png"`)

	rr = s.do(t, httptest.NewRequest(http.MethodDelete, "/delete/a%20b.png", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"deleted":true`)

	assert.NotContains(t, listedURLs(t, s), want)

	rr = s.do(t, httptest.NewRequest(http.MethodDelete, "/delete/a%20b.png", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
}

func TestUploadOverwrites(t *testing.T) {
	s := newTestServer(t, false)

	require.Equal(t, http.StatusOK, s.do(t, uploadRequest(t, "same.txt", []byte("one"))).Code)
	require.Equal(t, http.StatusOK, s.do(t, uploadRequest(t, "same.txt", []byte("second"))).Code)

	assert.Len(t, listedURLs(t, s), 1)
	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/get-file/same.txt", nil))
	assert.Contains(t, rr.Body.String(), `"size":6`)
}

func TestUploadAtLimitRejected(t *testing.T) {
	s := newTestServer(t, false)

	rr := s.do(t, uploadRequest(t, "big.bin", bytes.Repeat([]byte{0}, 10<<20)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"File too large"}`, rr.Body.String())
	assert.Empty(t, listedURLs(t, s))
}

func TestErrorStatusModes(t *testing.T) {
	tests := []struct {
		name   string
		typed  bool
		req    func(t *testing.T) *http.Request
		status int
		body   string
	}{
		{
			name:   "legacy missing file",
			req:    func(*testing.T) *http.Request { return httptest.NewRequest(http.MethodGet, "/get-file/nope.png", nil) },
			status: http.StatusInternalServerError,
			body:   `{"message":"File doesn't exists"}`,
		},
		{
			name:   "typed missing file",
			typed:  true,
			req:    func(*testing.T) *http.Request { return httptest.NewRequest(http.MethodGet, "/get-file/nope.png", nil) },
			status: http.StatusNotFound,
			body:   `{"message":"File doesn't exists"}`,
		},
		{
			name: "legacy no file",
			req: func(*testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("x"))
			},
			status: http.StatusInternalServerError,
			body:   `{"message":"No files selected"}`,
		},
		{
			name:  "typed no file",
			typed: true,
			req: func(*testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("x"))
			},
			status: http.StatusBadRequest,
			body:   `{"message":"No files selected"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.typed)

			rr := s.do(t, tt.req(t))

			assert.Equal(t, tt.status, rr.Code)
			assert.JSONEq(t, tt.body, rr.Body.String())
		})
	}
}

func TestHello(t *testing.T) {
	s := newTestServer(t, false)

	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/hello", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":"hello"}`, rr.Body.String())
}

func TestViewIsNotLogged(t *testing.T) {
	s := newTestServer(t, false)

	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/view", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "upload")
	assert.NotContains(t, s.logs.String(), "/view")

	s.do(t, httptest.NewRequest(http.MethodGet, "/hello", nil))
	assert.Contains(t, s.logs.String(), "GET : http://example.com/hello")
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, false)

	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	s.do(t, httptest.NewRequest(http.MethodGet, "/get-all", nil))

	rr = s.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "filegate_http_requests_total")
	assert.Contains(t, rr.Body.String(), `filegate_storage_ops_total{op="list",result="ok"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := s.do(t, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
