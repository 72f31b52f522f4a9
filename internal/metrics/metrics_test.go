package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	m := New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/get-file/x", http.NoBody))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/get-file/y", http.NoBody))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("500", http.MethodGet)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inflight))
}

func TestObserve(t *testing.T) {
	m := New()

	m.Observe("upload", 42, nil, time.Millisecond)
	m.Observe("upload", 0, errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageOps.WithLabelValues("upload", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageOps.WithLabelValues("upload", "error")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.storageBytes.WithLabelValues("upload")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.Observe("list", 0, nil, time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `filegate_storage_ops_total{op="list",result="ok"} 1`)
}
