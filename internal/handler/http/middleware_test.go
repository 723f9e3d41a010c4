package http

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/service"
)

// ── withTraceID ──────────────────────────────────────────────────────────

func TestWithTraceID(t *testing.T) {
	h := newTestHandler(t, &service.Services{})

	var seen *logger.Logger
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.FromRequest(r)
	})

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.withTraceID(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, rec.Header().Get(traceIDHeader), 36)
		assert.NotNil(t, seen)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(traceIDHeader, "trace-123")
		rec := httptest.NewRecorder()
		h.withTraceID(next).ServeHTTP(rec, req)

		assert.Equal(t, "trace-123", rec.Header().Get(traceIDHeader))
	})
}

// ── withLogging ──────────────────────────────────────────────────────────

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler(t, &service.Services{})
	h.logger = logger.NewLogger("test", logger.WithOutput(&buf))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	rec := httptest.NewRecorder()
	h.withTraceID(h.withLogging(next)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	line := buf.String()
	assert.Contains(t, line, `"uri":"/api/contact"`)
	assert.Contains(t, line, `"method":"POST"`)
	assert.Contains(t, line, `"status":418`)
	assert.Contains(t, line, `"size":15`)
	assert.Contains(t, line, `"trace_id"`)
}

// ── responseWriter ───────────────────────────────────────────────────────

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rec}

	_, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte("de"))

	assert.Equal(t, http.StatusOK, w.status, "implicit header wins")
	assert.Equal(t, 5, w.size)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Same(t, rec, w.Unwrap())
}

// ── withGZip ─────────────────────────────────────────────────────────────

func TestWithGZip_CompressesResponse(t *testing.T) {
	payload := strings.Repeat("agentity ", 100)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()
	withGZip(next).ServeHTTP(rec, req)

	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", rec.Header().Get("Vary"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, payload, string(body))
}

func TestWithGZip_PlainWithoutAcceptEncoding(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain"))
	})

	rec := httptest.NewRecorder()
	withGZip(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "plain", rec.Body.String())
}

func TestWithGZip_EmptyResponse(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	withGZip(next).ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Zero(t, rec.Body.Len())
}

func TestWithGZip_DecompressesRequest(t *testing.T) {
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	_, _ = zw.Write([]byte(`{"email":"jane@example.com"}`))
	require.NoError(t, zw.Close())

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		assert.Empty(t, r.Header.Get("Content-Encoding"))
	})

	req := httptest.NewRequest(http.MethodPost, "/", &compressed)
	req.Header.Set("Content-Encoding", "gzip")
	withGZip(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, `{"email":"jane@example.com"}`, got)
}

func TestWithGZip_InvalidRequestBody(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next must not be called")
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()
	withGZip(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ── CheckHTTPMethod ──────────────────────────────────────────────────────

func TestCheckHTTPMethod(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.MethodNotAllowed(CheckHTTPMethod(router))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/version", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInit_UnsupportedMethods(t *testing.T) {
	h := newTestHandler(t, &service.Services{})

	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/auth/register"},
		{http.MethodPut, "/api/auth/login"},
		{http.MethodPost, "/api/version"},
		{http.MethodDelete, "/api/settings"},
		{http.MethodPost, "/rss.xml"},
		{http.MethodPatch, "/api/auth/sessions"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := serve(h, tt.method, tt.target, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}
