package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// --- RequestLogging ---

func TestRequestLogging_GeneratesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	h := RequestLogging(logger.NewWithWriter("test", "info", &buf))(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart?x=1", nil))

	id := rec.Header().Get(CorrelationHeader)
	require.NotEmpty(t, id)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, id, line["correlation_id"])
	assert.Equal(t, "/api/v1/cart", line["path"])
	assert.Equal(t, "x=1", line["query"])
	assert.Equal(t, float64(http.StatusOK), line["status"])
	assert.Equal(t, float64(2), line["bytes"])
}

func TestRequestLogging_KeepsInboundCorrelationID(t *testing.T) {
	h := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc", logger.CorrelationIDFromContext(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(CorrelationHeader))
}

// --- Recovery ---

func TestRecovery_WritesEnvelope(t *testing.T) {
	h := Recovery(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
}

// --- Session ---

func TestSession_RequiresHeader(t *testing.T) {
	called := false
	h := Session(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "MISSING_SESSION", resp.Error.Code)
}

func TestSession_StoresID(t *testing.T) {
	var got string
	h := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionIDFromRequest(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "b3c1f0e2-4d5a-4c1b-9a0e-1234567890ab")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "b3c1f0e2-4d5a-4c1b-9a0e-1234567890ab", got)
}

func TestValidSessionID(t *testing.T) {
	assert.True(t, validSessionID("abc_DEF-1.2"))
	assert.False(t, validSessionID(""))
	assert.False(t, validSessionID("has space"))
	assert.False(t, validSessionID("semi;colon"))
	assert.False(t, validSessionID(string(bytes.Repeat([]byte("a"), 129))))
}

// --- RequestLogger ---

func TestRequestLogger_EnrichesFromContextAndHeader(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter("test", "info", &buf)

	h := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.WithCorrelationID(req.Context(), "corr-1"))
	req.Header.Set(SessionHeader, "sess-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "corr-1", line["correlation_id"])
	assert.Equal(t, "sess-1", line["session_id"])
}

func TestRequestLogger_FallbackIsNotDefault(t *testing.T) {
	base := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotSame(t, slog.Default(), logger.FromContext(r.Context()))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

// --- CacheControl ---

func TestCacheControl_OnlyOnReads(t *testing.T) {
	r := chi.NewRouter()
	r.Use(CacheControl(60))
	r.Get("/products", okHandler)
	r.Post("/products", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, "public, max-age=60, s-maxage=60", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", nil))
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestCacheControl_ErrorsAndHandlerOverride(t *testing.T) {
	r := chi.NewRouter()
	r.Use(CacheControl(60))
	r.Get("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	r.Get("/degraded", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte("{}"))
	})
	r.Get("/implicit", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/degraded", nil))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/implicit", nil))
	assert.Equal(t, "public, max-age=60, s-maxage=60", rec.Header().Get("Cache-Control"))
}

// --- CORS ---

func TestCORS_Preflight(t *testing.T) {
	h := CORS(DefaultCORSConfig())(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), SessionHeader)
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_PlainOptionsReachesHandler(t *testing.T) {
	h := CORS(DefaultCORSConfig())(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORS_ExplicitOrigins(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"https://shop.example.com"}})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS_SubdomainPattern(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"https://*.example.com"}})(http.HandlerFunc(okHandler))

	tests := []struct {
		origin string
		want   int
	}{
		{"https://m.example.com", http.StatusNoContent},
		{"https://EU.Example.com", http.StatusNoContent},
		{"https://.example.com", http.StatusForbidden},
		{"http://m.example.com", http.StatusForbidden},
		{"https://example.org", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
		req.Header.Set("Origin", tt.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, tt.origin)
	}
}

// --- IPAllowlist ---

func TestIPAllowlist(t *testing.T) {
	mw := IPAllowlist([]string{"127.0.0.0/8", "not-a-cidr"}, logger.Discard())
	h := mw(http.HandlerFunc(okHandler))

	tests := []struct {
		remote string
		want   int
	}{
		{"127.0.0.1:1234", http.StatusOK},
		{"[::ffff:127.0.0.1]:1234", http.StatusOK},
		{"10.1.2.3:80", http.StatusForbidden},
		{"garbage", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
		req.RemoteAddr = tt.remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, tt.remote)
	}
}
