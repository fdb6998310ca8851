package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/threadline-backend/pkg/config"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
)

func TestRequestIDKeepsWellFormedInbound(t *testing.T) {
	var seen string
	h := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "edge-42.a")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "edge-42.a", seen)
	assert.Equal(t, "edge-42.a", rec.Header().Get(requestIDHeader))
}

func TestRequestIDReplacesHostileInbound(t *testing.T) {
	h := RequestID(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	for _, inbound := range []string{"", "has space", "line\nbreak", strings.Repeat("a", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, inbound)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		got := rec.Header().Get(requestIDHeader)
		assert.NotEqual(t, inbound, got)
		assert.Len(t, got, 36)
	}
}

func TestRecovererWritesInternalEnvelope(t *testing.T) {
	h := Recoverer(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "nil map write")
}

func TestRecovererReraisesAbort(t *testing.T) {
	h := Recoverer(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLoggingRecordsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	r := chi.NewRouter()
	r.Use(Logging(logg))
	r.Get("/orders/{orderNumber}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/1001", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	line := buf.String()
	assert.Contains(t, line, `"route":"/orders/{orderNumber}"`)
	assert.Contains(t, line, `"status":418`)
	assert.Contains(t, line, `"bytes":5`)
	assert.NotContains(t, line, "/orders/1001")
}

func TestCORSPolicyByEnvironment(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	preflight := func(h http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/checkout", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	dev := CORS(config.AppConfig{Env: config.AppEnvDev})(ok)
	assert.Equal(t, "http://localhost:5173", preflight(dev, "http://localhost:5173").Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, preflight(dev, "https://evil.example").Header().Get("Access-Control-Allow-Origin"))

	prod := CORS(config.AppConfig{Env: "prod", CORSOrigins: []string{"https://shop.threadline.se"}})(ok)
	assert.Equal(t, "https://shop.threadline.se", preflight(prod, "https://shop.threadline.se").Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, preflight(prod, "http://localhost:3000").Header().Get("Access-Control-Allow-Origin"))

	closed := CORS(config.AppConfig{Env: "prod"})(ok)
	assert.Empty(t, preflight(closed, "https://shop.threadline.se").Header().Get("Access-Control-Allow-Origin"))
}
