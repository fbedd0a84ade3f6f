package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"holidaze/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.GinMode = "test"
	cfg.SessionStore = "memory"
	cfg.SessionTTL = time.Hour
	cfg.NATSEnabled = false
	cfg.SearchEnabled = false
	cfg.MetricsEnabled = true
	return cfg
}

func TestHealthWithMemoryStore(t *testing.T) {
	srv, err := NewServer(testConfig())
	require.NoError(t, err)
	defer srv.Cleanup()

	w := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "holidaze-bff", body["service"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, err := NewServer(testConfig())
	require.NoError(t, err)
	defer srv.Cleanup()

	w := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/state", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "go_goroutines"))
}

func TestUnknownSessionStore(t *testing.T) {
	cfg := testConfig()
	cfg.SessionStore = "sqlite"

	_, err := NewServer(cfg)
	assert.ErrorContains(t, err, "unknown session store")
}

func TestProtectedRouteWithoutSession(t *testing.T) {
	srv, err := NewServer(testConfig())
	require.NoError(t, err)
	defer srv.Cleanup()

	w := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/login"`)
}

func TestPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.CORSOrigin = "https://holidaze.example"
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	defer srv.Cleanup()

	req := httptest.NewRequest(http.MethodOptions, "/api/venues", nil)
	w := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://holidaze.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
