package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firebasebindings/internal/binding"
	"firebasebindings/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *binding.Config {
	return &binding.Config{
		Server: binding.ServerConfig{
			Host:            "127.0.0.1",
			Port:            "0",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
			MaxBodyBytes:    1024,
		},
		Metrics: binding.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func newTestServer(config *binding.Config, metrics binding.Metrics) *Server {
	logger := (&testutil.MockLogger{}).AllowAll()
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	handlers := NewHandlers(Services{}, logger, metrics)
	return NewServer(config, handlers, metricsHandler, logger, metrics)
}

func serve(s *Server, method, target, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	s.Handler().ServeHTTP(recorder, httptest.NewRequest(method, target, strings.NewReader(body)))
	return recorder
}

func TestNewServer(t *testing.T) {
	config := testConfig()
	logger := &testutil.MockLogger{}
	logger.On("With", []any{"component", "server"}).Once()
	logger.On("With", []any{"component", "handlers"}).Once()

	handlers := NewHandlers(Services{}, logger, binding.NopMetrics{})
	server := NewServer(config, handlers, nil, logger, binding.NopMetrics{})

	assert.Same(t, config, server.config)
	assert.Same(t, handlers, server.handlers)
	assert.Nil(t, server.httpServer)
	logger.AssertExpectations(t)
}

func TestServer_Routes(t *testing.T) {
	server := newTestServer(testConfig(), (&testutil.MockMetrics{}).AllowAll())

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"encode", http.MethodGet, "/v1/keys/encode?key=a.b", http.StatusOK},
		{"decode", http.MethodGet, "/v1/keys/decode?key=a%252Eb", http.StatusOK},
		{"snake", http.MethodGet, "/v1/identifiers/snake?id=SignIn", http.StatusOK},
		{"title", http.MethodGet, "/v1/identifiers/title?id=sign_in", http.StatusOK},
		{"verify without auth module", http.MethodPost, "/v1/auth/verify", http.StatusServiceUnavailable},
		{"database without module", http.MethodGet, "/v1/db/users", http.StatusServiceUnavailable},
		{"analytics without module", http.MethodPost, "/v1/analytics/events", http.StatusServiceUnavailable},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"wrong method", http.MethodPost, "/v1/keys/encode", http.StatusMethodNotAllowed},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound},
		{"preflight", http.MethodOptions, "/v1/auth/verify", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serve(server, tt.method, tt.target, "")
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	config := testConfig()
	config.Metrics.Enabled = false
	server := newTestServer(config, binding.NopMetrics{})

	assert.Equal(t, http.StatusNotFound, serve(server, http.MethodGet, "/metrics", "").Code)
}

func TestServer_SecurityAndCORSHeaders(t *testing.T) {
	server := newTestServer(testConfig(), binding.NopMetrics{})
	recorder := serve(server, http.MethodGet, "/health", "")

	assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", recorder.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store, no-cache, must-revalidate", recorder.Header().Get("Cache-Control"))
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestServer_withMetrics(t *testing.T) {
	metrics := &testutil.MockMetrics{}
	metrics.On("ObserveHTTPRequest", http.MethodGet, "GET /v1/keys/encode", http.StatusOK, mock.AnythingOfType("time.Duration")).Once()
	metrics.On("ObserveHTTPRequest", http.MethodGet, "unmatched", http.StatusNotFound, mock.AnythingOfType("time.Duration")).Once()

	server := newTestServer(testConfig(), metrics)
	serve(server, http.MethodGet, "/v1/keys/encode?key=x", "")
	serve(server, http.MethodGet, "/nope", "")

	metrics.AssertExpectations(t)
}

func TestServer_withLogging(t *testing.T) {
	logger := &testutil.MockLogger{}
	logger.On("With", mock.Anything)
	logger.On("Info", "HTTP request", mock.MatchedBy(func(kv []any) bool {
		return len(kv) == 12 && kv[1] == http.MethodGet && kv[3] == "/test" && kv[5] == http.StatusTeapot
	})).Once()

	server := NewServer(testConfig(), NewHandlers(Services{}, logger, binding.NopMetrics{}), nil, logger, binding.NopMetrics{})
	handler := server.withLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusTeapot, recorder.Code)
	logger.AssertExpectations(t)
}

func TestServer_BodyLimit(t *testing.T) {
	config := testConfig()
	config.Server.MaxBodyBytes = 16
	server := newTestServer(config, binding.NopMetrics{})

	handler := server.withBodyLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var v any
		if err := decodeBody(r, &v); err != nil {
			server.handlers.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/v1/db/x",
		strings.NewReader(`{"text":"`+strings.Repeat("a", 64)+`"}`)))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "exceeds 16 bytes")

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/v1/db/x", strings.NewReader(`1`)))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestServer_StopWithoutStart(t *testing.T) {
	server := newTestServer(testConfig(), binding.NopMetrics{})
	require.NoError(t, server.Stop(context.Background()))
}
