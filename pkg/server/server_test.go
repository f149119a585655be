package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobe4cn/kb-rerank/pkg/config"
	"github.com/kobe4cn/kb-rerank/pkg/crossencoder"
)

func testConfig(token string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 8000,
			Mode: "test",
		},
		Auth: config.AuthConfig{Token: token},
		Rerank: config.RerankConfig{
			Provider:      "mock",
			MaxCandidates: 256,
		},
	}
}

func testServer(t *testing.T, token string) *Server {
	t.Helper()
	srv := New(testConfig(token), crossencoder.NewMockScorerClient(crossencoder.Config{}), nil)
	srv.Setup()
	return srv
}

func doRerank(srv *Server, body, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/rerank", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestNew(t *testing.T) {
	srv := New(testConfig(""), nil, nil)
	require.NotNil(t, srv)
	assert.NotNil(t, srv.logger)
}

func TestSetup(t *testing.T) {
	srv := testServer(t, "")

	require.NotNil(t, srv.router)
	require.NotNil(t, srv.server)
	assert.Equal(t, "localhost:8000", srv.server.Addr)
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthIgnoresAuthConfig(t *testing.T) {
	srv := testServer(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRerankWithoutTokenConfigured(t *testing.T) {
	srv := testServer(t, "")

	w := doRerank(srv, `{"query":"cats","candidates":["a cat sits","a dog runs"]}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "scores")
}

func TestRerankAuth(t *testing.T) {
	srv := testServer(t, "secret")
	body := `{"query":"cats","candidates":["a cat sits"]}`

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
	}{
		{"correct token", "Bearer secret", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong token", "Bearer wrong", http.StatusUnauthorized},
		{"missing scheme", "secret", http.StatusUnauthorized},
		{"lowercase scheme", "bearer secret", http.StatusUnauthorized},
		{"trailing garbage", "Bearer secret x", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRerank(srv, body, tt.authHeader)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), "unauthorized")
			}
		})
	}
}

func TestRerankEmptyCandidatesThroughServer(t *testing.T) {
	srv := testServer(t, "")

	w := doRerank(srv, `{"query":"cats","candidates":[]}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"scores":[]}`, w.Body.String())
}

func TestRequestIDHeader(t *testing.T) {
	srv := testServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// Caller-supplied IDs are preserved
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "given-id")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, "given-id", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	srv := testServer(t, "")

	req := httptest.NewRequest(http.MethodOptions, "/rerank", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		name         string
		host         string
		port         int
		expectedAddr string
	}{
		{"all interfaces", "0.0.0.0", 8000, "0.0.0.0:8000"},
		{"localhost", "localhost", 3000, "localhost:3000"},
		{"loopback", "127.0.0.1", 9090, "127.0.0.1:9090"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("")
			cfg.Server.Host = tt.host
			cfg.Server.Port = tt.port

			srv := New(cfg, crossencoder.NewMockScorerClient(crossencoder.Config{}), nil)
			srv.Setup()

			assert.Equal(t, tt.expectedAddr, srv.server.Addr)
		})
	}
}

func TestRouteExists(t *testing.T) {
	srv := testServer(t, "")

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health"},
		{http.MethodPost, "/rerank"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)

			assert.NotEqual(t, http.StatusNotFound, w.Code)
		})
	}
}
