package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/config"
	"github.com/GriffinCanCode/ScenarioForge/internal/logging"
)

const blueprintJSON = `{
  "map_key": "highway",
  "traffic_density": "high",
  "actors": [{"name": "Ego", "type": "car", "lane": -2, "s": 0, "speed": 100}],
  "actions": [{"type": "brake", "actor": "Ego", "target_speed": 40, "trigger_time": 3}]
}`

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Compiler.OutputDir = t.TempDir()
	cfg.Logging.Development = true
	if mutate != nil {
		mutate(cfg)
	}

	reg := prometheus.NewRegistry()
	srv, err := NewServer(cfg, Options{Logger: logging.NewNop(), Registerer: reg, Gatherer: reg})
	require.NoError(t, err)
	return srv
}

func serve(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestServerRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/maps", "", http.StatusOK},
		{http.MethodGet, "/maps/city", "", http.StatusOK},
		{http.MethodPost, "/context", `{"request": "overtake on the highway"}`, http.StatusOK},
		{http.MethodPost, "/compile", blueprintJSON, http.StatusOK},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestServerMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	require.Equal(t, http.StatusOK, serve(srv, http.MethodPost, "/compile", blueprintJSON).Code)

	w := serve(srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `scenarioforge_compiles_total{map="highway",outcome="ok"} 1`)
	assert.Contains(t, w.Body.String(), `scenarioforge_http_requests_total{method="POST",path="/compile",status="200"} 1`)
}

func TestServerUsesPlacementCatalog(t *testing.T) {
	catalog := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte(`roads:
  - road: e6mini.xodr
    candidates:
      - {lane: -3, s: 40}
      - {lane: -2, s: 5}
`), 0o644))

	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Placement.Catalog = catalog
	})

	w := serve(srv, http.MethodPost, "/compile?format=json", blueprintJSON)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accepted":1`)
	assert.Contains(t, w.Body.String(), "Traffic_0")
}

func TestNewServerErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing knowledge file", func(cfg *config.Config) { cfg.Compiler.KnowledgeFile = "/does/not/exist.yaml" }},
		{"missing catalog", func(cfg *config.Config) { cfg.Placement.Catalog = "/does/not/exist.yaml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			reg := prometheus.NewRegistry()
			_, err := NewServer(cfg, Options{Logger: logging.NewNop(), Registerer: reg, Gatherer: reg})
			assert.Error(t, err)
		})
	}
}
