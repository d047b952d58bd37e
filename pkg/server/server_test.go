package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agiloft-mcp/pkg/agiloft"
	"github.com/kadirpekel/agiloft-mcp/pkg/config"
)

func testConfig(t *testing.T, metricsEnabled bool) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Agiloft.BaseURL = "https://example.invalid/ewws/v2"
	cfg.Agiloft.Username = "tester"
	cfg.Agiloft.Password = "secret"
	cfg.Agiloft.KB = "Demo"
	cfg.Server.Metrics = &metricsEnabled
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

// newTestServer assembles a server over an unreachable backend. Assembly
// performs no network activity.
func newTestServer(t *testing.T, metricsEnabled bool) *Server {
	t.Helper()
	cfg := testConfig(t, metricsEnabled)
	session := agiloft.NewSession(agiloft.SessionConfig{
		BaseURL:  cfg.Agiloft.BaseURL,
		Username: cfg.Agiloft.Username,
		Password: cfg.Agiloft.Password,
		KB:       cfg.Agiloft.KB,
	})
	client := agiloft.NewClient(cfg.Agiloft.BaseURL, session)
	dispatcher := agiloft.NewDispatcher(agiloft.MustDefaultRegistry(), client)
	return New(cfg, dispatcher, NewMetrics())
}

func TestServer_HealthEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	rec := httptest.NewRecorder()
	srv.httpHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.NotEmpty(t, payload["version"])
}

func TestServer_MetricsEndpointGating(t *testing.T) {
	enabled := newTestServer(t, true)
	rec := httptest.NewRecorder()
	enabled.httpHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	disabled := newTestServer(t, false)
	rec = httptest.NewRecorder()
	disabled.httpHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
