package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
agiloft:
  base_url: https://example.agiloft.com/ewws/v2
  username: admin
  password: secret
  kb: Demo
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Agiloft.Language)
	assert.Equal(t, 30*time.Second, cfg.Agiloft.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Agiloft.TokenSafetyMargin)
	assert.Equal(t, TransportStdio, cfg.Server.Transport)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.True(t, cfg.Server.MetricsEnabled())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_FullConfig(t *testing.T) {
	cfg, err := Load([]byte(`
agiloft:
  base_url: https://example.agiloft.com/ewws/v2
  username: admin
  password: secret
  kb: Demo
  language: de
  timeout: 5s
server:
  transport: http
  host: 127.0.0.1
  port: 9090
  metrics: false
logging:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "de", cfg.Agiloft.Language)
	assert.Equal(t, 5*time.Second, cfg.Agiloft.Timeout)
	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Address())
	assert.False(t, cfg.Server.MetricsEnabled())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing_base_url",
			yaml:    "agiloft:\n  username: a\n  password: b\n  kb: c\n",
			wantErr: "base_url is required",
		},
		{
			name:    "missing_credentials",
			yaml:    "agiloft:\n  base_url: https://x\n  kb: c\n",
			wantErr: "username is required",
		},
		{
			name:    "missing_kb",
			yaml:    "agiloft:\n  base_url: https://x\n  username: a\n  password: b\n",
			wantErr: "kb is required",
		},
		{
			name:    "bad_transport",
			yaml:    minimalYAML + "server:\n  transport: grpc\n",
			wantErr: "invalid transport",
		},
		{
			name:    "bad_log_level",
			yaml:    minimalYAML + "logging:\n  level: verbose\n",
			wantErr: "invalid level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("AGILOFT_PASSWORD", "from-env")
	t.Setenv("AGILOFT_KB", "")

	cfg, err := Load([]byte(`
agiloft:
  base_url: https://example.agiloft.com/ewws/v2
  username: admin
  password: ${AGILOFT_PASSWORD}
  kb: ${AGILOFT_KB:-Demo}
`))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Agiloft.Password)
	assert.Equal(t, "Demo", cfg.Agiloft.KB, "unset variables fall back to the default")
}

func TestLoad_EnvOverridesFileValues(t *testing.T) {
	t.Setenv("AGILOFT_USERNAME", "env-user")

	cfg, err := Load([]byte(minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, "env-user", cfg.Agiloft.Username)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("AGILOFT_BASE_URL", "https://example.agiloft.com/ewws/v2")
	t.Setenv("AGILOFT_USERNAME", "admin")
	t.Setenv("AGILOFT_PASSWORD", "secret")
	t.Setenv("AGILOFT_KB", "Demo")
	t.Setenv("AGILOFT_LANGUAGE", "fr")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "Demo", cfg.Agiloft.KB)
	assert.Equal(t, "fr", cfg.Agiloft.Language)
	assert.Equal(t, TransportStdio, cfg.Server.Transport)
}

func TestFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("AGILOFT_BASE_URL", "https://example.agiloft.com/ewws/v2")
	t.Setenv("AGILOFT_USERNAME", "")
	t.Setenv("AGILOFT_PASSWORD", "")
	t.Setenv("AGILOFT_KB", "")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestLoad_JSONFallback(t *testing.T) {
	cfg, err := Load([]byte(`{"agiloft":{"base_url":"https://x","username":"a","password":"b","kb":"c"}}`))
	require.NoError(t, err)
	assert.Equal(t, "https://x", cfg.Agiloft.BaseURL)
}
