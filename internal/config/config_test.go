package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123"

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "DB_PATH", "AUTH_SECRET", "AUTH_URL",
		"AUTH_GITHUB_ID", "AUTH_GITHUB_SECRET", "SESSION_TTL",
		"REQUEST_TIMEOUT", "SHUTDOWN_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_SECRET", secret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "data/snippets.db", cfg.DBPath)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "http://localhost:8080", cfg.Auth.URL)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.GitHubEnabled())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_SECRET", secret)
	t.Setenv("PORT", "9000")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("AUTH_URL", "https://snippets.example/")
	t.Setenv("AUTH_GITHUB_ID", "id")
	t.Setenv("AUTH_GITHUB_SECRET", "shh")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, "https://snippets.example", cfg.Auth.URL)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.GitHubEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 7000
db_path: /var/lib/snippets.db
request_timeout: 5s
auth:
  secret: file-secret-long-enough
  session_ttl: 1h
log:
  level: debug
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Port, "env overrides file")
	assert.Equal(t, "/var/lib/snippets.db", cfg.DBPath)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "file-secret-long-enough", cfg.Auth.Secret)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"short secret", map[string]string{"AUTH_SECRET": "short"}},
		{"bad port", map[string]string{"AUTH_SECRET": secret, "PORT": "eighty"}},
		{"port out of range", map[string]string{"AUTH_SECRET": secret, "PORT": "70000"}},
		{"bad duration", map[string]string{"AUTH_SECRET": secret, "REQUEST_TIMEOUT": "soon"}},
		{"half github", map[string]string{"AUTH_SECRET": secret, "AUTH_GITHUB_ID": "id"}},
		{"missing file", map[string]string{"AUTH_SECRET": secret, "CONFIG_FILE": "/nonexistent/config.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
