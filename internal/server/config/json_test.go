package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	t.Run("loads every key", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"endpoint_addr_http": "www.example:9000",
			"database_dsn":       "postgres://db",
			"secret_key":         "my_secret_key",
			"cookie_secure":      true,
			"auth_rate_limit":    1.5,
			"auth_rate_burst":    3,
			"trusted_proxies":    []string{"10.0.0.0/8", "192.0.2.7"},
			"shutdown_timeout":   "2s",
		})

		cfg := &Config{}
		parseJson(cfg, []string{"-config", path})

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.True(t, cfg.CookieSecure)
		assert.Equal(t, 1.5, cfg.AuthRateLimit)
		assert.Equal(t, 3, cfg.AuthRateBurst)
		assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.7"}, cfg.TrustedProxies)
		assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("absent keys keep earlier values", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{"secret_key": "k"})

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-c", path})

		assert.Equal(t, "k", cfg.SecretKey)
		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.Nil(t, cfg.TrustedProxies)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		body := "endpoint_addr_http: \":9090\"\nsecret_key: yaml-secret\nshutdown_timeout: 3s\ncookie_secure: true\ntrusted_proxies:\n  - 172.16.0.0/12\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-c", path})

		assert.Equal(t, ":9090", cfg.EndpointAddrHTTP)
		assert.Equal(t, "yaml-secret", cfg.SecretKey)
		assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
		assert.True(t, cfg.CookieSecure)
		assert.Equal(t, 5.0, cfg.AuthRateLimit)
		assert.Equal(t, []string{"172.16.0.0/12"}, cfg.TrustedProxies)
	})

	t.Run("invalid YAML → panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yml")
		require.NoError(t, os.WriteFile(bad, []byte("secret_key: [unclosed"), 0o600))

		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", bad}) })
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		cfg := &Config{EndpointAddrHTTP: "defaults:1234"}
		parseJson(cfg, nil)
		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", bad}) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", "/does/not/exist.json"}) })
	})
}
