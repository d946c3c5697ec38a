package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigToml = `
[development]
host = "localhost"
port = 9000
log_level = "trace"
store_base_url = "http://localhost:9999/api/v1/dev"
prometheus_metrics_port = "9002"

[production]
host = "0.0.0.0"
port = 8080
log_level = "info"
store_backend = "gsheets"
gsheets_spreadsheet_id = "sheet-id-123"
catalog_cache_ttl_seconds = 60
redis_host = "redis"
save_rate_limit_per_min = 10
sentry_enabled = true
`

func TestParse_Development(t *testing.T) {
	cfg, err := Parse("dev", testConfigToml, envconfig.MapLookuper(nil))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, StoreBackendSheetDB, cfg.StoreBackend)
	assert.Equal(t, "http://localhost:9999/api/v1/dev", cfg.StoreBaseURL)
	assert.Equal(t, 15, cfg.StoreTimeoutSeconds)
	assert.Equal(t, 0, cfg.CatalogCacheTTLSeconds)
	assert.Equal(t, 30, cfg.SaveRateLimitPerMin)
	assert.Equal(t, "6379", cfg.RedisPort)
	assert.False(t, cfg.RateLimitEnabled())
}

func TestParse_Production(t *testing.T) {
	cfg, err := Parse("production", testConfigToml, envconfig.MapLookuper(map[string]string{
		"GYMPLAN_GSHEETS_CREDENTIALS": "/etc/gymplan/creds.json",
		"GYMPLAN_REDIS_PASS":          "secret",
		"SENTRY_DSN":                  "https://key@sentry.example/1",
	}))
	require.NoError(t, err)

	assert.Equal(t, StoreBackendGSheets, cfg.StoreBackend)
	assert.Equal(t, "sheet-id-123", cfg.GSheetsSpreadsheetID)
	assert.Equal(t, "/etc/gymplan/creds.json", cfg.GSheetsCredentialsFile)
	assert.Equal(t, 60, cfg.CatalogCacheTTLSeconds)
	assert.Equal(t, 10, cfg.SaveRateLimitPerMin)
	assert.Equal(t, "secret", cfg.RedisPassword)
	assert.Equal(t, "https://key@sentry.example/1", cfg.SentryDSN)
	assert.True(t, cfg.SentryEnabled)
	assert.True(t, cfg.RateLimitEnabled())
}

func TestParse_EnvOverrides(t *testing.T) {
	cfg, err := Parse("development", testConfigToml, envconfig.MapLookuper(map[string]string{
		"GYMPLAN_PORT":        "7777",
		"GYMPLAN_STORE_URL":   "https://sheetdb.io/api/v1/real",
		"GYMPLAN_STORE_TOKEN": "tok",
	}))
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Port)
	assert.Equal(t, "https://sheetdb.io/api/v1/real", cfg.StoreBaseURL)
	assert.Equal(t, "tok", cfg.StoreToken)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("staging", testConfigToml, envconfig.MapLookuper(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown env")

	_, err = Parse("dev", "[production]\nport = 1\n", envconfig.MapLookuper(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config section")

	_, err = Parse("dev", "not = [valid", envconfig.MapLookuper(nil))
	require.Error(t, err)

	_, err = Parse("dev", testConfigToml, envconfig.MapLookuper(map[string]string{
		"GYMPLAN_PORT": "not-a-number",
	}))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Port: 9000, StoreBackend: StoreBackendSheetDB, StoreBaseURL: "http://x"}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Port = 0
	assert.ErrorContains(t, cfg.Validate(), "invalid port")

	cfg = valid()
	cfg.StoreBaseURL = ""
	assert.ErrorContains(t, cfg.Validate(), "store base url")

	cfg = valid()
	cfg.StoreBackend = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "unknown store backend")

	cfg = valid()
	cfg.StoreBackend = StoreBackendGSheets
	assert.ErrorContains(t, cfg.Validate(), "spreadsheet id")

	cfg = valid()
	cfg.CatalogCacheTTLSeconds = -1
	assert.ErrorContains(t, cfg.Validate(), "ttl")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigToml), 0o600))

	cfg, err := Load("dev", path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Host)

	_, err = Load("dev", filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
