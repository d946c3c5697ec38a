package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

const (
	StoreBackendSheetDB = "sheetdb"
	StoreBackendGSheets = "gsheets"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`
	// remote sheet store
	StoreBackend        string `toml:"store_backend"`
	StoreBaseURL        string `toml:"store_base_url"`
	StoreToken          string `toml:"-"`
	StoreTimeoutSeconds int    `toml:"store_timeout_seconds"`
	// google sheets backend
	GSheetsSpreadsheetID   string `toml:"gsheets_spreadsheet_id"`
	GSheetsCredentialsFile string `toml:"gsheets_credentials_file"`
	// 0 disables the catalog cache, so every page render re-reads the Treinos sheet
	CatalogCacheTTLSeconds int `toml:"catalog_cache_ttl_seconds"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// redis, only used for rate limiting the save endpoints; empty host disables it
	RedisHost           string `toml:"redis_host"`
	RedisPort           string `toml:"redis_port"`
	RedisPassword       string `toml:"-"`
	SaveRateLimitPerMin int    `toml:"save_rate_limit_per_min"`
	// error reporting & tracing
	SentryEnabled    bool   `toml:"sentry_enabled"`
	SentryDSN        string `toml:"-"`
	HoneycombEnabled bool   `toml:"honeycomb_enabled"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	cfg.Environment = strings.ToLower(env)
	return cfg, nil
}

// envOverrides holds values that are usually not committed to the TOML file.
type envOverrides struct {
	Port                   int    `env:"GYMPLAN_PORT"`
	StoreBaseURL           string `env:"GYMPLAN_STORE_URL"`
	StoreToken             string `env:"GYMPLAN_STORE_TOKEN"`
	GSheetsSpreadsheetID   string `env:"GYMPLAN_GSHEETS_SPREADSHEET_ID"`
	GSheetsCredentialsFile string `env:"GYMPLAN_GSHEETS_CREDENTIALS"`
	RedisPassword          string `env:"GYMPLAN_REDIS_PASS"`
	SentryDSN              string `env:"SENTRY_DSN"`
}

// Load reads the TOML config file, picks the section for the given env and
// applies environment variable overrides on top of it.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return fromToml(&t, env, envconfig.OsLookuper())
}

// Parse is like Load, but reads the TOML from a string and the overrides
// from the given lookuper.
func Parse(env, data string, lookuper envconfig.Lookuper) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return fromToml(&t, env, lookuper)
}

func fromToml(t *Toml, env string, lookuper envconfig.Lookuper) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	var overrides envOverrides
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &overrides,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env overrides: %w", err)
	}
	cfg.applyOverrides(overrides)
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyOverrides(o envOverrides) {
	if o.Port != 0 {
		c.Port = o.Port
	}
	if o.StoreBaseURL != "" {
		c.StoreBaseURL = o.StoreBaseURL
	}
	if o.StoreToken != "" {
		c.StoreToken = o.StoreToken
	}
	if o.GSheetsSpreadsheetID != "" {
		c.GSheetsSpreadsheetID = o.GSheetsSpreadsheetID
	}
	if o.GSheetsCredentialsFile != "" {
		c.GSheetsCredentialsFile = o.GSheetsCredentialsFile
	}
	if o.RedisPassword != "" {
		c.RedisPassword = o.RedisPassword
	}
	if o.SentryDSN != "" {
		c.SentryDSN = o.SentryDSN
	}
}

func (c *Config) setDefaults() {
	if c.StoreBackend == "" {
		c.StoreBackend = StoreBackendSheetDB
	}
	if c.StoreTimeoutSeconds <= 0 {
		c.StoreTimeoutSeconds = 15
	}
	if c.SaveRateLimitPerMin <= 0 {
		c.SaveRateLimitPerMin = 30
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.CatalogCacheTTLSeconds < 0 {
		return errors.New("catalog cache ttl cannot be negative")
	}
	switch c.StoreBackend {
	case StoreBackendSheetDB:
		if c.StoreBaseURL == "" {
			return errors.New("store base url not set")
		}
	case StoreBackendGSheets:
		if c.GSheetsSpreadsheetID == "" {
			return errors.New("google sheets spreadsheet id not set")
		}
	default:
		return fmt.Errorf("unknown store backend: %s", c.StoreBackend)
	}
	return nil
}

func (c *Config) RateLimitEnabled() bool {
	return c.RedisHost != ""
}
