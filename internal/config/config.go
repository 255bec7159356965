package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/cinemabot/internal/keyboard"
)

// LayoutConfig mirrors keyboard.Layout in the config file
type LayoutConfig struct {
	SymbolsLimit int `json:"symbols_limit"`
	CountLimit   int `json:"count_limit"`
}

// Layout converts the config values into a keyboard layout
func (l LayoutConfig) Layout() keyboard.Layout {
	return keyboard.Layout{SymbolsLimit: l.SymbolsLimit, CountLimit: l.CountLimit}
}

// Config holds all runtime settings of the bot
type Config struct {
	// Telegram transport
	APIToken      string `json:"api_token"`
	WebhookHost   string `json:"webhook_host"`
	WebhookPath   string `json:"webhook_path"`
	WebhookSecret string `json:"webhook_secret"`
	ListenAddr    string `json:"listen_addr"`
	MaxRoutines   int    `json:"max_routines"`

	// Catalog backend
	Catalog                  string  `json:"catalog"`
	CatalogBaseURL           string  `json:"catalog_base_url"`
	CatalogLocale            string  `json:"catalog_locale"`
	CatalogPageSize          int     `json:"catalog_page_size"`
	CatalogTimeoutSeconds    int     `json:"catalog_timeout_seconds"`
	CatalogMaxConcurrent     int     `json:"catalog_max_concurrent"`
	CatalogRequestsPerSecond float64 `json:"catalog_requests_per_second"`
	FixturePath              string  `json:"fixture_path"`

	// Presentation
	PosterProfile string       `json:"poster_profile"`
	ListLimit     int          `json:"list_limit"`
	WatchLayout   LayoutConfig `json:"watch_layout"`
	ResultsLayout LayoutConfig `json:"results_layout"`

	// Delayed search and callback buttons
	MaxWaitSeconds   int `json:"max_wait_seconds"`
	CallbackTTLHours int `json:"callback_ttl_hours"`

	// Observability
	LogLevel    string `json:"log_level"`
	LogFormat   string `json:"log_format"`
	MetricsAddr string `json:"metrics_addr"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		WebhookPath:              "/webhook",
		ListenAddr:               ":8080",
		MaxRoutines:              50,
		Catalog:                  "justwatch",
		CatalogBaseURL:           "https://apis.justwatch.com",
		CatalogLocale:            "ru_RU",
		CatalogPageSize:          30,
		CatalogTimeoutSeconds:    15,
		CatalogMaxConcurrent:     8,
		CatalogRequestsPerSecond: 5,
		PosterProfile:            "s592",
		ListLimit:                10,
		WatchLayout:              LayoutConfig{SymbolsLimit: keyboard.WatchLayout.SymbolsLimit, CountLimit: keyboard.WatchLayout.CountLimit},
		ResultsLayout:            LayoutConfig{SymbolsLimit: keyboard.ResultsLayout.SymbolsLimit, CountLimit: keyboard.ResultsLayout.CountLimit},
		MaxWaitSeconds:           600,
		CallbackTTLHours:         24,
		LogLevel:                 "info",
		LogFormat:                "text",
	}
}

// ConfigPath returns the path to the default config file
func ConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cinemabot", "config.json"), nil
}

// Load reads the configuration from path, or from ConfigPath when path is
// empty, and applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg Config
		if err := json.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		fileCfg.fillDefaults(cfg)
		cfg = &fileCfg
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

// fillDefaults copies defaults into every zero-valued field
func (cfg *Config) fillDefaults(defaults *Config) {
	setString := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	setInt := func(dst *int, def int) {
		if *dst == 0 {
			*dst = def
		}
	}

	setString(&cfg.WebhookPath, defaults.WebhookPath)
	setString(&cfg.ListenAddr, defaults.ListenAddr)
	setInt(&cfg.MaxRoutines, defaults.MaxRoutines)
	setString(&cfg.Catalog, defaults.Catalog)
	setString(&cfg.CatalogBaseURL, defaults.CatalogBaseURL)
	setString(&cfg.CatalogLocale, defaults.CatalogLocale)
	setInt(&cfg.CatalogPageSize, defaults.CatalogPageSize)
	setInt(&cfg.CatalogTimeoutSeconds, defaults.CatalogTimeoutSeconds)
	setInt(&cfg.CatalogMaxConcurrent, defaults.CatalogMaxConcurrent)
	if cfg.CatalogRequestsPerSecond == 0 {
		cfg.CatalogRequestsPerSecond = defaults.CatalogRequestsPerSecond
	}
	setString(&cfg.PosterProfile, defaults.PosterProfile)
	setInt(&cfg.ListLimit, defaults.ListLimit)
	setInt(&cfg.WatchLayout.SymbolsLimit, defaults.WatchLayout.SymbolsLimit)
	setInt(&cfg.WatchLayout.CountLimit, defaults.WatchLayout.CountLimit)
	setInt(&cfg.ResultsLayout.SymbolsLimit, defaults.ResultsLayout.SymbolsLimit)
	setInt(&cfg.ResultsLayout.CountLimit, defaults.ResultsLayout.CountLimit)
	setInt(&cfg.MaxWaitSeconds, defaults.MaxWaitSeconds)
	setInt(&cfg.CallbackTTLHours, defaults.CallbackTTLHours)
	setString(&cfg.LogLevel, defaults.LogLevel)
	setString(&cfg.LogFormat, defaults.LogFormat)
}

// applyEnv overrides settings from the environment. Blank variables are
// ignored, as are numbers that do not parse.
func (cfg *Config) applyEnv(getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*dst = n
			}
		}
	}

	str("API_TOKEN", &cfg.APIToken)
	str("WEBHOOK_HOST", &cfg.WebhookHost)
	str("WEBHOOK_PATH", &cfg.WebhookPath)
	str("WEBHOOK_SECRET", &cfg.WebhookSecret)
	str("LISTEN_ADDR", &cfg.ListenAddr)
	str("CATALOG", &cfg.Catalog)
	str("CATALOG_BASE_URL", &cfg.CatalogBaseURL)
	str("CATALOG_LOCALE", &cfg.CatalogLocale)
	num("CATALOG_TIMEOUT_SECONDS", &cfg.CatalogTimeoutSeconds)
	str("FIXTURE_PATH", &cfg.FixturePath)
	str("METRICS_ADDR", &cfg.MetricsAddr)
	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv("LOG_FORMAT")); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
}

// Validate reports settings the bot cannot run with
func (cfg *Config) Validate() error {
	if cfg.Catalog == "" {
		return fmt.Errorf("catalog must be set")
	}
	if cfg.Catalog == "fixture" && cfg.FixturePath == "" {
		return fmt.Errorf("fixture catalog requires fixture_path")
	}
	if err := cfg.WatchLayout.Layout().Validate(); err != nil {
		return fmt.Errorf("watch_layout: %w", err)
	}
	if err := cfg.ResultsLayout.Layout().Validate(); err != nil {
		return fmt.Errorf("results_layout: %w", err)
	}
	if cfg.ListLimit < 1 {
		return fmt.Errorf("list_limit must be at least 1, got %d", cfg.ListLimit)
	}
	if cfg.WebhookHost != "" && !strings.HasPrefix(cfg.WebhookPath, "/") {
		return fmt.Errorf("webhook_path must start with /, got %q", cfg.WebhookPath)
	}
	return nil
}

// CatalogTimeout returns the per-call catalog timeout
func (cfg *Config) CatalogTimeout() time.Duration {
	return time.Duration(cfg.CatalogTimeoutSeconds) * time.Second
}

// MaxWait returns the longest accepted delay for /wait
func (cfg *Config) MaxWait() time.Duration {
	return time.Duration(cfg.MaxWaitSeconds) * time.Second
}

// CallbackTTL returns how long long-query buttons stay valid
func (cfg *Config) CallbackTTL() time.Duration {
	return time.Duration(cfg.CallbackTTLHours) * time.Hour
}

// CatalogSettings returns the registry settings for the configured catalog
func (cfg *Config) CatalogSettings() map[string]interface{} {
	return map[string]interface{}{
		"base_url":            cfg.CatalogBaseURL,
		"locale":              cfg.CatalogLocale,
		"page_size":           cfg.CatalogPageSize,
		"timeout":             cfg.CatalogTimeout(),
		"max_concurrent":      cfg.CatalogMaxConcurrent,
		"requests_per_second": cfg.CatalogRequestsPerSecond,
		"path":                cfg.FixturePath,
	}
}

// Save writes the configuration to path, or to ConfigPath when path is empty
func (cfg *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return err
		}
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold the bot token
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
