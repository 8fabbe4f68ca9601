package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/mdquery/internal/parser"
)

const (
	defaultPort            = "8090"
	defaultMaxUploadBytes  = 10 << 20 // 10MB
	defaultCacheTTL        = 30 * time.Minute
	defaultCacheMaxEntries = 256
	defaultMaxSelectors    = 256
	defaultMaxRangeWidth   = 10000
	defaultStatsWindow     = time.Hour
)

type Config struct {
	Port string `yaml:"port"`

	// Auth; empty disables bearer auth.
	APIKey string `yaml:"api_key"`

	// Markdown backend: goldmark or treesitter.
	Parser string `yaml:"parser"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Parsed document cache
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	CacheMaxEntries int           `yaml:"cache_max_entries"`

	// Query limits for untrusted input
	MaxSelectors  int `yaml:"max_selectors"`
	MaxRangeWidth int `yaml:"max_range_width"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	StatsWindow time.Duration `yaml:"stats_window"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:                 defaultPort,
		Parser:               parser.BackendGoldmark,
		MaxUploadBytes:       defaultMaxUploadBytes,
		CacheTTL:             defaultCacheTTL,
		CacheMaxEntries:      defaultCacheMaxEntries,
		MaxSelectors:         defaultMaxSelectors,
		MaxRangeWidth:        defaultMaxRangeWidth,
		PDFFallbackPdftotext: true,
		LogLevel:             "info",
		LogFormat:            "console",
		StatsWindow:          defaultStatsWindow,
	}
}

// Load reads configuration from environment variables over the defaults.
func Load() Config {
	cfg := Default()
	cfg.applyEnv()
	cfg.clamp()
	return cfg
}

// LoadFile applies a YAML file over the defaults, then environment
// overrides. An empty path behaves like Load.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.clamp()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = envOr("PORT", c.Port)
	c.APIKey = envOr("MDQUERY_API_KEY", c.APIKey)
	c.Parser = envOr("MDQUERY_PARSER", c.Parser)

	c.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)

	c.CacheTTL = envDuration("CACHE_TTL", c.CacheTTL)
	c.CacheMaxEntries = envInt("CACHE_MAX_ENTRIES", c.CacheMaxEntries)

	c.MaxSelectors = envInt("MAX_SELECTORS", c.MaxSelectors)
	c.MaxRangeWidth = envInt("MAX_RANGE_WIDTH", c.MaxRangeWidth)

	c.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", c.PDFFallbackPdftotext)

	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOr("LOG_FORMAT", c.LogFormat)

	c.StatsWindow = envDuration("STATS_WINDOW", c.StatsWindow)
}

func (c *Config) clamp() {
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.Parser == "" {
		c.Parser = parser.BackendGoldmark
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = defaultMaxUploadBytes
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.CacheMaxEntries <= 0 {
		c.CacheMaxEntries = defaultCacheMaxEntries
	}
	if c.MaxSelectors < 0 {
		c.MaxSelectors = defaultMaxSelectors
	}
	if c.MaxRangeWidth < 0 {
		c.MaxRangeWidth = defaultMaxRangeWidth
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = defaultStatsWindow
	}
}

func (c Config) Validate() error {
	if !parser.ValidBackend(c.Parser) {
		return fmt.Errorf("unknown parser backend %q (want %s or %s)", c.Parser, parser.BackendGoldmark, parser.BackendTreeSitter)
	}
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (want console or json)", c.LogFormat)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
