package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "MDQUERY_API_KEY", "MDQUERY_PARSER", "MAX_UPLOAD_BYTES",
	"CACHE_TTL", "CACHE_MAX_ENTRIES", "MAX_SELECTORS", "MAX_RANGE_WIDTH",
	"PDF_FALLBACK_PDFTOTEXT", "LOG_LEVEL", "LOG_FORMAT", "STATS_WINDOW",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "goldmark", cfg.Parser)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.PDFFallbackPdftotext)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("MDQUERY_API_KEY", "secret")
	t.Setenv("MDQUERY_PARSER", "treesitter")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("MAX_RANGE_WIDTH", "50")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("LOG_FORMAT", "json")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "treesitter", cfg.Parser)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 50, cfg.MaxRangeWidth)
	assert.False(t, cfg.PDFFallbackPdftotext)
	assert.Equal(t, "json", cfg.LogFormat)
	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_UPLOAD_BYTES", "-1")
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("CACHE_MAX_ENTRIES", "0")
	t.Setenv("MAX_SELECTORS", "lots")

	cfg := Load()
	assert.Equal(t, int64(defaultMaxUploadBytes), cfg.MaxUploadBytes)
	assert.Equal(t, defaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, defaultCacheMaxEntries, cfg.CacheMaxEntries)
	assert.Equal(t, defaultMaxSelectors, cfg.MaxSelectors)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "mdquery.yaml")
	data := "port: \"7000\"\nparser: treesitter\ncache_ttl: 2m\nmax_selectors: 0\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "treesitter", cfg.Parser)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 0, cfg.MaxSelectors, "zero disables the limit")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, defaultMaxRangeWidth, cfg.MaxRangeWidth)

	t.Setenv("PORT", "7100")
	cfg, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7100", cfg.Port, "environment wins over the file")
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unclosed"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)

	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad parser", func(c *Config) { c.Parser = "regex" }, true},
		{"bad port", func(c *Config) { c.Port = "http" }, true},
		{"port out of range", func(c *Config) { c.Port = "70000" }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"json log format", func(c *Config) { c.LogFormat = "json" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
