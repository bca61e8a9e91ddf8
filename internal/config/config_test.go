package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/homepage-e2e/pkg/browser"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://www.discoverireland.ie", cfg.BaseURL)
	assert.Equal(t, "rod", cfg.Backend)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 4*time.Second, cfg.Timeout)
	assert.Equal(t, 10*time.Second, cfg.ConsentTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval)
	require.NoError(t, cfg.Validate())
}

func TestOverlay(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Overlay([]byte(`
base_url: http://127.0.0.1:8080
backend: playwright
timeout: 2s
log_level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.BaseURL)
	assert.Equal(t, "playwright", cfg.Backend)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched keys keep their defaults
	assert.True(t, cfg.Headless)
	assert.Equal(t, 10*time.Second, cfg.ConsentTimeout)
}

func TestOverlay_Empty(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Overlay(nil))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestOverlay_UnknownKey(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Overlay([]byte("base_uri: http://example.test\n"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(env(map[string]string{
		"HOMEPAGE_E2E_BASE_URL":  "http://localhost:9000",
		"HOMEPAGE_E2E_BACKEND":   "playwright",
		"HOMEPAGE_E2E_HEADLESS":  "false",
		"HOMEPAGE_E2E_TIMEOUT":   "750ms",
		"HOMEPAGE_E2E_LOG_LEVEL": "warn",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, "playwright", cfg.Backend)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestApplyEnv_BadValues(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{name: "headless", vars: map[string]string{"HOMEPAGE_E2E_HEADLESS": "sometimes"}},
		{name: "timeout", vars: map[string]string{"HOMEPAGE_E2E_TIMEOUT": "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			require.Error(t, cfg.ApplyEnv(env(tt.vars)))
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "e2e.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://file.test\ntimeout: 3s\n"), 0o644))
	t.Setenv("HOMEPAGE_E2E_TIMEOUT", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://file.test", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout, "environment overrides the file")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Config{
		BaseURL:        "ftp://example.test",
		Backend:        "selenium",
		Timeout:        0,
		ConsentTimeout: -time.Second,
		PollInterval:   0,
		LogLevel:       "verbose",
	}

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	for _, want := range []string{"base_url", "backend", "timeout must", "consent_timeout", "poll_interval", "log_level"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_PollIntervalExceedsTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PollInterval = 10 * time.Second

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "poll_interval must not exceed timeout")
}

func TestBrowser(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://127.0.0.1:8080/"
	cfg.Backend = "playwright"
	cfg.Headless = false

	got := cfg.Browser()
	assert.Equal(t, browser.Config{
		BaseURL:      "http://127.0.0.1:8080",
		Backend:      browser.BackendPlaywright,
		Headless:     false,
		Timeout:      4 * time.Second,
		PollInterval: 50 * time.Millisecond,
	}, got)
	assert.Len(t, cfg.PageOptions(), 1)
}
