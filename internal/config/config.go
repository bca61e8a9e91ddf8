// Package config loads runner settings from defaults, an optional YAML
// file and HOMEPAGE_E2E_* environment variables, in that order.
package config

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/thesyncim/homepage-e2e/pkg/browser"
	"github.com/thesyncim/homepage-e2e/pkg/pages"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HOMEPAGE_E2E_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds runner settings.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	Backend        string        `yaml:"backend"`
	Headless       bool          `yaml:"headless"`
	Timeout        time.Duration `yaml:"timeout"`
	ConsentTimeout time.Duration `yaml:"consent_timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	FixturesDir    string        `yaml:"fixtures_dir"` // empty: bundled fixtures
	LogLevel       string        `yaml:"log_level"`
}

// DefaultConfig returns the settings used against the production site.
func DefaultConfig() Config {
	b := browser.DefaultConfig()
	return Config{
		BaseURL:        b.BaseURL,
		Backend:        string(b.Backend),
		Headless:       b.Headless,
		Timeout:        b.Timeout,
		ConsentTimeout: pages.ConsentTimeout,
		PollInterval:   b.PollInterval,
		LogLevel:       "info",
	}
}

// Load returns defaults overlaid with the YAML file at path (skipped when
// path is empty) and then the environment.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "read config")
		}
		if err := cfg.Overlay(data); err != nil {
			return cfg, errors.Wrapf(err, "parse %s", path)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Overlay decodes YAML data onto c. Keys absent from data keep their
// current values; unknown keys are an error.
func (c *Config) Overlay(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// ApplyEnv overlays HOMEPAGE_E2E_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "BASE_URL"); ok {
		c.BaseURL = v
	}
	if v, ok := lookup(EnvPrefix + "BACKEND"); ok {
		c.Backend = v
	}
	if v, ok := lookup(EnvPrefix + "HEADLESS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "%sHEADLESS", EnvPrefix)
		}
		c.Headless = b
	}
	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "%sTIMEOUT", EnvPrefix)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	return nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	if u, err := url.Parse(c.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		problems = append(problems, "base_url must be an absolute http(s) URL, got "+strconv.Quote(c.BaseURL))
	}
	switch browser.Backend(c.Backend) {
	case browser.BackendRod, browser.BackendPlaywright:
	default:
		problems = append(problems, "backend must be rod or playwright, got "+strconv.Quote(c.Backend))
	}
	if c.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if c.ConsentTimeout <= 0 {
		problems = append(problems, "consent_timeout must be positive")
	}
	if c.PollInterval <= 0 {
		problems = append(problems, "poll_interval must be positive")
	} else if c.Timeout > 0 && c.PollInterval > c.Timeout {
		problems = append(problems, "poll_interval must not exceed timeout")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, "log_level "+strconv.Quote(c.LogLevel)+" is not a zerolog level")
	}

	if len(problems) > 0 {
		return errors.Wrap(ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Browser returns the session configuration.
func (c Config) Browser() browser.Config {
	return browser.Config{
		BaseURL:      strings.TrimRight(c.BaseURL, "/"),
		Backend:      browser.Backend(c.Backend),
		Headless:     c.Headless,
		Timeout:      c.Timeout,
		PollInterval: c.PollInterval,
	}
}

// PageOptions returns page-object options not derivable from Browser().
func (c Config) PageOptions() []pages.Option {
	return []pages.Option{pages.WithConsentTimeout(c.ConsentTimeout)}
}

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
