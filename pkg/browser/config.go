package browser

import (
	"time"

	"github.com/pkg/errors"
)

// Backend names a browser-automation runtime.
type Backend string

const (
	BackendRod        Backend = "rod"
	BackendPlaywright Backend = "playwright"
)

// Config configures a Session.
type Config struct {
	BaseURL      string        // Application root, e.g. "https://www.discoverireland.ie"
	Backend      Backend       // Automation runtime (default: rod)
	Headless     bool          // Run in headless mode (default: true)
	Timeout      time.Duration // Default lookup/assertion timeout (default: 4s)
	PollInterval time.Duration // Delay between lookups while waiting (default: 50ms)
}

// DefaultConfig returns sensible defaults for end-to-end runs.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://www.discoverireland.ie",
		Backend:      BackendRod,
		Headless:     true,
		Timeout:      4 * time.Second,
		PollInterval: 50 * time.Millisecond,
	}
}

// Open starts a browser with the configured backend and returns its Session.
func Open(cfg Config) (Session, error) {
	switch cfg.Backend {
	case BackendRod, "":
		return NewRodSession(cfg)
	case BackendPlaywright:
		return NewPlaywrightSession(cfg)
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", cfg.Backend)
	}
}
