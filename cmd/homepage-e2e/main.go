// Homepage E2E runner
//
// Runs the homepage scenarios (cookie consent, mocked destination search)
// against a base URL in a real browser and reports one line per case.
//
// Usage:
//
//	go run ./cmd/homepage-e2e run
//	go run ./cmd/homepage-e2e run --base-url http://127.0.0.1:8080 --backend playwright
//	go run ./cmd/homepage-e2e soak --duration 1h
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/thesyncim/homepage-e2e/fixtures"
	"github.com/thesyncim/homepage-e2e/internal/config"
	"github.com/thesyncim/homepage-e2e/pkg/browser"
	"github.com/thesyncim/homepage-e2e/pkg/scenario"
)

// errCasesFailed makes the process exit non-zero without a second report.
var errCasesFailed = errors.New("one or more cases failed")

func main() {
	app := &cli.App{
		Name:  "homepage-e2e",
		Usage: "browser checks for the Discover Ireland homepage",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run every homepage scenario once",
				Flags:  commonFlags(),
				Action: runCommand,
			},
			{
				Name:   "soak",
				Usage:  "repeat the scenarios to surface flaky cases",
				Flags:  append(commonFlags(), soakFlags()...),
				Action: soakCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		if !errors.Is(err, errCasesFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "YAML config file"},
		&cli.StringFlag{Name: "base-url", Usage: "site root (default https://www.discoverireland.ie)"},
		&cli.StringFlag{Name: "backend", Usage: "browser runtime: rod or playwright"},
		&cli.BoolFlag{Name: "headless", Value: true, Usage: "run the browser without a window"},
		&cli.DurationFlag{Name: "timeout", Usage: "lookup and assertion timeout"},
		&cli.StringFlag{Name: "fixtures-dir", Usage: "load fixtures from this directory instead of the bundled set"},
		&cli.StringFlag{Name: "log-level", Usage: "zerolog level"},
	}
}

// loadConfig layers defaults, the config file, the environment and finally
// flags that were set explicitly.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("headless") {
		cfg.Headless = c.Bool("headless")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("fixtures-dir") {
		cfg.FixturesDir = c.String("fixtures-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(cfg.Level()).
		With().Timestamp().Logger()
}

// newRunner builds a Runner that opens a real browser per case.
func newRunner(cfg config.Config, log *zerolog.Logger) *scenario.Runner {
	bcfg := cfg.Browser()
	r := &scenario.Runner{
		Open: func(context.Context) (browser.Session, error) {
			return browser.Open(bcfg)
		},
		PageOptions: cfg.PageOptions(),
		Log:         log,
	}
	if cfg.FixturesDir != "" {
		r.Fixtures = fixtures.Dir(cfg.FixturesDir)
	}
	return r
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	log.Info().Str("base_url", cfg.BaseURL).Str("backend", cfg.Backend).Msg("starting homepage run")

	ctx, cancel := signalContext()
	defer cancel()

	results := newRunner(cfg, &log).Run(ctx, scenario.Homepage()...)
	if !report(os.Stdout, results) {
		return errCasesFailed
	}
	return nil
}
