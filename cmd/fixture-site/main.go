// Fixture Site
//
// This server stands in for the Discover Ireland homepage so the browser
// suite can run offline: a Cookiebot-style consent dialog, the hero search
// box with live suggestions, and destination pages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/thesyncim/homepage-e2e/cmd/fixture-site/server"
)

func main() {
	app := &cli.App{
		Name:  "fixture-site",
		Usage: "serve a local stand-in of the Discover Ireland homepage",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "listen address"},
			&cli.DurationFlag{Name: "consent-delay", Value: 300 * time.Millisecond, Usage: "delay before the consent dialog appears"},
			&cli.BoolFlag{Name: "no-consent", Usage: "never render the consent dialog"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "zerolog level (debug, info, warn, error)"},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	level, err := zerolog.ParseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cfg := server.DefaultConfig()
	cfg.Addr = c.String("addr")
	cfg.ConsentDelay = c.Duration("consent-delay")
	cfg.NoConsent = c.Bool("no-consent")
	cfg.Logger = &log

	srv, err := server.NewServer(cfg)
	if err != nil {
		return err
	}

	addr, err := srv.Start()
	if err != nil {
		return err
	}

	fmt.Printf(`
Fixture Site
============
1. Open %s/ in a browser
2. Accept the cookie dialog
3. Type "Mayo" into the hero search box
4. Run: homepage-e2e run --base-url %s

`, srv.URL(), srv.URL())
	log.Info().Str("addr", addr).Msg("listening")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
