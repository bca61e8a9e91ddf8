// Package pages holds page objects for the Discover Ireland homepage. Each
// page object owns the selectors for one region of the page and exposes the
// interactions a test performs there, so tests never touch the DOM directly.
//
// Page objects receive their browser.Session explicitly. Every lookup and
// assertion polls through pkg/wait with a bounded timeout; a failure is
// returned as one of the browser package's sentinel errors and is terminal
// for the running case.
package pages

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/thesyncim/homepage-e2e/pkg/browser"
	"github.com/thesyncim/homepage-e2e/pkg/wait"
)

// ConsentTimeout bounds the wait for the third-party consent dialog, which
// renders noticeably later than the page itself.
const ConsentTimeout = 10 * time.Second

// Option configures a page object.
type Option func(*options)

type options struct {
	timeout        time.Duration
	consentTimeout time.Duration
	interval       time.Duration
	clock          wait.Clock
	log            zerolog.Logger
}

// WithTimeout overrides the lookup/assertion timeout.
// Default: the session's Config.Timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithConsentTimeout overrides the wait for the consent dialog.
// Default: ConsentTimeout (10s).
func WithConsentTimeout(d time.Duration) Option {
	return func(o *options) { o.consentTimeout = d }
}

// WithPollInterval overrides the delay between lookups.
// Default: the session's Config.PollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// WithClock sets the poller's time source.
func WithClock(c wait.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger. Default: zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

func newOptions(cfg browser.Config, opts []Option) options {
	o := options{
		timeout:        cfg.Timeout,
		consentTimeout: ConsentTimeout,
		interval:       cfg.PollInterval,
		log:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// page is the part shared by all page objects.
type page struct {
	session browser.Session
	opts    options
	log     zerolog.Logger
}

func newPage(s browser.Session, name string, opts []Option) page {
	o := newOptions(s.Config(), opts)
	return page{
		session: s,
		opts:    o,
		log:     o.log.With().Str("page", name).Logger(),
	}
}

func (p page) poller(timeout time.Duration) wait.Poller {
	return wait.Poller{Timeout: timeout, Interval: p.opts.interval, Clock: p.opts.clock}
}

// find is Session.Find with the id contract enforced: an id locator
// matching more than one element is an error.
func (p page) find(ctx context.Context, loc browser.Locator) ([]browser.Element, error) {
	found, err := p.session.Find(ctx, loc)
	if err != nil {
		return nil, err
	}
	if loc.Strategy == browser.ByID && len(found) > 1 {
		p.log.Error().Str("locator", loc.String()).Int("matches", len(found)).Msg("duplicate id")
		return nil, errors.Wrapf(browser.ErrAssertionFailed, "%s matched %d elements, want exactly one", loc, len(found))
	}
	return found, nil
}

// first returns the first element matching loc and whether it is visible.
// A nil element means nothing matched.
func (p page) first(ctx context.Context, loc browser.Locator) (browser.Element, bool, error) {
	found, err := p.find(ctx, loc)
	if err != nil || len(found) == 0 {
		return nil, false, err
	}
	visible, err := found[0].Visible(ctx)
	if err != nil {
		return nil, false, err
	}
	return found[0], visible, nil
}
