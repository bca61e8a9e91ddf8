package browser

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
)

// PlaywrightSession is a Session backed by Playwright's Chromium.
// Playwright calls are not context-aware; ctx is checked before each call and
// the page default timeout bounds the call itself.
type PlaywrightSession struct {
	cfg     Config
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page

	mu        sync.Mutex
	navigated bool
}

// NewPlaywrightSession starts the Playwright driver, launches Chromium and
// opens a page. Browsers must already be installed
// (go run github.com/playwright-community/playwright-go/cmd/playwright install chromium).
func NewPlaywrightSession(cfg Config) (*PlaywrightSession, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, errors.Wrap(err, "failed to start playwright")
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, errors.Wrap(err, "failed to launch chromium")
	}

	page, err := browser.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, errors.Wrap(err, "failed to open page")
	}
	timeoutMS := float64(cfg.Timeout.Milliseconds())
	page.SetDefaultTimeout(timeoutMS)
	page.SetDefaultNavigationTimeout(timeoutMS)

	return &PlaywrightSession{
		cfg:     cfg,
		pw:      pw,
		browser: browser,
		page:    page,
	}, nil
}

// Config implements Session.
func (s *PlaywrightSession) Config() Config {
	return s.cfg
}

// Navigate implements Session.
func (s *PlaywrightSession) Navigate(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := ResolveURL(s.cfg.BaseURL, path)
	if err != nil {
		return err
	}

	_, err = s.page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to navigate to %s", target)
	}

	s.mu.Lock()
	s.navigated = true
	s.mu.Unlock()
	return nil
}

// Find implements Session.
func (s *PlaywrightSession) Find(ctx context.Context, loc Locator) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	navigated := s.navigated
	s.mu.Unlock()
	if !navigated {
		return nil, ErrNotNavigated
	}

	selector := loc.Selector()
	if loc.Strategy == ByXPath {
		selector = "xpath=" + selector
	}
	all := s.page.Locator(selector)
	n, err := all.Count()
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", loc)
	}

	out := make([]Element, n)
	for i := 0; i < n; i++ {
		out[i] = &pwElement{loc: all.Nth(i)}
	}
	return out, nil
}

// URL implements Session.
func (s *PlaywrightSession) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.page.URL(), nil
}

// Intercept implements Session. Playwright consults the newest route first;
// stopped and non-matching rules fall back to older routes.
func (s *PlaywrightSession) Intercept(ctx context.Context, route Route) (Interception, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	route = route.withDefaults()

	ic := &pwInterception{}
	matcher := func(u string) bool { return MatchURL(route.Pattern, u) }
	err := s.page.Route(matcher, func(r playwright.Route) {
		req := r.Request()
		method := req.Method()
		preflight := method == http.MethodOptions && route.Method != "" && route.Method != http.MethodOptions
		switch {
		case ic.stopped.Load(), !preflight && !route.Matches(method, req.URL()):
			// Let older routes or the network answer.
			ic.record(r.Fallback())
		case preflight:
			ic.record(r.Fulfill(playwright.RouteFulfillOptions{
				Status: playwright.Int(http.StatusNoContent),
				Headers: map[string]string{
					"Access-Control-Allow-Origin":  "*",
					"Access-Control-Allow-Methods": route.Method,
					"Access-Control-Allow-Headers": "*",
				},
			}))
		default:
			ic.hits.Add(1)
			ic.record(r.Fulfill(playwright.RouteFulfillOptions{
				Status:      playwright.Int(route.Status),
				ContentType: playwright.String(route.ContentType),
				Headers:     map[string]string{"Access-Control-Allow-Origin": "*"},
				Body:        route.Body,
			}))
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to route %s", route.Pattern)
	}
	return ic, nil
}

// Close implements Session.
func (s *PlaywrightSession) Close() error {
	var firstErr error
	if s.browser != nil {
		firstErr = s.browser.Close()
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type pwInterception struct {
	firstError
	hits    atomic.Int64
	stopped atomic.Bool
}

func (i *pwInterception) Hits() int {
	return int(i.hits.Load())
}

func (i *pwInterception) Stop() error {
	i.stopped.Store(true)
	return nil
}

type pwElement struct {
	loc playwright.Locator
}

func (e *pwElement) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.loc.Click()
}

func (e *pwElement) Visible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.loc.IsVisible()
}

func (e *pwElement) Enabled(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.loc.IsEnabled()
}

func (e *pwElement) Focus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.loc.Focus()
}

func (e *pwElement) TypeText(ctx context.Context, text string) error {
	if err := e.Focus(ctx); err != nil {
		return err
	}
	for _, r := range text {
		if err := ctx.Err(); err != nil {
			return err
		}
		// One key press per character: keydown, keypress, input, keyup.
		if err := e.loc.PressSequentially(string(r)); err != nil {
			return errors.Wrapf(err, "failed to type %q", r)
		}
	}
	return nil
}
