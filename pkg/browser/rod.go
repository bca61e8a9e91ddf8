package browser

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pkg/errors"
)

// RodSession is a Session backed by Rod.
type RodSession struct {
	cfg     Config
	browser *rod.Browser
	page    *rod.Page

	mu        sync.Mutex
	navigated bool
	router    *rod.HijackRouter
	rules     []*rodInterception
}

// NewRodSession launches a Chrome (downloaded by Rod if not present) and
// opens a blank page. The browser is configured with:
//   - No sandbox (for container compatibility)
//   - No GPU
func NewRodSession(cfg Config) (*RodSession, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, errors.Wrap(err, "failed to launch Chrome")
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to Chrome")
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		return nil, errors.Wrap(err, "failed to open page")
	}

	return &RodSession{
		cfg:     cfg,
		browser: browser,
		page:    page,
	}, nil
}

// Config implements Session.
func (s *RodSession) Config() Config {
	return s.cfg
}

// Navigate implements Session.
func (s *RodSession) Navigate(ctx context.Context, path string) error {
	target, err := ResolveURL(s.cfg.BaseURL, path)
	if err != nil {
		return err
	}

	p := s.page.Context(ctx).Timeout(s.cfg.Timeout)
	defer p.CancelTimeout()

	if err := p.Navigate(target); err != nil {
		return errors.Wrapf(err, "failed to navigate to %s", target)
	}
	if err := p.WaitLoad(); err != nil {
		return errors.Wrapf(err, "failed waiting for load of %s", target)
	}

	s.mu.Lock()
	s.navigated = true
	s.mu.Unlock()
	return nil
}

// Find implements Session.
func (s *RodSession) Find(ctx context.Context, loc Locator) ([]Element, error) {
	s.mu.Lock()
	navigated := s.navigated
	s.mu.Unlock()
	if !navigated {
		return nil, ErrNotNavigated
	}

	p := s.page.Context(ctx)
	var (
		found rod.Elements
		err   error
	)
	if loc.Strategy == ByXPath {
		found, err = p.ElementsX(loc.Selector())
	} else {
		found, err = p.Elements(loc.Selector())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", loc)
	}

	out := make([]Element, len(found))
	for i, el := range found {
		out[i] = &rodElement{page: s.page, el: el}
	}
	return out, nil
}

// URL implements Session.
func (s *RodSession) URL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", errors.Wrap(err, "failed to read page info")
	}
	return info.URL, nil
}

// Intercept implements Session. All rules of a session share one hijack
// router with a catch-all handler, started with the first rule and stopped
// by Close. When several active rules match a request the most recently
// installed one answers.
func (s *RodSession) Intercept(ctx context.Context, route Route) (Interception, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ic := &rodInterception{route: route.withDefaults()}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.router == nil {
		router := s.page.HijackRequests()
		if err := router.Add("*", "", s.hijack); err != nil {
			return nil, errors.Wrapf(err, "failed to add hijack for %s", route.Pattern)
		}
		s.router = router
		go router.Run()
	}
	s.rules = append(s.rules, ic)
	return ic, nil
}

// answering returns the newest active rule for the request, or nil.
func (s *RodSession) answering(method, rawURL string) *rodInterception {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.rules) - 1; i >= 0; i-- {
		ic := s.rules[i]
		if ic.stopped.Load() {
			continue
		}
		if method == http.MethodOptions && ic.route.Method != "" && MatchURL(ic.route.Pattern, rawURL) {
			return ic
		}
		if ic.route.Matches(method, rawURL) {
			return ic
		}
	}
	return nil
}

func (s *RodSession) hijack(h *rod.Hijack) {
	method := h.Request.Method()
	ic := s.answering(method, h.Request.URL().String())
	route := ic.routeOrZero()

	switch {
	case ic == nil:
		h.ContinueRequest(&proto.FetchContinueRequest{})
	case method == http.MethodOptions && route.Method != "" && route.Method != http.MethodOptions:
		// CORS preflight for a cross-origin mocked endpoint.
		h.Response.Payload().ResponseCode = http.StatusNoContent
		h.Response.SetHeader(
			"Access-Control-Allow-Origin", "*",
			"Access-Control-Allow-Methods", route.Method,
			"Access-Control-Allow-Headers", "*",
		)
	default:
		ic.hits.Add(1)
		h.OnError = ic.record
		h.Response.Payload().ResponseCode = route.Status
		h.Response.SetHeader(
			"Content-Type", route.ContentType,
			"Access-Control-Allow-Origin", "*",
		)
		h.Response.SetBody(route.Body)
	}
}

// Close cleans up browser resources.
// Always call this (via defer) to prevent orphaned Chrome processes.
func (s *RodSession) Close() error {
	s.mu.Lock()
	router := s.router
	s.router = nil
	s.rules = nil
	s.mu.Unlock()

	if router != nil {
		_ = router.Stop()
	}
	if s.browser != nil {
		return s.browser.Close()
	}
	return nil
}

type rodInterception struct {
	firstError
	route   Route
	hits    atomic.Int64
	stopped atomic.Bool
}

func (i *rodInterception) routeOrZero() Route {
	if i == nil {
		return Route{}
	}
	return i.route
}

func (i *rodInterception) Hits() int {
	return int(i.hits.Load())
}

func (i *rodInterception) Stop() error {
	i.stopped.Store(true)
	return nil
}

type rodElement struct {
	page *rod.Page
	el   *rod.Element
}

func (e *rodElement) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) Visible(ctx context.Context) (bool, error) {
	return e.el.Context(ctx).Visible()
}

func (e *rodElement) Enabled(ctx context.Context) (bool, error) {
	disabled, err := e.el.Context(ctx).Property("disabled")
	if err != nil {
		return false, err
	}
	return !disabled.Bool(), nil
}

func (e *rodElement) Focus(ctx context.Context) error {
	return e.el.Context(ctx).Focus()
}

func (e *rodElement) TypeText(ctx context.Context, text string) error {
	if err := e.Focus(ctx); err != nil {
		return err
	}
	el := e.el.Context(ctx)
	for _, r := range text {
		var err error
		if r >= ' ' && r <= '~' {
			// keydown, keypress, input, keyup
			err = el.Type(input.Key(r))
		} else {
			// No US-layout key; insert the character as an IME would.
			err = e.page.Context(ctx).InsertText(string(r))
		}
		if err != nil {
			return errors.Wrapf(err, "failed to type %q", r)
		}
	}
	return nil
}
