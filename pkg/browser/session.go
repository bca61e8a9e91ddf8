// Package browser is the narrow interface between page objects and the
// browser-automation runtime. A Session owns one page of one browser; page
// objects receive it explicitly instead of reaching for an ambient global.
//
// Two backends drive Chromium over the DevTools protocol:
//   - rod (default): github.com/go-rod/rod
//   - playwright: github.com/playwright-community/playwright-go
package browser

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/tidwall/match"
)

// Session is one browser page plus its network-interception registry.
// Interception rules live and die with the session, so every test case that
// needs a mock installs it on its own session.
type Session interface {
	// Navigate loads path relative to Config.BaseURL and returns once the
	// backend's load event fired. Async page resources may still be pending.
	Navigate(ctx context.Context, path string) error

	// Find returns the elements currently matching loc, in DOM order.
	// It does not wait; zero matches is not an error.
	Find(ctx context.Context, loc Locator) ([]Element, error)

	// URL returns the current location of the page.
	URL(ctx context.Context) (string, error)

	// Intercept installs a rule answering matching requests with route's
	// canned response. Requests issued before installation are not affected.
	// When several active rules match, the most recently installed answers.
	Intercept(ctx context.Context, route Route) (Interception, error)

	// Config returns the configuration the session was opened with.
	Config() Config

	// Close releases the page and the browser.
	Close() error
}

// Element is a handle on a single DOM node.
type Element interface {
	Click(ctx context.Context) error
	Visible(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
	Focus(ctx context.Context) error

	// TypeText sends text one character at a time, so input-driven
	// reactions (autocomplete requests) fire per keystroke.
	TypeText(ctx context.Context, text string) error
}

// Route describes an interception rule and its canned response.
type Route struct {
	Method      string // HTTP method to match; empty matches any
	Pattern     string // URL glob, '*' matches any run of characters
	Status      int    // Response status (default: 200)
	ContentType string // Response content type (default: application/json)
	Body        []byte
}

// Matches reports whether a request is answered by this route.
func (r Route) Matches(method, rawURL string) bool {
	if r.Method != "" && !strings.EqualFold(r.Method, method) {
		return false
	}
	return MatchURL(r.Pattern, rawURL)
}

func (r Route) withDefaults() Route {
	if r.Status == 0 {
		r.Status = 200
	}
	if r.ContentType == "" {
		r.ContentType = "application/json"
	}
	return r
}

// Interception is a handle on an installed Route.
type Interception interface {
	// Hits reports how many requests the rule has answered.
	Hits() int
	// Err returns the first error the backend reported while answering
	// a request for this rule, or nil.
	Err() error
	// Stop uninstalls the rule; later requests fall through to older
	// rules or the network.
	Stop() error
}

// firstError keeps the first error reported while answering requests.
type firstError struct {
	mu  sync.Mutex
	err error
}

func (f *firstError) record(err error) {
	if err == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = err
	}
}

// Err implements Interception.
func (f *firstError) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// MatchURL matches rawURL against a glob where '*' matches any run of
// characters (including '/') and '?' matches exactly one. This is the
// DevTools Fetch.RequestPattern syntax.
func MatchURL(pattern, rawURL string) bool {
	return match.Match(rawURL, pattern)
}

// ResolveURL joins path onto base. Absolute paths replace base's path.
func ResolveURL(base, path string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrapf(err, "parse base URL %q", base)
	}
	if !b.IsAbs() {
		return "", errors.Errorf("base URL %q is not absolute", base)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", errors.Wrapf(err, "parse path %q", path)
	}
	return b.ResolveReference(ref).String(), nil
}
