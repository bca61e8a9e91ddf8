// Package browsertest provides an in-memory browser.Session for unit tests.
// The DOM is a flat list of Nodes in document order; requests issued by node
// handlers go through the session's interception rules before reaching the
// Live backend, mirroring how a real page's fetch calls are hijacked.
package browsertest

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/thesyncim/homepage-e2e/pkg/browser"
)

// Node is a fake DOM element.
type Node struct {
	ID       string
	Classes  []string
	Hidden   bool
	Disabled bool
	Href     string
	Value    string

	// AppearAfter keeps the node out of Find results for that many lookups,
	// simulating elements injected by late-running scripts.
	AppearAfter int

	OnClick func(s *Session, n *Node)
	OnInput func(s *Session, n *Node) // called after each typed character

	Clicks int
}

// HasClass reports whether the node carries class c.
func (n *Node) HasClass(c string) bool {
	for _, have := range n.Classes {
		if have == c {
			return true
		}
	}
	return false
}

// Request is a request issued by the fake page.
type Request struct {
	Method string
	URL    string
	Body   string
	Mocked bool
}

// LiveFunc answers requests that no interception rule matched.
type LiveFunc func(method, url string, body []byte) []byte

// Session is a fake browser.Session.
type Session struct {
	cfg browser.Config

	// OnNavigate builds the DOM for a freshly loaded URL.
	OnNavigate func(s *Session, url string)
	// Live answers unmatched requests. Nil answers with an empty body.
	Live LiveFunc

	mu        sync.Mutex
	nodes     []*Node
	url       string
	navigated bool
	closed    bool
	rules     []*rule
	requests  []Request
}

// NewSession returns an empty fake session.
func NewSession(cfg browser.Config) *Session {
	return &Session{cfg: cfg, url: "about:blank"}
}

// Config implements browser.Session.
func (s *Session) Config() browser.Config {
	return s.cfg
}

// Navigate implements browser.Session.
func (s *Session) Navigate(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := browser.ResolveURL(s.cfg.BaseURL, path)
	if err != nil {
		return err
	}
	s.load(target)
	return nil
}

// load replaces the document, as a full page load does.
func (s *Session) load(url string) {
	s.mu.Lock()
	s.nodes = nil
	s.url = url
	s.navigated = true
	hook := s.OnNavigate
	s.mu.Unlock()

	if hook != nil {
		hook(s, url)
	}
}

// Find implements browser.Session. Supported locators are ids, single class
// selectors and single id selectors.
func (s *Session) Find(ctx context.Context, loc browser.Locator) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.navigated {
		return nil, browser.ErrNotNavigated
	}

	match, err := matcher(loc)
	if err != nil {
		return nil, err
	}

	var out []browser.Element
	for _, n := range s.nodes {
		if !match(n) {
			continue
		}
		if n.AppearAfter > 0 {
			n.AppearAfter--
			continue
		}
		out = append(out, &element{s: s, n: n})
	}
	return out, nil
}

func matcher(loc browser.Locator) (func(*Node) bool, error) {
	switch {
	case loc.Strategy == browser.ByID:
		return func(n *Node) bool { return n.ID == loc.Value }, nil
	case loc.Strategy == browser.ByCSS && strings.HasPrefix(loc.Value, "#"):
		id := loc.Value[1:]
		return func(n *Node) bool { return n.ID == id }, nil
	case loc.Strategy == browser.ByCSS && strings.HasPrefix(loc.Value, "."):
		class := loc.Value[1:]
		return func(n *Node) bool { return n.HasClass(class) }, nil
	default:
		return nil, errors.Errorf("browsertest: unsupported locator %s", loc)
	}
}

// URL implements browser.Session.
func (s *Session) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, nil
}

// Intercept implements browser.Session.
func (s *Session) Intercept(ctx context.Context, route browser.Route) (browser.Interception, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := &rule{s: s, route: route}
	s.mu.Lock()
	s.rules = append(s.rules, r)
	s.mu.Unlock()
	return r, nil
}

// Close implements browser.Session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Append adds nodes to the end of the document.
func (s *Session) Append(nodes ...*Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, nodes...)
}

// RemoveClass drops every node carrying class c.
func (s *Session) RemoveClass(c string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.nodes[:0]
	for _, n := range s.nodes {
		if !n.HasClass(c) {
			kept = append(kept, n)
		}
	}
	s.nodes = kept
}

// Remove drops the node with the given id.
func (s *Session) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.nodes[:0]
	for _, n := range s.nodes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	s.nodes = kept
}

// SetHidden changes n's visibility.
func (s *Session) SetHidden(n *Node, hidden bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.Hidden = hidden
}

// Value returns the text typed into n so far.
func (s *Session) Value(n *Node) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return n.Value
}

// Node returns the node with the given id, or nil.
func (s *Session) Node(id string) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Fetch issues a request from the page. The newest active rule matching
// the request answers it; otherwise Live does.
func (s *Session) Fetch(method, url string, body []byte) []byte {
	s.mu.Lock()
	var hit *rule
	for i := len(s.rules) - 1; i >= 0; i-- {
		if r := s.rules[i]; !r.stopped && r.route.Matches(method, url) {
			hit = r
			break
		}
	}
	if hit != nil {
		hit.hits++
	}
	s.requests = append(s.requests, Request{Method: method, URL: url, Body: string(body), Mocked: hit != nil})
	live := s.Live
	s.mu.Unlock()

	if hit != nil {
		return hit.route.Body
	}
	if live == nil {
		return nil
	}
	return live(method, url, body)
}

// Requests returns every request issued so far.
func (s *Session) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

type rule struct {
	s       *Session
	route   browser.Route
	hits    int
	stopped bool
}

func (r *rule) Hits() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.hits
}

func (r *rule) Err() error {
	return nil
}

func (r *rule) Stop() error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.stopped = true
	return nil
}

type element struct {
	s *Session
	n *Node
}

// Element state is guarded by the session lock. Callbacks run without it
// since they re-enter the session.

func (e *element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.s.mu.Lock()
	if e.n.Hidden {
		e.s.mu.Unlock()
		return errors.Errorf("browsertest: node %q is not visible", e.n.ID)
	}
	e.n.Clicks++
	onClick := e.n.OnClick
	e.s.mu.Unlock()

	if onClick != nil {
		onClick(e.s, e.n)
	}
	return nil
}

func (e *element) Visible(ctx context.Context) (bool, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return !e.n.Hidden, ctx.Err()
}

func (e *element) Enabled(ctx context.Context) (bool, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return !e.n.Disabled, ctx.Err()
}

func (e *element) Focus(ctx context.Context) error {
	return ctx.Err()
}

func (e *element) TypeText(ctx context.Context, text string) error {
	for _, r := range text {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.s.mu.Lock()
		e.n.Value += string(r)
		onInput := e.n.OnInput
		e.s.mu.Unlock()

		if onInput != nil {
			onInput(e.s, e.n)
		}
	}
	return nil
}
