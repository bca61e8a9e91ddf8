package pages

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/thesyncim/homepage-e2e/fixtures"
	"github.com/thesyncim/homepage-e2e/pkg/browser"
	"github.com/thesyncim/homepage-e2e/pkg/wait"
)

// Homepage selectors and endpoints.
var (
	HeroSearchInput      = browser.ID("Hero__Search")
	SuggestedDestination = browser.CSS(".gtm-searchDestination")
)

// SuggestedDestinationsPattern matches the destination-suggestion endpoint
// on any host.
const SuggestedDestinationsPattern = "*/indexes/destinations*"

// HomePage drives the landing page's hero search.
type HomePage struct {
	page
	fixtures *fixtures.Loader
	mock     browser.Interception
}

// NewHomePage returns a page object bound to s. Mock fixtures are resolved
// through loader.
func NewHomePage(s browser.Session, loader *fixtures.Loader, opts ...Option) *HomePage {
	return &HomePage{page: newPage(s, "home", opts), fixtures: loader}
}

// Navigate loads the application root. It returns once the load event fired;
// scripts the page starts afterwards (the consent dialog) may still be pending.
func (p *HomePage) Navigate(ctx context.Context) error {
	p.log.Debug().Msg("navigate /")
	return p.session.Navigate(ctx, "/")
}

// EnterSearchTerm types term into the hero search box one character at a
// time. The box must be present and enabled.
func (p *HomePage) EnterSearchTerm(ctx context.Context, term string) error {
	loc := HeroSearchInput

	var (
		input   browser.Element
		present bool
	)
	err := p.poller(p.opts.timeout).Wait(ctx, func(ctx context.Context) (bool, error) {
		found, err := p.find(ctx, loc)
		if err != nil || len(found) == 0 {
			return false, err
		}
		present = true
		enabled, err := found[0].Enabled(ctx)
		if err != nil || !enabled {
			return false, err
		}
		input = found[0]
		return true, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, wait.ErrTimeout) && present:
		return errors.Wrapf(browser.ErrAssertionFailed, "expected %s to be enabled", loc)
	case errors.Is(err, wait.ErrTimeout):
		return errors.Wrapf(browser.ErrElementNotFound, "%s within %s", loc, p.opts.timeout)
	default:
		return err
	}

	p.log.Debug().Str("locator", loc.String()).Str("term", term).Msg("type search term")
	if err := input.TypeText(ctx, term); err != nil {
		return errors.Wrapf(err, "type into %s", loc)
	}
	return nil
}

// MockSuggestedDestinations answers POST requests to the suggestion endpoint
// with the named fixture instead of the live backend. Install it before
// EnterSearchTerm: requests issued earlier are not intercepted.
func (p *HomePage) MockSuggestedDestinations(ctx context.Context, fixtureName string) (browser.Interception, error) {
	body, err := p.fixtures.Load(fixtureName)
	if err != nil {
		return nil, err
	}

	ic, err := p.session.Intercept(ctx, browser.Route{
		Method:  http.MethodPost,
		Pattern: SuggestedDestinationsPattern,
		Body:    body,
	})
	if err != nil {
		return nil, err
	}
	p.mock = ic
	p.log.Debug().Str("fixture", fixtureName).Msg("suggested destinations mocked")
	return ic, nil
}

// VerifyMockHonored reports browser.ErrNetworkMockUnmatched when the
// installed mock has not answered any request, and the backend's error when
// answering one failed.
func (p *HomePage) VerifyMockHonored() error {
	if p.mock == nil {
		return errors.Wrap(browser.ErrNetworkMockUnmatched, "no mock installed")
	}
	if err := p.mock.Err(); err != nil {
		return errors.Wrapf(err, "mock for POST %s failed to answer", SuggestedDestinationsPattern)
	}
	if p.mock.Hits() == 0 {
		return errors.Wrapf(browser.ErrNetworkMockUnmatched, "POST %s", SuggestedDestinationsPattern)
	}
	return nil
}

// SelectSearchResult clicks the first suggested destination in DOM order.
func (p *HomePage) SelectSearchResult(ctx context.Context) error {
	loc := SuggestedDestination

	var first browser.Element
	err := p.poller(p.opts.timeout).Wait(ctx, func(ctx context.Context) (bool, error) {
		found, err := p.find(ctx, loc)
		if err != nil || len(found) == 0 {
			return false, err
		}
		first = found[0]
		return true, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, wait.ErrTimeout):
		return errors.Wrapf(browser.ErrElementNotFound, "%s within %s", loc, p.opts.timeout)
	default:
		return err
	}

	p.log.Debug().Str("locator", loc.String()).Msg("select first result")
	if err := first.Click(ctx); err != nil {
		return errors.Wrapf(err, "click %s", loc)
	}
	return nil
}

// AssertURL polls the page location until it equals want.
func (p *HomePage) AssertURL(ctx context.Context, want string) error {
	var last string
	err := p.poller(p.opts.timeout).Wait(ctx, func(ctx context.Context) (bool, error) {
		u, err := p.session.URL(ctx)
		if err != nil {
			return false, err
		}
		last = u
		return u == want, nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, wait.ErrTimeout):
		return errors.Wrapf(browser.ErrAssertionFailed, "expected url %q, got %q", want, last)
	default:
		return err
	}
}
