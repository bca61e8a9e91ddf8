package scenario

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/thesyncim/homepage-e2e/fixtures"
	"github.com/thesyncim/homepage-e2e/pkg/browser"
	"github.com/thesyncim/homepage-e2e/pkg/pages"
)

// Literal inputs of the homepage scenarios.
const (
	MayoSearchTerm      = "Mayo"
	ExpectedGreenwayURL = "https://www.discoverireland.ie/great-western-greenway"
)

// ErrInvalidScenario is returned for scenarios that break the ordering rules.
var ErrInvalidScenario = errors.New("invalid scenario")

// Case is what a step operates on: one session and its page objects.
type Case struct {
	Session browser.Session
	Consent *pages.CookieConsentPage
	Home    *pages.HomePage
	Log     zerolog.Logger
}

// Step is one page-object call.
type Step struct {
	Name string
	// Reaches is the state the case is in after Do succeeds. Unloaded
	// means the step does not move the case (e.g. installing a mock).
	Reaches State
	Do      func(ctx context.Context, c *Case) error
}

// Scenario is a named, ordered list of steps.
type Scenario struct {
	Name  string
	Steps []Step
}

// Validate enforces that the first step loads the page, so no lookup runs
// before navigation, and that states never move backwards.
func (s Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return errors.Wrapf(ErrInvalidScenario, "%q has no steps", s.Name)
	}
	if s.Steps[0].Reaches != Loaded {
		return errors.Wrapf(ErrInvalidScenario, "%q must start by loading the page, starts with %q", s.Name, s.Steps[0].Name)
	}
	current := Unloaded
	for _, st := range s.Steps {
		if st.Do == nil {
			return errors.Wrapf(ErrInvalidScenario, "%q step %q has no action", s.Name, st.Name)
		}
		if st.Reaches == Unloaded {
			continue
		}
		if st.Reaches < current {
			return errors.Wrapf(ErrInvalidScenario, "%q step %q goes back from %s to %s", s.Name, st.Name, current, st.Reaches)
		}
		current = st.Reaches
	}
	return nil
}

// NavigateHome loads the application root.
func NavigateHome() Step {
	return Step{Name: "navigate home", Reaches: Loaded, Do: func(ctx context.Context, c *Case) error {
		return c.Home.Navigate(ctx)
	}}
}

// AcceptConsent clicks the consent dialog's accept button.
func AcceptConsent() Step {
	return Step{Name: "accept cookie consent", Reaches: ConsentHandled, Do: func(ctx context.Context, c *Case) error {
		return c.Consent.AcceptConsent(ctx)
	}}
}

// AssertConsentClosed checks the consent dialog is hidden.
func AssertConsentClosed() Step {
	return Step{Name: "assert cookie consent closed", Reaches: ConsentHandled, Do: func(ctx context.Context, c *Case) error {
		return c.Consent.AssertConsentClosed(ctx)
	}}
}

// MockSuggestedDestinations installs the suggestion-endpoint mock.
func MockSuggestedDestinations(fixture string) Step {
	return Step{Name: "mock suggested destinations " + fixture, Do: func(ctx context.Context, c *Case) error {
		_, err := c.Home.MockSuggestedDestinations(ctx, fixture)
		return err
	}}
}

// EnterSearchTerm types term into the hero search.
func EnterSearchTerm(term string) Step {
	return Step{Name: "enter search term " + term, Reaches: SearchEntered, Do: func(ctx context.Context, c *Case) error {
		return c.Home.EnterSearchTerm(ctx, term)
	}}
}

// SelectSearchResult clicks the first suggested destination.
func SelectSearchResult() Step {
	return Step{Name: "select first search result", Reaches: ResultSelected, Do: func(ctx context.Context, c *Case) error {
		return c.Home.SelectSearchResult(ctx)
	}}
}

// AssertURL checks the final location.
func AssertURL(want string) Step {
	return Step{Name: "assert url " + want, Reaches: Navigated, Do: func(ctx context.Context, c *Case) error {
		return c.Home.AssertURL(ctx, want)
	}}
}

// CookieBannerClosesAfterAccept: the cookie banner is not displayed after
// clicking accept.
func CookieBannerClosesAfterAccept() Scenario {
	return Scenario{
		Name: "should not display cookie banner after clicking accept",
		Steps: []Step{
			NavigateHome(),
			AcceptConsent(),
			AssertConsentClosed(),
		},
	}
}

// SuggestedDestinationNavigates: selecting a (mocked) suggested destination
// goes to the destination's URL.
func SuggestedDestinationNavigates(fixture, term, wantURL string) Scenario {
	return Scenario{
		Name: "should go to correct url after selecting suggested destination",
		Steps: []Step{
			NavigateHome(),
			MockSuggestedDestinations(fixture),
			EnterSearchTerm(term),
			SelectSearchResult(),
			AssertURL(wantURL),
		},
	}
}

// Homepage returns the homepage suite.
func Homepage() []Scenario {
	return []Scenario{
		CookieBannerClosesAfterAccept(),
		SuggestedDestinationNavigates(fixtures.MayoSuggestedDestinations, MayoSearchTerm, ExpectedGreenwayURL),
	}
}
