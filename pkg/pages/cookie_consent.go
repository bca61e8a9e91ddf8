package pages

import (
	"context"

	"github.com/pkg/errors"

	"github.com/thesyncim/homepage-e2e/pkg/browser"
	"github.com/thesyncim/homepage-e2e/pkg/wait"
)

// ConsentAcceptButton is the Cookiebot dialog's "Allow all" button.
var ConsentAcceptButton = browser.ID("CybotCookiebotDialogBodyButtonAccept")

// CookieConsentPage drives the third-party cookie-consent dialog.
type CookieConsentPage struct {
	page
	accepted bool
}

// NewCookieConsentPage returns a page object bound to s.
func NewCookieConsentPage(s browser.Session, opts ...Option) *CookieConsentPage {
	return &CookieConsentPage{page: newPage(s, "cookie-consent", opts)}
}

// AcceptConsent waits for the accept button to render and clicks it.
// A dispatched click does not mean the dialog has closed; use
// AssertConsentClosed for that.
//
// Calling it again after a successful accept is a no-op unless the button
// is visible again. If the button is not visible within the consent timeout
// it returns browser.ErrElementNotFound.
func (p *CookieConsentPage) AcceptConsent(ctx context.Context) error {
	loc := ConsentAcceptButton
	log := p.log.With().Str("locator", loc.String()).Logger()

	if p.accepted {
		el, visible, err := p.first(ctx, loc)
		if err != nil {
			return err
		}
		if el == nil || !visible {
			log.Debug().Msg("consent already accepted")
			return nil
		}
	}

	var (
		present bool
		button  browser.Element
	)
	err := p.poller(p.opts.consentTimeout).Wait(ctx, func(ctx context.Context) (bool, error) {
		el, visible, err := p.first(ctx, loc)
		if err != nil {
			return false, err
		}
		present = el != nil
		if visible {
			button = el
			return true, nil
		}
		return false, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, wait.ErrTimeout) && present:
		log.Error().Dur("timeout", p.opts.consentTimeout).Msg("consent button never became visible")
		return errors.Wrapf(browser.ErrElementNotFound, "%s not visible within %s", loc, p.opts.consentTimeout)
	case errors.Is(err, wait.ErrTimeout):
		log.Error().Dur("timeout", p.opts.consentTimeout).Msg("consent button never rendered")
		return errors.Wrapf(browser.ErrElementNotFound, "%s within %s", loc, p.opts.consentTimeout)
	default:
		return err
	}

	if err := button.Click(ctx); err != nil {
		return errors.Wrapf(err, "click %s", loc)
	}
	p.accepted = true
	log.Debug().Msg("consent accepted")
	return nil
}

// AssertConsentClosed asserts the accept button is still in the DOM but no
// longer visible, polling until the timeout. A button that stays visible
// yields browser.ErrAssertionFailed; one that is gone entirely yields
// browser.ErrElementNotFound.
func (p *CookieConsentPage) AssertConsentClosed(ctx context.Context) error {
	loc := ConsentAcceptButton

	var present bool
	err := p.poller(p.opts.timeout).Wait(ctx, func(ctx context.Context) (bool, error) {
		el, visible, err := p.first(ctx, loc)
		if err != nil {
			return false, err
		}
		present = el != nil
		return present && !visible, nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, wait.ErrTimeout) && present:
		return errors.Wrapf(browser.ErrAssertionFailed, "expected %s not to be visible", loc)
	case errors.Is(err, wait.ErrTimeout):
		return errors.Wrapf(browser.ErrElementNotFound, "%s within %s", loc, p.opts.timeout)
	default:
		return err
	}
}
