package browsertest

import (
	"encoding/json"
	"net/url"

	"github.com/thesyncim/homepage-e2e/fixtures"
	"github.com/thesyncim/homepage-e2e/pkg/browser"
	"github.com/thesyncim/homepage-e2e/pkg/destindex"
)

// DOM identifiers of the scripted homepage.
const (
	ConsentButtonID = "CybotCookiebotDialogBodyButtonAccept"
	SearchInputID   = "Hero__Search"
	ResultClass     = "gtm-searchDestination"
	SuggestEndpoint = "/indexes/destinations"
)

// HomepageOptions scripts the fake homepage.
type HomepageOptions struct {
	ConsentAppearAfter int  // lookups before the consent dialog renders
	NoConsent          bool // never render the consent dialog
	StickyConsent      bool // clicking accept leaves the dialog visible
	HiddenConsent      bool // render the consent button hidden
	DisabledSearch     bool // render the search input disabled
}

// NewHomepage returns a Session whose root path renders a stand-in of the
// homepage: a consent dialog and a hero search box that POSTs every
// keystroke to the suggestion endpoint and renders the returned hits as
// result links. Unmatched requests are answered by destindex.Default.
func NewHomepage(cfg browser.Config, opts HomepageOptions) *Session {
	s := NewSession(cfg)
	idx := destindex.Default(cfg.BaseURL)
	s.Live = func(_, _ string, body []byte) []byte {
		return idx.SearchJSON(body)
	}
	s.OnNavigate = func(s *Session, raw string) {
		u, err := url.Parse(raw)
		if err != nil || u.Path != "/" {
			return
		}
		buildHomepage(s, opts)
	}
	return s
}

func buildHomepage(s *Session, opts HomepageOptions) {
	if !opts.NoConsent {
		s.Append(&Node{
			ID:          ConsentButtonID,
			AppearAfter: opts.ConsentAppearAfter,
			Hidden:      opts.HiddenConsent,
			OnClick: func(_ *Session, n *Node) {
				if !opts.StickyConsent {
					s.SetHidden(n, true)
				}
			},
		})
	}

	endpoint, _ := browser.ResolveURL(s.Config().BaseURL, SuggestEndpoint)
	s.Append(&Node{
		ID:       SearchInputID,
		Disabled: opts.DisabledSearch,
		OnInput: func(s *Session, n *Node) {
			q, _ := json.Marshal(destindex.Query{Q: s.Value(n)})
			dests, err := fixtures.ParseDestinations(s.Fetch("POST", endpoint, q))
			s.RemoveClass(ResultClass)
			if err != nil {
				return
			}
			for _, d := range dests {
				s.Append(&Node{
					ID:      d.ID,
					Classes: []string{ResultClass},
					Href:    d.URL,
					OnClick: func(s *Session, n *Node) { s.load(n.Href) },
				})
			}
		},
	})
}
