package scenario

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/thesyncim/homepage-e2e/fixtures"
	"github.com/thesyncim/homepage-e2e/pkg/browser"
	"github.com/thesyncim/homepage-e2e/pkg/pages"
)

// SessionFactory opens a fresh browser session for one case.
type SessionFactory func(ctx context.Context) (browser.Session, error)

// Runner executes scenarios one after another, each in its own session so
// interception rules never leak between cases.
type Runner struct {
	Open        SessionFactory
	Fixtures    *fixtures.Loader // Default: fixtures.Bundled()
	PageOptions []pages.Option
	Log         *zerolog.Logger // Default: disabled
}

// Result is the outcome of one case.
type Result struct {
	Scenario   string
	RunID      string
	Reached    State
	FailedStep string // empty when the case passed
	Err        error
	Duration   time.Duration
}

// Passed reports whether every step succeeded.
func (r Result) Passed() bool {
	return r.Err == nil
}

// Run executes scenarios in order. A failing case does not stop the run.
func (r *Runner) Run(ctx context.Context, scenarios ...Scenario) []Result {
	results := make([]Result, 0, len(scenarios))
	for _, sc := range scenarios {
		if ctx.Err() != nil {
			break
		}
		results = append(results, r.RunOne(ctx, sc))
	}
	return results
}

// RunOne executes a single scenario in a fresh session.
func (r *Runner) RunOne(ctx context.Context, sc Scenario) (res Result) {
	res = Result{Scenario: sc.Name, RunID: uuid.NewString(), Reached: Unloaded}
	base := zerolog.Nop()
	if r.Log != nil {
		base = *r.Log
	}
	log := base.With().Str("scenario", sc.Name).Str("run_id", res.RunID).Logger()

	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if res.Err != nil {
			log.Error().Err(res.Err).Str("step", res.FailedStep).Str("state", res.Reached.String()).Msg("case failed")
			return
		}
		log.Info().Dur("duration", res.Duration).Msg("case passed")
	}()

	if err := sc.Validate(); err != nil {
		res.Err = err
		return res
	}
	if r.Open == nil {
		res.Err = errors.New("runner has no session factory")
		return res
	}

	session, err := r.Open(ctx)
	if err != nil {
		res.FailedStep = "open session"
		res.Err = errors.Wrap(err, "open session")
		return res
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("session close failed")
		}
	}()

	loader := r.Fixtures
	if loader == nil {
		loader = fixtures.Bundled()
	}
	opts := append([]pages.Option{pages.WithLogger(log)}, r.PageOptions...)
	c := &Case{
		Session: session,
		Consent: pages.NewCookieConsentPage(session, opts...),
		Home:    pages.NewHomePage(session, loader, opts...),
		Log:     log,
	}

	for _, st := range sc.Steps {
		log.Debug().Str("step", st.Name).Str("state", res.Reached.String()).Msg("step")
		if err := st.Do(ctx, c); err != nil {
			res.FailedStep = st.Name
			res.Err = err
			return res
		}
		if st.Reaches != Unloaded {
			res.Reached = st.Reaches
		}
	}
	return res
}

// Summarize counts passed and failed results.
func Summarize(results []Result) (passed, failed int) {
	for _, r := range results {
		if r.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
