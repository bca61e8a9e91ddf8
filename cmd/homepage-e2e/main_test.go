package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/homepage-e2e/pkg/browser"
	"github.com/thesyncim/homepage-e2e/pkg/browser/browsertest"
	"github.com/thesyncim/homepage-e2e/pkg/pages"
	"github.com/thesyncim/homepage-e2e/pkg/scenario"
	"github.com/thesyncim/homepage-e2e/pkg/wait"
)

func TestReport(t *testing.T) {
	results := []scenario.Result{
		{Scenario: "cookie banner closes after accept", Reached: scenario.ConsentHandled, Duration: 1200 * time.Millisecond},
		{
			Scenario:   "suggested destination navigates",
			Reached:    scenario.SearchEntered,
			FailedStep: "select search result",
			Err:        errors.Wrap(browser.ErrElementNotFound, "css=.gtm-searchDestination"),
			RunID:      "run-1",
		},
	}

	var buf bytes.Buffer
	ok := report(&buf, results)

	assert.False(t, ok)
	out := buf.String()
	assert.Contains(t, out, "PASS  cookie banner closes after accept")
	assert.Contains(t, out, `step="select search result" reached=SearchEntered run=run-1`)
	assert.Contains(t, out, "1 passed, 1 failed")
}

func TestReport_EmptyIsFailure(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, report(&buf, nil))
}

func fakeSuite(opts browsertest.HomepageOptions) suiteFunc {
	cfg := browser.DefaultConfig()
	cfg.BaseURL = "http://homepage.test"
	r := &scenario.Runner{
		Open: func(context.Context) (browser.Session, error) {
			return browsertest.NewHomepage(cfg, opts), nil
		},
		PageOptions: []pages.Option{pages.WithClock(wait.NewMockClock(time.Time{}))},
	}
	return func(ctx context.Context) []scenario.Result {
		return r.Run(ctx, scenario.Homepage()...)
	}
}

func TestRunSoak_Iterations(t *testing.T) {
	var buf bytes.Buffer
	result := runSoak(context.Background(), &buf, fakeSuite(browsertest.HomepageOptions{}), time.Hour, 3)

	assert.Equal(t, "PASS", result.Status)
	assert.Equal(t, 3, result.Iterations)
	assert.Equal(t, 6, result.Cases)
	assert.Empty(t, result.Failures)
}

func TestRunSoak_RecordsFlakyScenario(t *testing.T) {
	var buf bytes.Buffer
	result := runSoak(context.Background(), &buf, fakeSuite(browsertest.HomepageOptions{NoConsent: true}), time.Hour, 2)

	assert.Equal(t, "FAIL", result.Status)
	consent := scenario.CookieBannerClosesAfterAccept().Name
	require.Len(t, result.Failures, 1, "only the consent scenario needs the dialog")
	assert.Equal(t, 2, result.Failures[consent])
	assert.ErrorIs(t, result.FirstErr[consent], browser.ErrElementNotFound)

	// Each failing scenario is printed once, not per iteration
	assert.Equal(t, 1, strings.Count(buf.String(), "FAIL "))

	buf.Reset()
	printSummary(&buf, result)
	assert.Contains(t, buf.String(), "Flaky scenarios:")
	assert.Contains(t, buf.String(), "No failed cases:       FAIL")
}

func TestRunSoak_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	result := runSoak(ctx, &buf, fakeSuite(browsertest.HomepageOptions{}), time.Hour, 0)

	assert.Equal(t, 0, result.Iterations)
	assert.Equal(t, "FAIL", result.Status, "a run with no cases does not pass")
}
