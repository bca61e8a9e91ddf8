package browsertest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/homepage-e2e/pkg/browser"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	cfg := browser.DefaultConfig()
	cfg.BaseURL = "http://homepage.test"
	s := NewSession(cfg)
	require.NoError(t, s.Navigate(context.Background(), "/"))
	return s
}

func TestFetch_NewestRuleAnswers(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()
	route := browser.Route{Method: "POST", Pattern: "*/indexes/destinations*"}

	route.Body = []byte(`{"hits":[]}`)
	older, err := s.Intercept(ctx, route)
	require.NoError(t, err)
	route.Body = []byte(`{"hits":[{"url":"https://x/y"}]}`)
	newer, err := s.Intercept(ctx, route)
	require.NoError(t, err)

	body := s.Fetch("POST", "http://homepage.test/indexes/destinations", nil)
	assert.Equal(t, `{"hits":[{"url":"https://x/y"}]}`, string(body))
	assert.Equal(t, 0, older.Hits())
	assert.Equal(t, 1, newer.Hits())

	require.NoError(t, newer.Stop())
	body = s.Fetch("POST", "http://homepage.test/indexes/destinations", nil)
	assert.Equal(t, `{"hits":[]}`, string(body))
	assert.Equal(t, 1, older.Hits())
}

func TestFetch_UnmatchedGoesLive(t *testing.T) {
	s := newSession(t)
	s.Live = func(method, url string, body []byte) []byte { return []byte("live") }

	_, err := s.Intercept(context.Background(), browser.Route{Method: "POST", Pattern: "*/indexes/destinations*"})
	require.NoError(t, err)

	assert.Equal(t, "live", string(s.Fetch("GET", "http://homepage.test/indexes/destinations", nil)))
	reqs := s.Requests()
	require.Len(t, reqs, 1)
	assert.False(t, reqs[0].Mocked)
}

func TestElement_ConcurrentUse(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()
	s.Append(&Node{ID: "button"}, &Node{ID: "input"})
	loc := browser.ID("button")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			found, err := s.Find(ctx, loc)
			if !assert.NoError(t, err) || !assert.Len(t, found, 1) {
				return
			}
			assert.NoError(t, found[0].Click(ctx))
			_, err = found[0].Visible(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		found, err := s.Find(ctx, browser.ID("input"))
		if assert.NoError(t, err) && assert.Len(t, found, 1) {
			assert.NoError(t, found[0].TypeText(ctx, "Mayo"))
		}
	}()
	wg.Wait()

	assert.Equal(t, 8, s.Node("button").Clicks)
	assert.Equal(t, "Mayo", s.Value(s.Node("input")))
}

func TestElement_HiddenClickFails(t *testing.T) {
	s := newSession(t)
	n := &Node{ID: "dialog"}
	s.Append(n)
	s.SetHidden(n, true)

	found, err := s.Find(context.Background(), browser.ID("dialog"))
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Error(t, found[0].Click(context.Background()))
	assert.Equal(t, 0, n.Clicks)
}
