package destindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/homepage-e2e/fixtures"
)

func TestSearch_PrefixAndRank(t *testing.T) {
	idx := Default("http://127.0.0.1:1")

	resp := idx.Search(Query{Q: "Mayo"})
	require.Len(t, resp.Hits, 2)
	assert.Equal(t, "Westport House", resp.Hits[0].Title)
	assert.Equal(t, "http://127.0.0.1:1/mayo/westport-house", resp.Hits[0].URL)
	assert.Equal(t, 2, resp.EstimatedTotalHits)

	resp = idx.Search(Query{Q: "cli"})
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, "cliffs-of-moher", resp.Hits[0].ID)
}

func TestSearch_Incremental(t *testing.T) {
	idx := Default("http://x")

	assert.Len(t, idx.Search(Query{Q: "M"}).Hits, 3, "Mayo, Mayo, Moher")
	assert.Len(t, idx.Search(Query{Q: "Ma"}).Hits, 2)
	assert.Empty(t, idx.Search(Query{Q: "Mayx"}).Hits)
	assert.Empty(t, idx.Search(Query{Q: "  "}).Hits)
}

func TestSearch_Limit(t *testing.T) {
	idx := Default("http://x")

	resp := idx.Search(Query{Q: "m", Limit: 1})
	assert.Len(t, resp.Hits, 1)
	assert.Equal(t, 3, resp.EstimatedTotalHits)
}

func TestSearchJSON_MatchesFixtureShape(t *testing.T) {
	idx := Default("http://x")

	body := idx.SearchJSON([]byte(`{"q":"Mayo"}`))
	dests, err := fixtures.ParseDestinations(body)
	require.NoError(t, err)
	require.Len(t, dests, 2)
	assert.Equal(t, "Westport House", dests[0].Title)

	body = idx.SearchJSON([]byte(`not json`))
	dests, err = fixtures.ParseDestinations(body)
	require.NoError(t, err)
	assert.Empty(t, dests)
}

func TestLookup(t *testing.T) {
	idx := Default("http://127.0.0.1:1/")

	h, ok := idx.Lookup("/mayo/westport-house")
	require.True(t, ok)
	assert.Equal(t, "Westport House", h.Title)

	_, ok = idx.Lookup("/great-western-greenway")
	assert.False(t, ok)
}
