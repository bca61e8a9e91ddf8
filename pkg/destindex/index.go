// Package destindex is a small in-memory destination index that answers
// suggestion queries in the same shape as the production search endpoint.
// It backs the "live" side of the local fixture site and of the fake
// browser session, so a mocked response is distinguishable from a live one.
package destindex

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"
)

// Hit is one suggested destination.
type Hit struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	County string `json:"county"`
	Type   string `json:"type"`
	URL    string `json:"url"`
	Rank   int    `json:"-"`
}

// Response mirrors the suggestion endpoint's response body.
type Response struct {
	Hits               []Hit  `json:"hits"`
	Query              string `json:"query"`
	ProcessingTimeMs   int    `json:"processingTimeMs"`
	Limit              int    `json:"limit"`
	Offset             int    `json:"offset"`
	EstimatedTotalHits int    `json:"estimatedTotalHits"`
}

// Query is the request body accepted by the endpoint.
type Query struct {
	Q     string `json:"q"`
	Limit int    `json:"limit,omitempty"`
}

// DefaultLimit caps results when a query carries no limit.
const DefaultLimit = 6

// Index is an immutable set of destinations.
type Index struct {
	hits []Hit
}

// New builds an index; hits are ranked by Rank, then title.
func New(hits ...Hit) *Index {
	sorted := append([]Hit(nil), hits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank < sorted[j].Rank
		}
		return sorted[i].Title < sorted[j].Title
	})
	return &Index{hits: sorted}
}

// Default returns the index served by the fixture site. Its top hit for
// "Mayo" deliberately differs from the bundled Mayo fixture.
func Default(baseURL string) *Index {
	base := strings.TrimRight(baseURL, "/")
	return New(
		Hit{ID: "westport-house", Title: "Westport House", County: "Mayo", Type: "Attraction", URL: base + "/mayo/westport-house", Rank: 1},
		Hit{ID: "ceide-fields", Title: "Céide Fields", County: "Mayo", Type: "Heritage", URL: base + "/mayo/ceide-fields", Rank: 2},
		Hit{ID: "kylemore-abbey", Title: "Kylemore Abbey", County: "Galway", Type: "Attraction", URL: base + "/galway/kylemore-abbey", Rank: 1},
		Hit{ID: "cliffs-of-moher", Title: "Cliffs of Moher", County: "Clare", Type: "Attraction", URL: base + "/clare/cliffs-of-moher", Rank: 1},
	)
}

// Search returns hits whose title or county starts with q (case-insensitive,
// word prefix). An empty query matches nothing.
func (idx *Index) Search(q Query) Response {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	term := strings.ToLower(strings.TrimSpace(q.Q))

	resp := Response{Hits: []Hit{}, Query: q.Q, Limit: limit}
	if term == "" {
		return resp
	}
	for _, h := range idx.hits {
		if !matches(h, term) {
			continue
		}
		resp.EstimatedTotalHits++
		if len(resp.Hits) < limit {
			resp.Hits = append(resp.Hits, h)
		}
	}
	return resp
}

func matches(h Hit, term string) bool {
	for _, field := range []string{h.Title, h.County} {
		for _, word := range strings.Fields(strings.ToLower(field)) {
			if strings.HasPrefix(word, term) {
				return true
			}
		}
	}
	return false
}

// SearchJSON decodes a request body, searches, and encodes the response.
// A body that is not a JSON query is treated as an empty query.
func (idx *Index) SearchJSON(body []byte) []byte {
	var q Query
	_ = json.Unmarshal(body, &q)
	out, err := json.Marshal(idx.Search(q))
	if err != nil {
		return []byte(`{"hits":[]}`)
	}
	return out
}

// Lookup returns the hit whose URL path equals path.
func (idx *Index) Lookup(path string) (Hit, bool) {
	for _, h := range idx.hits {
		u, err := url.Parse(h.URL)
		if err != nil {
			continue
		}
		if u.Path == path {
			return h, true
		}
	}
	return Hit{}, false
}
