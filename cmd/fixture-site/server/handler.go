package server

import (
	"fmt"
	"html"
	"io"
	"net/http"

	"github.com/thesyncim/homepage-e2e/pkg/destindex"
)

// maxQueryBytes bounds the suggestion request body.
const maxQueryBytes = 4 << 10

func indexFor(r *http.Request) *destindex.Index {
	return destindex.Default("http://" + r.Host)
}

// HandleDestinations answers suggestion queries from the live in-memory index.
func HandleDestinations(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxQueryBytes))
	if err != nil {
		http.Error(w, "Invalid query", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(indexFor(r).SearchJSON(body))
}

// HandleDestinationPage renders the page of a destination known to the index.
func HandleDestinationPage(w http.ResponseWriter, r *http.Request) {
	hit, ok := indexFor(r).Lookup(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, destinationPage, html.EscapeString(hit.Title), html.EscapeString(hit.Title), html.EscapeString(hit.County))
}

const destinationPage = `<!DOCTYPE html>
<html>
<head><title>%s | Discover Ireland</title></head>
<body><h1>%s</h1><p>County %s</p></body>
</html>
`
