package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestServerStartStop(t *testing.T) {
	srv, err := NewServer(DefaultConfig())
	require.NoError(t, err)

	addr, err := srv.Start()
	require.NoError(t, err)

	// Verify we got a real address (not :0)
	require.NotEmpty(t, addr)
	require.NotEqual(t, ":0", addr)
	assert.Equal(t, addr, srv.Addr())
	assert.True(t, strings.HasPrefix(srv.URL(), "http://127.0.0.1:"))

	resp, err := http.Get(srv.URL() + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `id="Hero__Search"`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	// Second shutdown is a no-op
	require.NoError(t, srv.Shutdown(ctx))
}

func TestServerDoubleStart(t *testing.T) {
	srv, err := NewServer(DefaultConfig())
	require.NoError(t, err)

	addr1, err := srv.Start()
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	addr2, err := srv.Start()
	require.NoError(t, err)
	assert.Equal(t, addr1, addr2)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":0", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 300*time.Millisecond, cfg.ConsentDelay)
	assert.False(t, cfg.NoConsent)
}

func TestNewServerRejectsNegativeDelay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConsentDelay = -time.Second

	_, err := NewServer(cfg)
	require.Error(t, err)
}

func TestRenderHomepage(t *testing.T) {
	page := RenderHomepage(1500*time.Millisecond, false)
	assert.Contains(t, page, "const consentDelay = 1500;")
	assert.Contains(t, page, "CybotCookiebotDialogBodyButtonAccept")
	assert.Contains(t, page, "gtm-searchDestination")
	assert.Contains(t, page, "addEventListener('keyup'", "suggestions must be driven by key events")
	assert.NotContains(t, page, "addEventListener('input'")
	assert.NotContains(t, page, consentDelayToken)

	disabled := RenderHomepage(time.Second, true)
	assert.Contains(t, disabled, "const consentDelay = -1;")
}

func TestHandleDestinations(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://site.test/indexes/destinations", strings.NewReader(`{"q":"Mayo"}`))
	rec := httptest.NewRecorder()

	HandleDestinations(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	hits := gjson.GetBytes(rec.Body.Bytes(), "hits")
	require.True(t, hits.IsArray())
	require.Len(t, hits.Array(), 2)
	assert.Equal(t, "http://site.test/mayo/westport-house", hits.Array()[0].Get("url").String())
}

func TestHandleDestinationPage(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		title  string
	}{
		{name: "known destination", path: "/galway/kylemore-abbey", status: http.StatusOK, title: "Kylemore Abbey"},
		{name: "unknown destination", path: "/kerry/skellig-michael", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://site.test"+tt.path, nil)
			rec := httptest.NewRecorder()

			HandleDestinationPage(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.title != "" {
				assert.Contains(t, rec.Body.String(), "<h1>"+tt.title+"</h1>")
			}
		})
	}
}

func TestServerRoutes(t *testing.T) {
	srv, err := NewServer(DefaultConfig())
	require.NoError(t, err)
	_, err = srv.Start()
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	resp, err := http.Post(srv.URL()+"/indexes/destinations", "application/json", strings.NewReader(`{"q":"Clare"}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Cliffs of Moher", gjson.GetBytes(body, "hits.0.title").String())

	// GET on the search endpoint is not routed to the index
	resp, err = http.Get(srv.URL() + "/indexes/destinations")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
