package crossref

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/scholarly-search-proxy/internal/domain"
	"github.com/helixir/scholarly-search-proxy/internal/json"
	"github.com/helixir/scholarly-search-proxy/internal/papersources"
)

func newTestClient(serverURL string) *Client {
	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Source:    string(domain.ProviderCrossref),
		Timeout:   5 * time.Second,
		RateLimit: 100,
		BurstSize: 100,
		UserAgent: "TestClient/1.0",
	})
	return NewWithHTTPClient(Config{BaseURL: serverURL, Enabled: true}, httpClient)
}

// itemsBody renders a Crossref list body with n minimal items.
func itemsBody(n, total int) string {
	items := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			items += ","
		}
		items += fmt.Sprintf(`{"DOI":"10.1000/%d","title":["Paper %d"]}`, i, i)
	}
	items += "]"
	return fmt.Sprintf(`{"status":"ok","message-type":"work-list","message":{"total-results":%d,"items-per-page":%d,"items":%s}}`, total, n, items)
}

func TestClient_Metadata(t *testing.T) {
	client := New(Config{Enabled: true})
	assert.Equal(t, domain.ProviderCrossref, client.Provider())
	assert.Equal(t, "Crossref", client.Name())
	assert.True(t, client.IsEnabled())

	cfg := Config{BaseURL: "https://api.crossref.org/"}
	cfg.applyDefaults()
	assert.Equal(t, "https://api.crossref.org", cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestClient_Search(t *testing.T) {
	t.Run("sends query parameters", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "/works", r.URL.Path)
			assert.Equal(t, "protein folding", q.Get("query"))
			assert.Equal(t, "5", q.Get("rows"))
			assert.Equal(t, "0", q.Get("offset"))
			assert.Equal(t, "relevance", q.Get("sort"))
			assert.Equal(t, "desc", q.Get("order"))
			w.Write([]byte(itemsBody(5, 12)))
		}))
		defer server.Close()

		resp, err := newTestClient(server.URL).Search(context.Background(), papersources.SearchParams{
			Entity:   domain.EntityWorks,
			Query:    "protein folding",
			PageSize: 5,
			Cursor:   "*",
		})
		require.NoError(t, err)
		assert.Equal(t, 12, resp.Meta.Count)
		require.NotNil(t, resp.Meta.NextCursor)
		assert.Equal(t, "5", *resp.Meta.NextCursor)
		assert.Len(t, resp.Results, 5)
	})

	t.Run("items pass through unmodified", func(t *testing.T) {
		item := `{"DOI":"10.1/x","license":[{"URL":"https://creativecommons.org/licenses/by/4.0/"}],"title":["T"]}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"ok","message":{"total-results":1,"items":[` + item + `]}}`))
		}))
		defer server.Close()

		resp, err := newTestClient(server.URL).Search(context.Background(), papersources.SearchParams{PageSize: 10})
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)
		assert.JSONEq(t, item, string(resp.Results[0]))
	})

	t.Run("offset cursors", func(t *testing.T) {
		tests := []struct {
			name       string
			cursor     string
			offset     int
			n          int
			total      int
			nextCursor *string
		}{
			{name: "first page", cursor: "", offset: 0, n: 10, total: 25, nextCursor: domain.StringPtr("10")},
			{name: "middle page", cursor: "10", offset: 10, n: 10, total: 25, nextCursor: domain.StringPtr("20")},
			{name: "last page", cursor: "20", offset: 20, n: 5, total: 25, nextCursor: nil},
			{name: "negative clamps", cursor: "-3", offset: 0, n: 3, total: 3, nextCursor: nil},
			{name: "no results", cursor: "*", offset: 0, n: 0, total: 0, nextCursor: nil},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, strconv.Itoa(tt.offset), r.URL.Query().Get("offset"))
					w.Write([]byte(itemsBody(tt.n, tt.total)))
				}))
				defer server.Close()

				resp, err := newTestClient(server.URL).Search(context.Background(), papersources.SearchParams{
					PageSize: 10,
					Cursor:   tt.cursor,
				})
				require.NoError(t, err)
				assert.Equal(t, tt.total, resp.Meta.Count)
				assert.Equal(t, tt.nextCursor, resp.Meta.NextCursor)
			})
		}
	})

	t.Run("invalid cursor makes no outbound call", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Search(context.Background(), papersources.SearchParams{PageSize: 10, Cursor: "abc"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidCursor)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("missing total and items default to empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"ok","message":{}}`))
		}))
		defer server.Close()

		resp, err := newTestClient(server.URL).Search(context.Background(), papersources.SearchParams{PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Meta.Count)
		assert.Nil(t, resp.Meta.NextCursor)
		assert.NotNil(t, resp.Results)
		assert.Empty(t, resp.Results)

		out, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, `{"results":[],"meta":{"count":0,"next_cursor":null}}`, string(out))
	})

	t.Run("upstream 503", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Service Unavailable"))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Search(context.Background(), papersources.SearchParams{PageSize: 10})
		var httpErr *domain.UpstreamHTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, "crossref", httpErr.Source)
		assert.Equal(t, "Service Unavailable", httpErr.Body)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>oops</html>`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Search(context.Background(), papersources.SearchParams{PageSize: 10})
		assert.ErrorIs(t, err, domain.ErrUpstream)
	})
}

func TestClient_buildSearchURL(t *testing.T) {
	client := NewWithHTTPClient(Config{BaseURL: "https://api.crossref.org", Email: "team@example.org"}, nil)

	u, err := client.buildSearchURL("deep learning", 20, 40)
	require.NoError(t, err)
	assert.Contains(t, u, "https://api.crossref.org/works?")
	assert.Contains(t, u, "query=deep+learning")
	assert.Contains(t, u, "rows=20")
	assert.Contains(t, u, "offset=40")
	assert.Contains(t, u, "mailto=team%40example.org")
}

func TestIsOpenAccess(t *testing.T) {
	tests := []struct {
		name     string
		item     string
		expected bool
	}{
		{name: "license", item: `{"license":[{"URL":"cc-by"}]}`, expected: true},
		{name: "link", item: `{"link":[{"URL":"https://example.org/full.pdf"}]}`, expected: true},
		{name: "empty arrays", item: `{"license":[],"link":[]}`, expected: false},
		{name: "absent", item: `{"DOI":"10.1/x"}`, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsOpenAccess(json.RawMessage(tt.item))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := IsOpenAccess(json.RawMessage(`"scalar"`))
	assert.Error(t, err)
}
