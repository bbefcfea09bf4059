package arxiv

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/scholarly-search-proxy/internal/domain"
	"github.com/helixir/scholarly-search-proxy/internal/json"
	"github.com/helixir/scholarly-search-proxy/internal/papersources"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <title type="html">ArXiv Query: search_query=all:attention</title>
  <id>http://arxiv.org/api/abc</id>
  <opensearch:totalResults>42</opensearch:totalResults>
  <opensearch:startIndex>0</opensearch:startIndex>
  <opensearch:itemsPerPage>2</opensearch:itemsPerPage>
  <entry>
    <id>http://arxiv.org/abs/1706.03762v5</id>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is
      All You Need</title>
    <summary>The dominant sequence transduction models...</summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <arxiv:doi>10.48550/arXiv.1706.03762</arxiv:doi>
    <link href="http://arxiv.org/abs/1706.03762v5" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762v5" rel="related" type="application/pdf"/>
    <arxiv:primary_category term="cs.CL" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.CL" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.LG" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2101.00001v1</id>
    <title>No Date Entry</title>
    <author><name>Jane Doe</name></author>
    <link href="http://arxiv.org/abs/2101.00001v1" rel="alternate" type="text/html"/>
  </entry>
</feed>`

func newTestClient(serverURL string) *Client {
	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Source:    string(domain.ProviderArXiv),
		Timeout:   5 * time.Second,
		RateLimit: 100,
		BurstSize: 100,
		UserAgent: "TestClient/1.0",
	})
	return NewWithHTTPClient(Config{BaseURL: serverURL, Enabled: true}, httpClient)
}

func decodeResults(t *testing.T, resp *domain.SearchResponse) []domain.NormalizedResult {
	t.Helper()
	out := make([]domain.NormalizedResult, 0, len(resp.Results))
	for _, raw := range resp.Results {
		var r domain.NormalizedResult
		require.NoError(t, json.Unmarshal(raw, &r))
		out = append(out, r)
	}
	return out
}

func TestClient_Metadata(t *testing.T) {
	client := New(Config{})
	assert.Equal(t, domain.ProviderArXiv, client.Provider())
	assert.Equal(t, "arXiv", client.Name())
	assert.False(t, client.IsEnabled())

	cfg := Config{}
	cfg.applyDefaults()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimit)
	assert.Equal(t, DefaultBurstSize, cfg.BurstSize)
}

func TestClient_Search(t *testing.T) {
	t.Run("normalizes entries", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "/query", r.URL.Path)
			assert.Equal(t, "all:attention", q.Get("search_query"))
			assert.Equal(t, "0", q.Get("start"))
			assert.Equal(t, "2", q.Get("max_results"))
			assert.Equal(t, "relevance", q.Get("sortBy"))
			w.Header().Set("Content-Type", "application/atom+xml")
			w.Write([]byte(sampleFeed))
		}))
		defer server.Close()

		resp, err := newTestClient(server.URL).Search(context.Background(), papersources.SearchParams{
			Entity:   domain.EntityWorks,
			Query:    "attention",
			PageSize: 2,
			Cursor:   "*",
		})
		require.NoError(t, err)

		assert.Equal(t, 42, resp.Meta.Count)
		require.NotNil(t, resp.Meta.NextCursor)
		assert.Equal(t, "2", *resp.Meta.NextCursor)

		results := decodeResults(t, resp)
		require.Len(t, results, 2)

		first := results[0]
		assert.Equal(t, "Attention Is All You Need", first.Title)
		assert.Equal(t, "http://arxiv.org/abs/1706.03762v5", first.Link)
		assert.Equal(t, "http://arxiv.org/pdf/1706.03762v5", first.PDFLink)
		require.NotNil(t, first.Year)
		assert.Equal(t, 2017, *first.Year)
		assert.Equal(t, "10.48550/arXiv.1706.03762", first.Identifier)
		assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, first.Authors)
		assert.Equal(t, []string{"cs.CL", "cs.LG"}, first.Categories)

		second := results[1]
		assert.Nil(t, second.Year)
		assert.Equal(t, "", second.PDFLink)
		assert.Equal(t, "", second.Identifier)
		assert.Equal(t, []string{}, second.Categories)
		assert.JSONEq(t, `{
			"title": "No Date Entry",
			"link": "http://arxiv.org/abs/2101.00001v1",
			"pdf": "",
			"year": null,
			"doi": "",
			"authors": ["Jane Doe"],
			"categories": []
		}`, string(resp.Results[1]))
	})

	t.Run("empty query matches everything", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "all:*", r.URL.Query().Get("search_query"))
			assert.Equal(t, "30", r.URL.Query().Get("start"))
			w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
		}))
		defer server.Close()

		resp, err := newTestClient(server.URL).Search(context.Background(), papersources.SearchParams{PageSize: 10, Cursor: "30"})
		require.NoError(t, err)
		assert.Empty(t, resp.Results)
		assert.NotNil(t, resp.Results)
		// Without opensearch:totalResults the total is offset + len(entries).
		assert.Equal(t, 30, resp.Meta.Count)
		assert.Nil(t, resp.Meta.NextCursor)
	})

	t.Run("non-numeric total falls back", func(t *testing.T) {
		feed := strings.Replace(sampleFeed, "<opensearch:totalResults>42</opensearch:totalResults>", "<opensearch:totalResults>many</opensearch:totalResults>", 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(feed))
		}))
		defer server.Close()

		resp, err := newTestClient(server.URL).Search(context.Background(), papersources.SearchParams{PageSize: 2, Cursor: "10"})
		require.NoError(t, err)
		assert.Equal(t, 12, resp.Meta.Count)
		assert.Nil(t, resp.Meta.NextCursor)
	})

	t.Run("last page has no next cursor", func(t *testing.T) {
		feed := strings.Replace(sampleFeed, ">42<", ">12<", 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(feed))
		}))
		defer server.Close()

		resp, err := newTestClient(server.URL).Search(context.Background(), papersources.SearchParams{PageSize: 2, Cursor: "10"})
		require.NoError(t, err)
		assert.Equal(t, 12, resp.Meta.Count)
		assert.Nil(t, resp.Meta.NextCursor)
	})

	t.Run("invalid cursor", func(t *testing.T) {
		_, err := newTestClient("http://127.0.0.1:1").Search(context.Background(), papersources.SearchParams{PageSize: 2, Cursor: "next"})
		var cursorErr *domain.InvalidCursorError
		require.True(t, errors.As(err, &cursorErr))
		assert.Equal(t, "next", cursorErr.Cursor)
	})

	t.Run("upstream 503", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Rate exceeded."))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Search(context.Background(), papersources.SearchParams{PageSize: 2})
		var httpErr *domain.UpstreamHTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, "arxiv", httpErr.Source)
		assert.Equal(t, "Rate exceeded.", httpErr.Body)
	})

	t.Run("malformed feed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<feed><entry><title>unterminated`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Search(context.Background(), papersources.SearchParams{PageSize: 2})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUpstream)
		assert.Contains(t, err.Error(), "decoding feed")
	})
}

func TestEntry_normalize(t *testing.T) {
	t.Run("link falls back to first link without rel, then id", func(t *testing.T) {
		e := Entry{ID: " http://arxiv.org/abs/1 ", Links: []Link{{Href: "http://x/pdf", Rel: "related", Type: "application/pdf"}, {Href: "http://x/abs"}}}
		r := e.normalize()
		assert.Equal(t, "http://x/abs", r.Link)
		assert.Equal(t, "http://x/pdf", r.PDFLink)

		e.Links = nil
		assert.Equal(t, "http://arxiv.org/abs/1", e.normalize().Link)
	})

	t.Run("pdf picked by title", func(t *testing.T) {
		e := Entry{Links: []Link{{Href: "http://x/abs", Rel: "alternate"}, {Href: "http://x/pdf", Title: "pdf"}}}
		assert.Equal(t, "http://x/pdf", e.normalize().PDFLink)
	})

	t.Run("one element per author and category entry", func(t *testing.T) {
		e := Entry{
			Authors:    []Author{{Name: " Ada Lovelace "}, {Name: ""}, {Name: "Alan Turing"}},
			Categories: []Category{{Term: "cs.AI"}, {Term: "  "}},
		}
		r := e.normalize()
		assert.Equal(t, []string{"Ada Lovelace", "", "Alan Turing"}, r.Authors)
		assert.Equal(t, []string{"cs.AI", ""}, r.Categories)
	})

	t.Run("empty entry yields defaults", func(t *testing.T) {
		r := (&Entry{}).normalize()
		assert.Equal(t, "", r.Title)
		assert.Equal(t, "", r.Link)
		assert.Equal(t, "", r.PDFLink)
		assert.Nil(t, r.Year)
		assert.NotNil(t, r.Authors)
		assert.NotNil(t, r.Categories)
	})
}

func TestPublishedYear(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *int
	}{
		{name: "rfc3339", input: "2017-06-12T17:57:34Z", expected: intPtr(2017)},
		{name: "year only", input: "1999", expected: intPtr(1999)},
		{name: "empty", input: "", expected: nil},
		{name: "too short", input: "201", expected: nil},
		{name: "non numeric", input: "abcd-01-01", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, publishedYear(tt.input))
		})
	}
}

func TestIsOpenAccess(t *testing.T) {
	ok, err := IsOpenAccess(json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.True(t, ok)
}

func intPtr(n int) *int {
	return &n
}
