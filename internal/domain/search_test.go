package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/scholarly-search-proxy/internal/json"
)

func TestEmptyResponse_JSON(t *testing.T) {
	data, err := json.Marshal(EmptyResponse())
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[],"meta":{"count":0,"next_cursor":null}}`, string(data))
}

func TestSearchResponse_NilResultsEncodeAsArray(t *testing.T) {
	data, err := json.Marshal(SearchResponse{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[],"meta":{"count":0,"next_cursor":null}}`, string(data))
}

func TestSearchResponse_NativeMembersRoundTrip(t *testing.T) {
	body := `{
		"meta": {"count": 42, "db_response_time_ms": 17, "next_cursor": "IlsxMDBd", "per_page": 2},
		"results": [{"id": "W1", "open_access": {"is_oa": true}}, {"id": "W2"}],
		"group_by": []
	}`

	var resp SearchResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	assert.Len(t, resp.Results, 2)
	assert.Equal(t, 42, resp.Meta.Count)
	require.NotNil(t, resp.Meta.NextCursor)
	assert.Equal(t, "IlsxMDBd", *resp.Meta.NextCursor)
	assert.Contains(t, resp.Meta.Native, "db_response_time_ms")
	assert.Contains(t, resp.Native, "group_by")

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(out))
}

func TestSearchResponse_Deterministic(t *testing.T) {
	body := `{"meta":{"z":1,"a":2,"count":3,"next_cursor":null},"results":[{"b":1,"a":2}],"x":true}`

	var first, second SearchResponse
	require.NoError(t, json.Unmarshal([]byte(body), &first))
	require.NoError(t, json.Unmarshal([]byte(body), &second))

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMeta_UnmarshalDefaults(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		count     int
		hasCursor bool
	}{
		{name: "missing fields", input: `{}`, count: 0},
		{name: "null count", input: `{"count":null,"next_cursor":null}`, count: 0},
		{name: "negative count", input: `{"count":-4}`, count: 0},
		{name: "cursor present", input: `{"count":7,"next_cursor":"abc"}`, count: 7, hasCursor: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Meta
			require.NoError(t, json.Unmarshal([]byte(tt.input), &m))
			assert.Equal(t, tt.count, m.Count)
			assert.Equal(t, tt.hasCursor, m.NextCursor != nil)
		})
	}
}

func TestSearchResponse_MissingResults(t *testing.T) {
	var resp SearchResponse
	require.NoError(t, json.Unmarshal([]byte(`{"meta":{"count":0}}`), &resp))
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}

func TestNormalizedResult_JSONNames(t *testing.T) {
	r := NormalizedResult{
		Title:      "Attention",
		Link:       "http://arxiv.org/abs/1706.03762v5",
		PDFLink:    "http://arxiv.org/pdf/1706.03762v5",
		Identifier: "",
		Authors:    []string{"A. Vaswani"},
		Categories: []string{"cs.CL"},
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"title": "Attention",
		"link": "http://arxiv.org/abs/1706.03762v5",
		"pdf": "http://arxiv.org/pdf/1706.03762v5",
		"year": null,
		"doi": "",
		"authors": ["A. Vaswani"],
		"categories": ["cs.CL"]
	}`, string(data))
}
