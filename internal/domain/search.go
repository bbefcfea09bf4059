package domain

import (
	"github.com/helixir/scholarly-search-proxy/internal/json"
)

// Page size bounds accepted by every provider.
const (
	MinPageSize     = 1
	MaxPageSize     = 200
	DefaultPageSize = 10
)

// StartCursor marks the beginning of a result set for every provider.
const StartCursor = "*"

// SearchRequest is one inbound search, built fresh per call.
type SearchRequest struct {
	Provider Provider `validate:"required,oneof=openalex crossref arxiv"`
	Entity   Entity   `validate:"required"`
	Query    string   `validate:"max=4096"`
	PageSize int      `validate:"min=1,max=200"`
	// Cursor is an opaque provider token (OpenAlex) or a decimal offset
	// (Crossref, arXiv). Empty or "*" means the start of the result set.
	Cursor string `validate:"max=2048"`
	// Filter and Sort are provider-native expressions, honoured by OpenAlex.
	Filter string `validate:"max=2048"`
	Sort   string `validate:"max=256"`
}

// ClampPageSize bounds n to [MinPageSize, MaxPageSize].
func ClampPageSize(n int) int {
	if n < MinPageSize {
		return MinPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// NormalizedResult is the common projection of a preprint feed entry.
// The JSON names are the ones the bundled frontend reads.
type NormalizedResult struct {
	Title      string   `json:"title"`
	Link       string   `json:"link"`
	PDFLink    string   `json:"pdf"`
	Year       *int     `json:"year"`
	Identifier string   `json:"doi"`
	Authors    []string `json:"authors"`
	Categories []string `json:"categories"`
}

// Meta carries pagination information for a SearchResponse.
type Meta struct {
	// Count is the provider's total number of matches (never negative).
	Count int
	// NextCursor is nil when there are no further pages.
	NextCursor *string
	// Native holds any other meta members a pass-through provider returned.
	Native map[string]json.RawMessage
}

// SearchResponse is the normalized {results, meta} envelope.
// Results hold either provider-native items or encoded NormalizedResult values.
type SearchResponse struct {
	Results []json.RawMessage
	Meta    Meta
	// Native holds top-level members of a pass-through provider body other
	// than results and meta. They are re-emitted unmodified.
	Native map[string]json.RawMessage
}

// EmptyResponse returns {results: [], meta: {count: 0, next_cursor: null}}.
func EmptyResponse() *SearchResponse {
	return &SearchResponse{Results: []json.RawMessage{}}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// MarshalJSON emits native members first, then overrides count and next_cursor.
func (m Meta) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.Native)+2)
	for k, v := range m.Native {
		out[k] = v
	}
	count := m.Count
	if count < 0 {
		count = 0
	}
	out["count"] = count
	out["next_cursor"] = m.NextCursor
	return json.Marshal(out)
}

// UnmarshalJSON reads count and next_cursor and keeps every other member verbatim.
// A missing or null count decodes as 0; a non-string next_cursor decodes as nil.
func (m *Meta) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*m = Meta{}
	if raw, ok := fields["count"]; ok {
		var count *int
		if err := json.Unmarshal(raw, &count); err == nil && count != nil && *count > 0 {
			m.Count = *count
		}
		delete(fields, "count")
	}
	if raw, ok := fields["next_cursor"]; ok {
		var next *string
		if err := json.Unmarshal(raw, &next); err == nil {
			m.NextCursor = next
		}
		delete(fields, "next_cursor")
	}
	if len(fields) > 0 {
		m.Native = fields
	}
	return nil
}

// MarshalJSON writes the envelope. A nil Results slice is written as [].
func (r SearchResponse) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Native)+2)
	for k, v := range r.Native {
		out[k] = v
	}
	results := r.Results
	if results == nil {
		results = []json.RawMessage{}
	}
	out["results"] = results
	out["meta"] = r.Meta
	return json.Marshal(out)
}

// UnmarshalJSON splits a provider body into results, meta and native members.
func (r *SearchResponse) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = SearchResponse{Results: []json.RawMessage{}}
	if raw, ok := fields["results"]; ok {
		var results []json.RawMessage
		if err := json.Unmarshal(raw, &results); err != nil {
			return err
		}
		if results != nil {
			r.Results = results
		}
		delete(fields, "results")
	}
	if raw, ok := fields["meta"]; ok {
		if string(raw) != "null" {
			if err := json.Unmarshal(raw, &r.Meta); err != nil {
				return err
			}
		}
		delete(fields, "meta")
	}
	if len(fields) > 0 {
		r.Native = fields
	}
	return nil
}
