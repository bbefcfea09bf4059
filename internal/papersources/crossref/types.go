// Package crossref provides the Crossref REST API adapter.
//
// Crossref pages with numeric offsets, so the adapter converts the proxy's
// cursor into an offset and derives the next cursor from total-results.
//
// API Documentation: https://api.crossref.org/swagger-ui/index.html
package crossref

import (
	"github.com/helixir/scholarly-search-proxy/internal/json"
)

// Response is the top-level Crossref works list response.
type Response struct {
	Status      string  `json:"status"`
	MessageType string  `json:"message-type"`
	Message     Message `json:"message"`
}

// Message holds the list payload. Items are kept raw and passed through.
type Message struct {
	TotalResults *int              `json:"total-results"`
	ItemsPerPage int               `json:"items-per-page"`
	Items        []json.RawMessage `json:"items"`
}

// Work holds the members of a work item that open-access ranking inspects.
type Work struct {
	DOI     string            `json:"DOI"`
	License []json.RawMessage `json:"license"`
	Link    []json.RawMessage `json:"link"`
}

// IsOpenAccess reports whether a raw work item carries a license or a
// full-text link.
func IsOpenAccess(item json.RawMessage) (bool, error) {
	var w Work
	if err := json.Unmarshal(item, &w); err != nil {
		return false, err
	}
	return len(w.License) > 0 || len(w.Link) > 0, nil
}
