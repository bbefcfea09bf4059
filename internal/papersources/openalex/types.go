// Package openalex provides the OpenAlex adapter.
//
// OpenAlex is a free, open catalog of scholarly works and authors. Its search
// responses already use the {results, meta} envelope, so the adapter passes
// the provider body through and only reads meta.count and meta.next_cursor.
//
// API Documentation: https://docs.openalex.org/
package openalex

import (
	"bytes"

	"github.com/helixir/scholarly-search-proxy/internal/json"
)

// Work holds the members of a works result that open-access ranking inspects.
// Every other member of the result is left untouched in the raw item.
type Work struct {
	ID             string          `json:"id"`
	BestOALocation json.RawMessage `json:"best_oa_location"`
	OpenAccess     *OpenAccess     `json:"open_access"`
}

// OpenAccess is the work's open-access summary.
type OpenAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
	OAURL    string `json:"oa_url"`
}

// IsOpenAccess reports whether a raw works result has a best open-access
// location or is flagged open access.
func IsOpenAccess(item json.RawMessage) (bool, error) {
	var w Work
	if err := json.Unmarshal(item, &w); err != nil {
		return false, err
	}
	if loc := bytes.TrimSpace(w.BestOALocation); len(loc) > 0 && !bytes.Equal(loc, []byte("null")) {
		return true, nil
	}
	return w.OpenAccess != nil && w.OpenAccess.IsOA, nil
}
