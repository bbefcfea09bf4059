package httpserver

import "github.com/helixir/scholarly-search-proxy/internal/domain"

type errorResponse struct {
	Error string `json:"error"`
}

// upstreamErrorResponse is the 502 body. Details carries the provider's
// response text and is always present, empty or not.
type upstreamErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

type healthResponse struct {
	Status  string   `json:"status"`
	Sources []string `json:"sources,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type sourceResponse struct {
	Name     string   `json:"name"`
	Entities []string `json:"entities"`
}

type listSourcesResponse struct {
	Sources []sourceResponse `json:"sources"`
	Default string           `json:"default"`
}

func providerNames(providers []domain.Provider) []string {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.String()
	}
	return names
}

func providerToResponse(p domain.Provider) sourceResponse {
	entities := make([]string, 0, 2)
	for _, e := range []domain.Entity{domain.EntityWorks, domain.EntityAuthors} {
		if p.SupportsEntity(e) {
			entities = append(entities, string(e))
		}
	}
	return sourceResponse{Name: p.String(), Entities: entities}
}
