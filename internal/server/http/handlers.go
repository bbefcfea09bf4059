package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/helixir/scholarly-search-proxy/internal/domain"
	"github.com/helixir/scholarly-search-proxy/internal/observability"
	"github.com/helixir/scholarly-search-proxy/internal/search"
)

// handleSearch handles GET {prefix}/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req, err := s.searcher.ParseRequest(search.Params{
		Source:  q.Get("source"),
		Entity:  q.Get("entity"),
		Query:   q.Get("q"),
		PerPage: q.Get("per_page"),
		Cursor:  q.Get("cursor"),
		Filter:  q.Get("filter"),
		Sort:    q.Get("sort"),
		Groups:  parseGroups(q),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	opts, err := parseSearchOptions(q)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp, err := s.searcher.Search(r.Context(), req, opts)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLookup handles GET {prefix}/works/{id} and GET {prefix}/authors/{id}.
// The id may itself contain slashes, as DOIs do.
func (s *Server) handleLookup(entity domain.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := url.PathUnescape(chi.URLParam(r, "*"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}

		record, err := s.searcher.Lookup(r.Context(), entity, id)
		if err != nil {
			var httpErr *domain.UpstreamHTTPError
			if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound && r.Context().Err() == nil {
				writeError(w, http.StatusNotFound, "record not found")
				return
			}
			s.writeDomainError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, record)
	}
}

// handleSources handles GET {prefix}/sources.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	providers := s.searcher.Providers()
	resp := listSourcesResponse{
		Sources: make([]sourceResponse, 0, len(providers)),
		Default: domain.DefaultProvider.String(),
	}
	for _, p := range providers {
		resp.Sources = append(resp.Sources, providerToResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseGroups reads repeated group parameters, each a "|"-separated list
// of alternative terms.
func parseGroups(q url.Values) [][]string {
	raw := q["group"]
	if len(raw) == 0 {
		return nil
	}
	groups := make([][]string, 0, len(raw))
	for _, g := range raw {
		groups = append(groups, search.SplitGroup(g))
	}
	return groups
}

// parseSearchOptions reads the optional oa_first override.
func parseSearchOptions(q url.Values) (search.Options, error) {
	raw := strings.TrimSpace(q.Get("oa_first"))
	if raw == "" {
		return search.Options{}, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return search.Options{}, domain.NewValidationError("oa_first", "must be a boolean")
	}
	return search.Options{OpenAccessFirst: &v}, nil
}

// writeDomainError maps a search error to an HTTP response.
// Nothing is written once the client has gone away.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	logger := observability.LoggerFromContext(r.Context(), s.logger)

	if r.Context().Err() != nil {
		logger.Debug().Err(err).Msg("client went away, response dropped")
		return
	}

	var httpErr *domain.UpstreamHTTPError
	switch {
	case errors.As(err, &httpErr):
		writeJSON(w, http.StatusBadGateway, upstreamErrorResponse{
			Error:   httpErr.Error(),
			Details: httpErr.Body,
		})
	case errors.Is(err, domain.ErrInvalidCursor):
		var ce *domain.InvalidCursorError
		if errors.As(err, &ce) {
			writeError(w, http.StatusBadRequest, ce.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid cursor")
		}
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrSourceDisabled):
		writeError(w, http.StatusServiceUnavailable, "source disabled")
	case errors.Is(err, domain.ErrUpstream):
		logger.Error().Err(err).Msg("upstream request failed")
		writeError(w, http.StatusInternalServerError, "upstream request failed")
	default:
		logger.Error().Err(err).Msg("search failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
