// Package domain provides the request, response and error types shared by the
// search proxy's adapters, ranking stage and HTTP surface.
package domain

import (
	"strings"
)

// Provider identifies one external scholarly-metadata source.
type Provider string

const (
	// ProviderOpenAlex is the works/author index.
	ProviderOpenAlex Provider = "openalex"
	// ProviderCrossref is the citation registry.
	ProviderCrossref Provider = "crossref"
	// ProviderArXiv is the preprint repository.
	ProviderArXiv Provider = "arxiv"
)

// DefaultProvider is used when a request does not name a source.
const DefaultProvider = ProviderOpenAlex

// AllProviders returns every supported provider in a stable order.
func AllProviders() []Provider {
	return []Provider{ProviderOpenAlex, ProviderCrossref, ProviderArXiv}
}

// IsValid reports whether p is one of the supported providers.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderOpenAlex, ProviderCrossref, ProviderArXiv:
		return true
	}
	return false
}

// SupportsEntity reports whether the provider can search the given entity.
// Only OpenAlex indexes authors.
func (p Provider) SupportsEntity(e Entity) bool {
	switch e {
	case EntityWorks:
		return p.IsValid()
	case EntityAuthors:
		return p == ProviderOpenAlex
	}
	return false
}

// String implements fmt.Stringer.
func (p Provider) String() string {
	return string(p)
}

// ParseProvider converts a query value into a Provider.
// An empty value selects DefaultProvider.
func ParseProvider(s string) (Provider, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultProvider, nil
	}
	p := Provider(s)
	if !p.IsValid() {
		return "", NewValidationError("source", "unsupported source: "+s)
	}
	return p, nil
}

// Entity is the kind of record being searched.
type Entity string

const (
	EntityWorks   Entity = "works"
	EntityAuthors Entity = "authors"
)

// DefaultEntity is used when a request does not name an entity.
const DefaultEntity = EntityWorks

// IsValid reports whether e is a known entity.
func (e Entity) IsValid() bool {
	return e == EntityWorks || e == EntityAuthors
}

// Label returns e for known entities and "other" for anything else, so
// free-form client values stay out of metric labels.
func (e Entity) Label() string {
	if e.IsValid() {
		return string(e)
	}
	return "other"
}

// ParseEntity normalizes a query value into an Entity.
// An empty value selects DefaultEntity. Unrecognized names are kept as
// given; no provider supports them, so searches for them come back empty.
func ParseEntity(s string) Entity {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultEntity
	}
	return Entity(s)
}
