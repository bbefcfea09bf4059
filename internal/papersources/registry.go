package papersources

import (
	"sort"
	"sync"

	"github.com/helixir/scholarly-search-proxy/internal/domain"
)

// Registry maps providers to their adapters.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	sources map[domain.Provider]PaperSource
}

// NewRegistry creates a new registry with an empty source map.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[domain.Provider]PaperSource),
	}
}

// Register adds a source to the registry.
// If a source for the same provider already exists, it is replaced.
func (r *Registry) Register(source PaperSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source.Provider()] = source
}

// Get returns the source registered for provider, or nil if none is.
func (r *Registry) Get(provider domain.Provider) PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[provider]
}

// Providers returns the registered providers sorted by name.
func (r *Registry) Providers() []domain.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]domain.Provider, 0, len(r.sources))
	for p := range r.sources {
		providers = append(providers, p)
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i] < providers[j] })
	return providers
}

// EnabledSources returns only enabled sources, ordered by provider name.
// The returned slice is a snapshot.
func (r *Registry) EnabledSources() []PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]PaperSource, 0, len(r.sources))
	for _, source := range r.sources {
		if source.IsEnabled() {
			sources = append(sources, source)
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Provider() < sources[j].Provider() })
	return sources
}
