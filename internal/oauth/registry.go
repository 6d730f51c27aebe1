package oauth

import (
	"fmt"

	"github.com/yhsong/finbell/internal/config"
	"github.com/yhsong/finbell/internal/domain"
)

// Registry holds the closed set of provider adapters. It is built once at
// startup and never mutated afterwards, so lookups need no locking.
type Registry struct {
	adapters map[domain.Provider]Adapter
}

// NewRegistry builds the registry from configuration. Every supported
// provider gets an adapter; providers without configured credentials still
// resolve, their upstream calls just fail.
func NewRegistry(cfg config.OAuthConfig) *Registry {
	adapters := []Adapter{
		NewGoogleAdapter(cfg),
		NewKakaoAdapter(cfg),
		NewDiscordAdapter(cfg),
		NewAppleAdapter(cfg),
	}

	r := &Registry{adapters: make(map[domain.Provider]Adapter, len(adapters))}
	for _, adapter := range adapters {
		r.adapters[adapter.Provider()] = adapter
	}
	return r
}

// Lookup resolves a provider name from the URL path to its adapter.
func (r *Registry) Lookup(name string) (Adapter, error) {
	adapter, ok := r.adapters[domain.Provider(name)]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", name, ErrUnknownProvider)
	}
	return adapter, nil
}
