package service

import (
	"time"

	"booking-router/core/cache"
	"booking-router/core/config"
	"booking-router/core/errors"
)

// Registry resolves an account's provider source to its adapter.
type Registry struct {
	adapters map[string]Adapter

	GHL      *GhlAdapter
	Calendly *CalendlyAdapter
	OnceHub  *OnceHubAdapter
	Tokens   *TokenManager
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: map[string]Adapter{}}
	for _, a := range adapters {
		r.adapters[a.Source()] = a
	}
	return r
}

// NewProviderRegistry builds the three adapters sharing one token manager.
func NewProviderRegistry(cfg *config.Config, store TokenStore, c cache.Cache) *Registry {
	timeout := cfg.Booking.ProviderTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	tokens := NewTokenManager(store, c, cfg.Booking.RefreshLockTTL)
	ghl := NewGhlAdapter(cfg.GHL, timeout).WithTokens(tokens)
	calendly := NewCalendlyAdapter(cfg.Calendly, timeout).WithTokens(tokens)
	onceHub := NewOnceHubAdapter(cfg.OnceHub, cfg.App.Name, timeout)
	tokens.Register(ghl.Source(), ghl)
	tokens.Register(calendly.Source(), calendly)

	r := NewRegistry(ghl, calendly, onceHub)
	r.GHL = ghl
	r.Calendly = calendly
	r.OnceHub = onceHub
	r.Tokens = tokens
	return r
}

func (r *Registry) Get(source string) (Adapter, error) {
	a, ok := r.adapters[source]
	if !ok {
		return nil, errors.NewAppError(errors.ErrProviderUnsupported, "unsupported provider: "+source, nil)
	}
	return a, nil
}
