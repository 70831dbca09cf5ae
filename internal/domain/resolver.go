package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Attempt outcomes reported to an Observer.
const (
	OutcomeFound     = "found"
	OutcomeEmpty     = "empty"
	OutcomeError     = "error"
	OutcomeSkipped   = "skipped"
	OutcomeDuplicate = "duplicate"
)

// NotFoundReason is returned to callers when every strategy came back empty.
const NotFoundReason = "address could not be geocoded, coordinates can be entered manually"

// Observer receives one event per strategy in a resolution.
type Observer interface {
	ObserveStrategy(strategy, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveStrategy(string, string) {}

// Resolver turns free-text addresses into coordinates by walking an ordered
// chain of strategies against a Provider. It holds no per-request state and
// is safe for concurrent use.
type Resolver struct {
	provider    Provider
	strategies  []Strategy
	callTimeout time.Duration
	observer    Observer
	logger      *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCallTimeout bounds each provider call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.callTimeout = d }
}

// WithObserver installs an observer for strategy attempts.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithStrategies replaces the default strategy chain.
func WithStrategies(s []Strategy) Option {
	return func(r *Resolver) { r.strategies = s }
}

// NewResolver creates a Resolver using DefaultStrategies.
func NewResolver(provider Provider, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		provider:   provider,
		strategies: DefaultStrategies(),
		observer:   nopObserver{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve geocodes address. It returns ErrInvalidInput for a blank address
// and a *ProviderError (wrapped) when the provider fails; both stop the chain.
// Exhausting every strategy is not an error: the result has Found == false.
func (r *Resolver) Resolve(ctx context.Context, address string) (GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if NormalizeAddress(address) == "" {
		return GeocodeResult{}, ErrInvalidInput
	}

	attempted := make(map[string]struct{}, len(r.strategies))
	for _, s := range r.strategies {
		query, ok := s.Rewrite(address)
		if !ok || query == "" {
			r.logger.Debug("geocode strategy skipped", "strategy", s.Name, "address", address)
			r.observer.ObserveStrategy(s.Name, OutcomeSkipped)
			continue
		}
		if _, seen := attempted[query]; seen {
			r.logger.Debug("geocode strategy skipped, query already tried", "strategy", s.Name, "query", query)
			r.observer.ObserveStrategy(s.Name, OutcomeDuplicate)
			continue
		}
		attempted[query] = struct{}{}

		r.logger.Info("geocode strategy attempt", "strategy", s.Name, "query", query)
		candidates, err := r.search(ctx, query)
		if err != nil {
			r.observer.ObserveStrategy(s.Name, OutcomeError)
			r.logger.Warn("geocode provider failed", "strategy", s.Name, "query", query, "error", err)
			return GeocodeResult{}, fmt.Errorf("strategy %s: %w", s.Name, asProviderError(err))
		}
		if len(candidates) == 0 {
			r.observer.ObserveStrategy(s.Name, OutcomeEmpty)
			continue
		}

		r.observer.ObserveStrategy(s.Name, OutcomeFound)
		result := foundResult(candidates[0], s.Name, query)
		r.logger.Info("geocode resolved",
			"strategy", s.Name,
			"query", query,
			"lat", result.Latitude,
			"lng", result.Longitude,
		)
		return result, nil
	}

	r.logger.Info("geocode not found", "address", address, "attempts", len(attempted))
	return notFoundResult(NotFoundReason), nil
}

func (r *Resolver) search(ctx context.Context, query string) ([]Candidate, error) {
	if r.callTimeout <= 0 {
		return r.provider.Search(ctx, query)
	}
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	return r.provider.Search(callCtx, query)
}

func asProviderError(err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Err: err}
}
