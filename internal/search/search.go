// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs planned queries against a product search provider and
// returns the raw hits in plan order. Providers validate responses at the
// boundary and only emit hits whose kind-specific fields are present.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pdiddy/product-research/pkg/types"
)

// ErrNoCredential is returned by providers constructed without an API key.
var ErrNoCredential = errors.New("search provider has no credential")

// Response is one provider call's validated hits.
type Response struct {
	Hits []types.RawSearchHit `json:"hits"`
}

// Provider searches a single product search surface (Strategy pattern).
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, resultCount int) (Response, error)
}

// DetailFetcher is implemented by providers that can fetch a richer
// per-item record, including individual reviews.
type DetailFetcher interface {
	ProductDetail(ctx context.Context, productID string) (*types.ProductDetail, error)
}

// ProviderError reports a non-success HTTP status from a provider.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Provider, e.Status, e.Body)
}

// New builds the provider selected by cfg.Provider.
func New(cfg types.SearchConfig) (Provider, error) {
	switch cfg.Provider {
	case types.ProviderWalmart, "":
		return NewWalmart(cfg), nil
	case types.ProviderWeb:
		return NewWeb(cfg), nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}
}

// Executor issues each planned query with bounded concurrency and a shared
// rate limit.
type Executor struct {
	Provider    Provider
	ResultCount int
	Concurrency int
	Limiter     *rate.Limiter
	Log         zerolog.Logger
}

// NewExecutor builds an executor from cfg. InterCallDelay becomes the
// limiter's refill interval with a burst of one, so consecutive calls are
// spaced at least that far apart.
func NewExecutor(p Provider, cfg types.SearchConfig, log zerolog.Logger) *Executor {
	return &Executor{
		Provider:    p,
		ResultCount: cfg.ResultCount,
		Concurrency: cfg.Concurrency,
		Limiter:     NewLimiter(cfg.InterCallDelay),
		Log:         log,
	}
}

// NewLimiter returns a token bucket releasing one call per interval.
// A non-positive interval disables limiting.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Execute runs every query in plan and concatenates the hits in query order.
// A failing query is logged and skipped. Execute fails only when ctx is done
// or the provider has no credential.
func (e *Executor) Execute(ctx context.Context, plan types.ResearchPlan) ([]types.RawSearchHit, error) {
	if e.Provider == nil {
		return nil, fmt.Errorf("no search provider configured")
	}

	n := e.ResultCount
	if n <= 0 {
		n = 20
	}
	limit := e.Concurrency
	if limit <= 0 {
		limit = 2
	}
	limiter := e.Limiter
	if limiter == nil {
		limiter = NewLimiter(0)
	}

	perQuery := make([][]types.RawSearchHit, len(plan.SearchQueries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for idx, query := range plan.SearchQueries {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}

			start := time.Now()
			resp, err := e.Provider.Search(gctx, query, n)
			if err != nil {
				if errors.Is(err, ErrNoCredential) || gctx.Err() != nil {
					return err
				}
				e.Log.Warn().Err(err).
					Str("provider", e.Provider.Name()).
					Str("query", query).
					Msg("search query failed, skipping")
				return nil
			}

			for i := range resp.Hits {
				resp.Hits[i].Query = query
			}
			perQuery[idx] = resp.Hits
			e.Log.Debug().
				Str("provider", e.Provider.Name()).
				Str("query", query).
				Int("hits", len(resp.Hits)).
				Dur("duration", time.Since(start)).
				Msg("search query complete")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	var all []types.RawSearchHit
	for _, hits := range perQuery {
		all = append(all, hits...)
	}
	return all, nil
}
