// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a deep research request through every stage, from
// intent extraction to the final report, and answers chat messages on top
// of it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/product-research/internal/cache"
	"github.com/pdiddy/product-research/internal/extract"
	"github.com/pdiddy/product-research/internal/genai"
	"github.com/pdiddy/product-research/internal/intent"
	"github.com/pdiddy/product-research/internal/plan"
	"github.com/pdiddy/product-research/internal/rank"
	"github.com/pdiddy/product-research/internal/report"
	"github.com/pdiddy/product-research/internal/search"
	"github.com/pdiddy/product-research/internal/sentiment"
	"github.com/pdiddy/product-research/pkg/types"
)

// Methodology describes the stages every response went through.
const Methodology = "Deep Research: Web search via SerpAPI → Content extraction → Sentiment analysis → Ranking → Report generation"

// DefaultMessagesPerMinute caps HandleMessage calls when Config leaves it unset.
const DefaultMessagesPerMinute = 60

// Stage names one step of a research run.
type Stage string

const (
	StageExtractIntent Stage = "extract_intent"
	StagePlan          Stage = "plan"
	StageSearch        Stage = "search"
	StageExtract       Stage = "extract"
	StageRank          Stage = "rank"
	StageReport        Stage = "report"
	StageDone          Stage = "done"
)

var (
	// ErrNoSearchCredential is returned when a run reaches the search stage
	// without a search provider key.
	ErrNoSearchCredential = errors.New("no search credential configured")

	// ErrRateLimited is returned by HandleMessage when the per-minute
	// message budget is spent.
	ErrRateLimited = errors.New("rate limit exceeded, try again shortly")
)

// StageError records the stage at which a run failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("deep research failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Config carries the application settings plus service-level limits.
type Config struct {
	types.Config

	// MessagesPerMinute caps HandleMessage calls (default 60). Negative
	// disables the cap.
	MessagesPerMinute int
}

// Option overrides a collaborator NewService would otherwise build from
// configuration.
type Option func(*Service)

// WithProvider sets the search provider. It survives SetCredentials.
func WithProvider(p search.Provider) Option {
	return func(s *Service) {
		s.provider = p
		s.fixedProvider = true
	}
}

// WithCompleter sets the generative text service. It survives SetCredentials.
func WithCompleter(c genai.Completer) Option {
	return func(s *Service) {
		s.ai = c
		s.fixedAI = true
	}
}

// WithCache sets the provider response cache.
func WithCache(store cache.Store) Option {
	return func(s *Service) { s.cache = store }
}

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// Service is the assistant core. It is safe for concurrent use; each run
// works on a snapshot of the collaborators taken when it starts.
type Service struct {
	mu            sync.RWMutex
	cfg           types.Config
	provider      search.Provider
	ai            genai.Completer
	cache         cache.Store
	fixedProvider bool
	fixedAI       bool

	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewService builds a service from cfg. Collaborators not supplied through
// opts are constructed from the configuration.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	s := &Service{cfg: cfg.Config, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	perMinute := cfg.MessagesPerMinute
	if perMinute == 0 {
		perMinute = DefaultMessagesPerMinute
	}
	if perMinute < 0 {
		s.limiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}

	if err := s.rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetCredentials replaces the search and generative text keys and rebuilds
// the collaborators that depend on them. An empty key disables its service.
func (s *Service) SetCredentials(searchKey, generativeKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Search.APIKey = searchKey
	s.cfg.GenAI.APIKey = generativeKey
	return s.rebuildLocked()
}

// HasCredentials reports whether a research run can reach the search
// provider. Generative text is optional.
func (s *Service) HasCredentials() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fixedProvider || s.cfg.Search.APIKey != ""
}

// Config returns a copy of the active configuration.
func (s *Service) Config() types.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Service) rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked()
}

func (s *Service) rebuildLocked() error {
	if !s.fixedProvider {
		p, err := search.New(s.cfg.Search)
		if err != nil {
			return fmt.Errorf("building search provider: %w", err)
		}
		s.provider = p
	}
	if !s.fixedAI {
		c, err := genai.New(s.cfg.GenAI)
		if err != nil {
			return fmt.Errorf("building generative text client: %w", err)
		}
		s.ai = c
	}
	return nil
}

// run is the immutable view of the service one research run works with.
type run struct {
	id        string
	cfg       types.Config
	provider  search.Provider
	ai        genai.Completer
	canSearch bool
	log       zerolog.Logger
}

func (s *Service) snapshot() run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id := uuid.NewString()
	p := s.provider
	if p != nil {
		p = search.NewCached(p, s.cache, s.cfg.Cache.TTL, s.log)
	}
	return run{
		id:        id,
		cfg:       s.cfg,
		provider:  p,
		ai:        s.ai,
		canSearch: s.fixedProvider || s.cfg.Search.APIKey != "",
		log:       s.log.With().Str("run_id", id).Logger(),
	}
}

// ConductDeepResearch runs query through every stage and returns the
// ranked products with their report. A run that finds nothing still
// succeeds with an empty product list.
//
// A missing generative text credential is absorbed by each stage's
// rule-based fallback. A missing search credential is not: no stage can
// produce products without the provider, so the run fails at StageSearch
// with a StageError wrapping ErrNoSearchCredential.
func (s *Service) ConductDeepResearch(ctx context.Context, query string) (*types.DeepResearchResponse, error) {
	start := time.Now()
	r := s.snapshot()

	if r.cfg.Research.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Research.Timeout)
		defer cancel()
	}

	r.log.Info().Str("query", query).Msg("deep research started")

	var ri types.ResearchIntent
	err := r.stage(ctx, StageExtractIntent, func() error {
		ex := intent.Extractor{AI: r.ai, Log: r.log}
		ri = ex.ExtractIntent(ctx, query)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var rp types.ResearchPlan
	err = r.stage(ctx, StagePlan, func() error {
		strategy := r.cfg.Research.Strategy
		if strategy == "" {
			strategy = plan.StrategyFor(r.cfg.Search.Provider)
		}
		rp = plan.Plan(ri, strategy, r.cfg.Research.ExpectedResults)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var hits []types.RawSearchHit
	err = r.stage(ctx, StageSearch, func() error {
		if !r.canSearch || r.provider == nil {
			return ErrNoSearchCredential
		}
		var err error
		hits, err = search.NewExecutor(r.provider, r.cfg.Search, r.log).Execute(ctx, rp)
		if errors.Is(err, search.ErrNoCredential) {
			return fmt.Errorf("%w: %w", ErrNoSearchCredential, err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	analyzer := &sentiment.Analyzer{
		AI:          r.ai,
		CharLimit:   r.cfg.Research.PromptCharLimit,
		Concurrency: r.cfg.Research.DetailConcurrency,
		Log:         r.log,
	}

	var products []types.ProductResearchResult
	err = r.stage(ctx, StageExtract, func() error {
		ex := extract.Extractor{
			Reviews:     analyzer,
			Concurrency: r.cfg.Research.DetailConcurrency,
			MaxReviews:  r.cfg.Research.MaxReviewsPerProduct,
			Log:         r.log,
		}
		if df, ok := r.provider.(search.DetailFetcher); ok && r.cfg.Research.FetchDetails {
			ex.Details = df
		}
		var err error
		products, err = ex.Extract(ctx, hits)
		return err
	})
	if err != nil {
		return nil, err
	}

	var policy rank.Policy
	err = r.stage(ctx, StageRank, func() error {
		if err := analyzer.Enrich(ctx, products); err != nil {
			return err
		}
		var err error
		policy, err = rank.PolicyFor(r.cfg.Ranking.Policy, products)
		if err != nil {
			return err
		}
		products = rank.Rank(products, policy)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var summary string
	err = r.stage(ctx, StageReport, func() error {
		syn := report.Synthesizer{AI: r.ai, TopN: r.cfg.Research.ReportTopN, Log: r.log}
		summary = syn.Generate(ctx, query, products, policy)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if products == nil {
		products = []types.ProductResearchResult{}
	}
	resp := &types.DeepResearchResponse{
		RunID:               r.id,
		Query:               query,
		Products:            products,
		ResearchSummary:     summary,
		Citations:           report.Citations(products),
		Methodology:         Methodology,
		ScoringPolicy:       string(policy.Name()),
		TotalProcessingTime: elapsedMillis(start),
	}
	if err := report.ValidateCitations(resp); err != nil {
		r.log.Warn().Err(err).Msg("citations out of step with products")
	}

	r.log.Info().
		Str("stage", string(StageDone)).
		Int("products", len(products)).
		Str("policy", resp.ScoringPolicy).
		Int64("total_ms", resp.TotalProcessingTime).
		Msg("deep research complete")
	return resp, nil
}

// stage runs fn and wraps any failure, including a context that expired
// while fn ran, in a StageError.
func (r run) stage(ctx context.Context, st Stage, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: st, Err: err}
	}

	start := time.Now()
	err := fn()
	if err == nil {
		err = ctx.Err()
	} else if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	if err != nil {
		r.log.Error().Err(err).Str("stage", string(st)).Msg("stage failed")
		return &StageError{Stage: st, Err: err}
	}

	r.log.Info().
		Str("stage", string(st)).
		Dur("duration", time.Since(start)).
		Msg("stage complete")
	return nil
}

// elapsedMillis rounds the wall time since start up to whole milliseconds,
// never reporting less than one.
func elapsedMillis(start time.Time) int64 {
	d := time.Since(start)
	ms := int64((d + time.Millisecond - 1) / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return ms
}
