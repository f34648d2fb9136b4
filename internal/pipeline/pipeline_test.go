// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/product-research/internal/cache"
	"github.com/pdiddy/product-research/internal/genai"
	"github.com/pdiddy/product-research/internal/search"
	"github.com/pdiddy/product-research/pkg/types"
)

// fakeProvider serves the same catalog hits for every query.
type fakeProvider struct {
	calls int32
	hits  []types.RawSearchHit
	err   error
	block bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(ctx context.Context, query string, _ int) (search.Response, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block {
		<-ctx.Done()
		return search.Response{}, ctx.Err()
	}
	if f.err != nil {
		return search.Response{}, f.err
	}
	hits := make([]types.RawSearchHit, len(f.hits))
	for i, h := range f.hits {
		h.Query = query
		hits[i] = h
	}
	return search.Response{Hits: hits}, nil
}

func catalogHits() []types.RawSearchHit {
	return []types.RawSearchHit{
		{Kind: types.HitCatalog, Title: "Budget Drip Coffee Maker", Link: "https://www.walmart.com/ip/1", Price: 19.99, Rating: 3.9, ReviewsCount: 40},
		{Kind: types.HitCatalog, Title: "Premium Espresso Machine", Link: "https://www.walmart.com/ip/2", Price: 89.00, Rating: 4.8, ReviewsCount: 900},
		{Kind: types.HitCatalog, Title: "Single Serve Brewer", Link: "https://www.walmart.com/ip/3", Price: 49.50, Rating: 4.4, ReviewsCount: 260},
	}
}

func testConfig() Config {
	cfg := types.DefaultConfig()
	cfg.Search.InterCallDelay = 0
	cfg.Research.FetchDetails = false
	cfg.Research.Timeout = 5 * time.Second
	return Config{Config: cfg, MessagesPerMinute: -1}
}

func newTestService(t *testing.T, cfg Config, p search.Provider, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithCompleter(genai.Disabled{})}, opts...)
	if p != nil {
		opts = append(opts, WithProvider(p))
	}
	svc, err := NewService(cfg, opts...)
	require.NoError(t, err)
	return svc
}

func TestConductDeepResearch_RankedAndCited(t *testing.T) {
	fp := &fakeProvider{hits: catalogHits()}
	svc := newTestService(t, testConfig(), fp)

	resp, err := svc.ConductDeepResearch(context.Background(), "coffee maker under $100")
	require.NoError(t, err)

	_, err = uuid.Parse(resp.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "coffee maker under $100", resp.Query)
	assert.Equal(t, Methodology, resp.Methodology)
	assert.Equal(t, string(types.PolicyEnhanced), resp.ScoringPolicy)
	assert.GreaterOrEqual(t, resp.TotalProcessingTime, int64(1))
	assert.NotEmpty(t, resp.ResearchSummary)

	require.Len(t, resp.Products, 3, "duplicate hits across queries collapse")
	require.Len(t, resp.Citations, len(resp.Products))
	for i, p := range resp.Products {
		assert.Equal(t, p.SourceURL, resp.Citations[i])
		assert.GreaterOrEqual(t, p.OverallScore, 0.0)
		assert.LessOrEqual(t, p.OverallScore, 1.0)
		assert.GreaterOrEqual(t, p.SentimentScore, 0.0)
		assert.LessOrEqual(t, p.SentimentScore, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, resp.Products[i-1].OverallScore, p.OverallScore)
		}
	}
}

func TestConductDeepResearch_NoResults(t *testing.T) {
	svc := newTestService(t, testConfig(), &fakeProvider{})

	resp, err := svc.ConductDeepResearch(context.Background(), "unobtainium widget")
	require.NoError(t, err)
	assert.NotNil(t, resp.Products)
	assert.Empty(t, resp.Products)
	assert.Empty(t, resp.Citations)
	assert.Contains(t, resp.ResearchSummary, "No matching products")
	assert.Equal(t, string(types.PolicyBasic), resp.ScoringPolicy)
}

func TestConductDeepResearch_NoSearchCredential(t *testing.T) {
	svc := newTestService(t, testConfig(), nil)
	assert.False(t, svc.HasCredentials())

	_, err := svc.ConductDeepResearch(context.Background(), "headphones")
	require.Error(t, err)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageSearch, se.Stage)
	assert.ErrorIs(t, err, ErrNoSearchCredential)
	assert.Equal(t, "deep research failed at search: no search credential configured", err.Error())
}

func TestConductDeepResearch_ProviderCredentialRejected(t *testing.T) {
	fp := &fakeProvider{err: search.ErrNoCredential}
	svc := newTestService(t, testConfig(), fp)

	_, err := svc.ConductDeepResearch(context.Background(), "headphones")
	assert.ErrorIs(t, err, ErrNoSearchCredential)
	assert.ErrorIs(t, err, search.ErrNoCredential)
}

func TestConductDeepResearch_Cancelled(t *testing.T) {
	svc := newTestService(t, testConfig(), &fakeProvider{hits: catalogHits()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ConductDeepResearch(ctx, "headphones")
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageExtractIntent, se.Stage)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConductDeepResearch_Deadline(t *testing.T) {
	cfg := testConfig()
	cfg.Research.Timeout = 20 * time.Millisecond
	svc := newTestService(t, cfg, &fakeProvider{block: true})

	_, err := svc.ConductDeepResearch(context.Background(), "headphones")
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageSearch, se.Stage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConductDeepResearch_UnknownPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.Ranking.Policy = "fancy"
	svc := newTestService(t, cfg, &fakeProvider{hits: catalogHits()})

	_, err := svc.ConductDeepResearch(context.Background(), "headphones")
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageRank, se.Stage)
}

func TestConductDeepResearch_CacheAvoidsRepeatCalls(t *testing.T) {
	fp := &fakeProvider{hits: catalogHits()}
	svc := newTestService(t, testConfig(), fp, WithCache(cache.NewMemory()))

	_, err := svc.ConductDeepResearch(context.Background(), "coffee maker")
	require.NoError(t, err)
	first := atomic.LoadInt32(&fp.calls)
	require.Positive(t, first)

	_, err = svc.ConductDeepResearch(context.Background(), "coffee maker")
	require.NoError(t, err)
	assert.Equal(t, first, atomic.LoadInt32(&fp.calls))
}

func TestConductDeepResearch_ModelReport(t *testing.T) {
	ai := genai.Func(func(context.Context, string) (string, error) {
		return "not json", nil
	})
	svc := newTestService(t, testConfig(), &fakeProvider{hits: catalogHits()}, WithCompleter(ai))

	resp, err := svc.ConductDeepResearch(context.Background(), "coffee maker")
	require.NoError(t, err)
	assert.Equal(t, "not json", resp.ResearchSummary)
}

func TestSetCredentials(t *testing.T) {
	svc := newTestService(t, testConfig(), nil)
	assert.False(t, svc.HasCredentials())

	require.NoError(t, svc.SetCredentials("search-key", ""))
	assert.True(t, svc.HasCredentials())
	assert.Equal(t, "search-key", svc.Config().Search.APIKey)

	require.NoError(t, svc.SetCredentials("", ""))
	assert.False(t, svc.HasCredentials())
}

func TestNewService_UnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Search.Provider = "altavista"
	_, err := NewService(cfg)
	assert.Error(t, err)
}

func TestStageError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&StageError{Stage: StageReport, Err: cause})
	assert.Equal(t, "deep research failed at report: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestElapsedMillis(t *testing.T) {
	assert.Equal(t, int64(1), elapsedMillis(time.Now()))
	assert.GreaterOrEqual(t, elapsedMillis(time.Now().Add(-1500*time.Microsecond)), int64(2))
}
