// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/product-research/internal/cache"
	"github.com/pdiddy/product-research/pkg/types"
)

type countingDetailProvider struct {
	mockProvider
	detailCalls int32
}

func (c *countingDetailProvider) ProductDetail(_ context.Context, id string) (*types.ProductDetail, error) {
	atomic.AddInt32(&c.detailCalls, 1)
	return &types.ProductDetail{ID: id, Title: "Detail " + id, Price: 10}, nil
}

func TestCachedProvider_HitAvoidsSecondCall(t *testing.T) {
	mp := &mockProvider{}
	p := NewCached(mp, cache.NewMemory(), time.Minute, zerolog.Nop())

	first, err := p.Search(context.Background(), "Coffee", 20)
	require.NoError(t, err)
	second, err := p.Search(context.Background(), "  coffee ", 20)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, mp.calls, 1)

	_, err = p.Search(context.Background(), "coffee", 10)
	require.NoError(t, err)
	assert.Len(t, mp.calls, 2, "result count is part of the key")
}

func TestCachedProvider_ErrorsNotCached(t *testing.T) {
	mp := &mockProvider{fail: map[string]error{"bad": &ProviderError{Provider: "mock", Status: 500}}}
	p := NewCached(mp, cache.NewMemory(), time.Minute, zerolog.Nop())

	_, err := p.Search(context.Background(), "bad", 20)
	require.Error(t, err)
	_, err = p.Search(context.Background(), "bad", 20)
	require.Error(t, err)
	assert.Len(t, mp.calls, 2)
}

func TestCachedProvider_DetailPassthrough(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store, err := cache.NewRedis(context.Background(), types.CacheConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer store.Close()

	inner := &countingDetailProvider{}
	p := NewCached(inner, store, time.Minute, zerolog.Nop())

	df, ok := p.(DetailFetcher)
	require.True(t, ok, "cached provider must keep the detail capability")

	for i := 0; i < 2; i++ {
		d, err := df.ProductDetail(context.Background(), "42")
		require.NoError(t, err)
		assert.Equal(t, "Detail 42", d.Title)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.detailCalls))
}

func TestNewCached(t *testing.T) {
	mp := &mockProvider{}
	assert.Same(t, Provider(mp), NewCached(mp, nil, time.Minute, zerolog.Nop()))

	p := NewCached(mp, cache.NewMemory(), time.Minute, zerolog.Nop())
	_, ok := p.(DetailFetcher)
	assert.False(t, ok)
	assert.Equal(t, "mock", p.Name())
}
