// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/product-research/internal/cache"
	"github.com/pdiddy/product-research/pkg/types"
)

// CachedProvider serves repeated queries from a cache.Store. Cache failures
// are logged and the call goes to the wrapped provider.
type CachedProvider struct {
	Inner Provider
	Store cache.Store
	TTL   time.Duration
	Log   zerolog.Logger
}

// cachedDetailProvider adds the DetailFetcher half when the wrapped provider
// supports it.
type cachedDetailProvider struct {
	*CachedProvider
	detail DetailFetcher
}

// NewCached wraps p with store. The result implements DetailFetcher exactly
// when p does. A nil store returns p unchanged.
func NewCached(p Provider, store cache.Store, ttl time.Duration, log zerolog.Logger) Provider {
	if store == nil {
		return p
	}
	cp := &CachedProvider{Inner: p, Store: store, TTL: ttl, Log: log}
	if df, ok := p.(DetailFetcher); ok {
		return &cachedDetailProvider{CachedProvider: cp, detail: df}
	}
	return cp
}

// Name returns the wrapped provider's name.
func (c *CachedProvider) Name() string { return c.Inner.Name() }

// Search returns the cached response for (provider, count, query) or calls
// the wrapped provider and stores its response.
func (c *CachedProvider) Search(ctx context.Context, query string, resultCount int) (Response, error) {
	key := fmt.Sprintf("search:%s:%d:%s", c.Inner.Name(), resultCount, strings.ToLower(strings.TrimSpace(query)))

	var resp Response
	if c.load(ctx, key, &resp) {
		return resp, nil
	}

	resp, err := c.Inner.Search(ctx, query, resultCount)
	if err != nil {
		return Response{}, err
	}
	c.save(ctx, key, resp)
	return resp, nil
}

func (c *cachedDetailProvider) ProductDetail(ctx context.Context, productID string) (*types.ProductDetail, error) {
	key := fmt.Sprintf("detail:%s:%s", c.Inner.Name(), productID)

	var d types.ProductDetail
	if c.load(ctx, key, &d) {
		return &d, nil
	}

	dp, err := c.detail.ProductDetail(ctx, productID)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, dp)
	return dp, nil
}

func (c *CachedProvider) load(ctx context.Context, key string, v any) bool {
	data, err := c.Store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			c.Log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.Log.Warn().Err(err).Str("key", key).Msg("discarding corrupt cache entry")
		return false
	}
	c.Log.Debug().Str("key", key).Msg("cache hit")
	return true
}

func (c *CachedProvider) save(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Store.Set(ctx, key, data, c.TTL); err != nil {
		c.Log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
