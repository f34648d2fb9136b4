// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/product-research/pkg/types"
)

// serveSerp points serpAPIBase at handler for the duration of the test.
func serveSerp(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(handler)
	old := serpAPIBase
	serpAPIBase = ts.URL
	t.Cleanup(func() {
		serpAPIBase = old
		ts.Close()
	})
}

func walmartCfg() types.SearchConfig {
	cfg := types.DefaultConfig().Search
	cfg.APIKey = "serp-test"
	return cfg
}

func TestWalmartSearchRequestParams(t *testing.T) {
	var captured *http.Request
	serveSerp(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, `{"organic_results":[]}`)
	})

	_, err := NewWalmart(walmartCfg()).Search(context.Background(), "coffee maker", 20)
	require.NoError(t, err)

	q := captured.URL.Query()
	assert.Equal(t, "walmart", q.Get("engine"))
	assert.Equal(t, "coffee maker", q.Get("query"))
	assert.Equal(t, "20", q.Get("ps"))
	assert.Equal(t, "best_match", q.Get("sort"))
	assert.Equal(t, "desktop", q.Get("device"))
	assert.Equal(t, "serp-test", q.Get("api_key"))
	assert.Equal(t, "product-research/0.1", captured.Header.Get("User-Agent"))
}

func TestWalmartSearchParsesCatalogHits(t *testing.T) {
	serveSerp(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"organic_results":[
			{"us_item_id":"123","product_id":"p1","title":"Keurig <b>K-Mini</b>","thumbnail":"https://i/1.jpg",
			 "rating":4.6,"reviews":"2,310","seller_name":"Walmart.com",
			 "primary_offer":{"offer_price":79.0},"product_page_url":"https://www.walmart.com/ip/123",
			 "description":"Single &amp; serve","out_of_stock":false},
			{"product_id":987,"title":"No URL product","primary_offer":{"offer_price":10}},
			{"title":"","product_page_url":"https://www.walmart.com/ip/1"},
			{"product_id":"555","title":"Unrated","primary_offer":{"offer_price":"$12.50"},"product_page_url":"https://www.walmart.com/ip/555","out_of_stock":true}
		]}`)
	})

	resp, err := NewWalmart(walmartCfg()).Search(context.Background(), "coffee", 20)
	require.NoError(t, err)
	require.Len(t, resp.Hits, 2)

	h := resp.Hits[0]
	assert.Equal(t, types.HitCatalog, h.Kind)
	assert.Equal(t, "Keurig K-Mini", h.Title)
	assert.Equal(t, "123", h.ProductID)
	assert.Equal(t, 79.0, h.Price)
	assert.Equal(t, 4.6, h.Rating)
	assert.Equal(t, 2310, h.ReviewsCount)
	assert.Equal(t, WalmartSource, h.Source)
	assert.Equal(t, "Single & serve", h.Description)

	assert.Equal(t, "555", resp.Hits[1].ProductID)
	assert.Equal(t, 12.5, resp.Hits[1].Price)
	assert.True(t, resp.Hits[1].OutOfStock)
}

func TestWalmartSearchErrors(t *testing.T) {
	t.Run("non-2xx is a ProviderError", func(t *testing.T) {
		serveSerp(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"Invalid API key"}`)
		})
		_, err := NewWalmart(walmartCfg()).Search(context.Background(), "x", 20)
		var pe *ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, http.StatusUnauthorized, pe.Status)
		assert.Contains(t, pe.Body, "Invalid API key")
	})

	t.Run("malformed body", func(t *testing.T) {
		serveSerp(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"organic_results":`)
		})
		_, err := NewWalmart(walmartCfg()).Search(context.Background(), "x", 20)
		assert.ErrorContains(t, err, "parsing walmart response")
	})

	t.Run("missing credential", func(t *testing.T) {
		_, err := NewWalmart(types.SearchConfig{}).Search(context.Background(), "x", 20)
		assert.ErrorIs(t, err, ErrNoCredential)
	})
}

func TestWalmartProductDetail(t *testing.T) {
	var captured *http.Request
	serveSerp(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, `{
			"product":{"us_item_id":"123","title":"Keurig K-Mini","about_this_item":["Compact","Brews 6-12oz"],
				"thumbnail":"https://i/1.jpg","price":79.99,"rating":4.5,"reviews_count":1200,
				"out_of_stock":false,"shipping_info":"Free 2-day","seller_name":"",
				"specifications":[{"name":"Color","value":"Black"},{"key":"Capacity","description":"12 oz"},{"name":"Empty"}]},
			"reviews":[
				{"id":"r1","title":"Love it","text":"Great coffee every morning","rating":5,"date":"2025-01-02","reviewer_name":"Sam","verified_purchase":true,"helpful_votes":4},
				{"review_text":"Broke after a week","rating":1,"review_date":"2025-02-03"}
			]}`)
	})

	d, err := NewWalmart(walmartCfg()).ProductDetail(context.Background(), "123")
	require.NoError(t, err)

	q := captured.URL.Query()
	assert.Equal(t, "walmart_product", q.Get("engine"))
	assert.Equal(t, "123", q.Get("product_id"))

	assert.Equal(t, "123", d.ID)
	assert.Equal(t, "Compact Brews 6-12oz", d.Description)
	assert.Equal(t, []string{"https://i/1.jpg"}, d.Images)
	assert.Equal(t, 79.99, d.Price)
	assert.Equal(t, 1200, d.ReviewCount)
	assert.True(t, d.InStock)
	assert.Equal(t, WalmartSource, d.Seller)
	assert.Equal(t, []types.Specification{{Name: "Color", Value: "Black"}, {Name: "Capacity", Value: "12 oz"}}, d.Specifications)

	require.Len(t, d.Reviews, 2)
	assert.True(t, d.Reviews[0].Verified)
	assert.Equal(t, 4, d.Reviews[0].HelpfulVotes)
	assert.Equal(t, "Broke after a week", d.Reviews[1].Text)
	assert.Equal(t, "Anonymous", d.Reviews[1].ReviewerName)
	assert.Equal(t, "2025-02-03", d.Reviews[1].Date)
	assert.Equal(t, "123-1", d.Reviews[1].ID)
}

func TestWalmartProductDetail_NoProduct(t *testing.T) {
	serveSerp(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"product":{"title":""}}`)
	})
	_, err := NewWalmart(walmartCfg()).ProductDetail(context.Background(), "9")
	assert.ErrorContains(t, err, "no product")
}

func TestFlexDecoding(t *testing.T) {
	var s flexString
	require.NoError(t, s.UnmarshalJSON([]byte(`4.5`)))
	assert.Equal(t, flexString("4.5"), s)
	require.NoError(t, s.UnmarshalJSON([]byte(`"$10"`)))
	assert.Equal(t, flexString("$10"), s)
	require.NoError(t, s.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, flexString(""), s)
	assert.Error(t, s.UnmarshalJSON([]byte(`{"a":1}`)))

	var f flexFloat
	require.NoError(t, f.UnmarshalJSON([]byte(`"$1,299.00"`)))
	assert.Equal(t, flexFloat(1299), f)
	require.NoError(t, f.UnmarshalJSON([]byte(`"n/a"`)))
	assert.Equal(t, flexFloat(0), f)
}
