// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns raw search hits into normalized products with
// reviews. Hits without a price or rating signal are dropped. Catalog hits
// are upgraded through a per-item detail fetch when the provider supports
// one.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/product-research/internal/search"
	"github.com/pdiddy/product-research/internal/sentiment"
	"github.com/pdiddy/product-research/pkg/types"
)

const (
	// DefaultMaxReviews caps the detail reviews analyzed per product.
	DefaultMaxReviews = 10

	syntheticConfidence = 0.8

	detailURLPrefix = "https://www.walmart.com/ip/"
)

// ReviewScorer labels a single review. *sentiment.Analyzer satisfies it.
type ReviewScorer interface {
	AnalyzeReview(ctx context.Context, text string, rating float64) sentiment.Result
}

// Extractor converts hits into products.
type Extractor struct {
	// Details enables the per-item detail path for catalog hits. Nil
	// keeps every product at hit granularity.
	Details search.DetailFetcher

	// Reviews scores detail reviews as they are extracted. Nil leaves
	// them unlabeled for a later pass.
	Reviews ReviewScorer

	// Concurrency caps in-flight detail fetches (default 2).
	Concurrency int

	// MaxReviews caps reviews kept per detail product (default 10).
	MaxReviews int

	Log zerolog.Logger
}

// Extract converts hits to products, drops duplicates, and upgrades catalog
// products through the detail path. A failed detail fetch keeps the coarse
// product. Extract fails only when ctx is done.
func (e *Extractor) Extract(ctx context.Context, hits []types.RawSearchHit) ([]types.ProductResearchResult, error) {
	products := make([]types.ProductResearchResult, 0, len(hits))
	kinds := make([]types.HitKind, 0, len(hits))
	for _, h := range hits {
		if p, ok := FromHit(h); ok {
			products = append(products, p)
			kinds = append(kinds, h.Kind)
		}
	}

	keep := dedupIndexes(products)
	deduped := make([]types.ProductResearchResult, len(keep))
	dedupedKinds := make([]types.HitKind, len(keep))
	for i, k := range keep {
		deduped[i] = products[k]
		dedupedKinds[i] = kinds[k]
	}
	if dropped := len(products) - len(deduped); dropped > 0 {
		e.Log.Debug().Int("duplicates", dropped).Msg("dropped duplicate products")
	}

	if e.Details == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return deduped, nil
	}

	limit := e.Concurrency
	if limit <= 0 {
		limit = 2
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range deduped {
		if dedupedKinds[i] != types.HitCatalog || deduped[i].ProductID == "" {
			continue
		}
		g.Go(func() error {
			d, err := e.Details.ProductDetail(gctx, deduped[i].ProductID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				e.Log.Warn().Err(err).
					Str("product_id", deduped[i].ProductID).
					Msg("detail fetch failed, keeping search result")
				return nil
			}
			deduped[i] = e.fromDetail(gctx, d)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching product details: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return deduped, nil
}

// FromHit normalizes one hit. Structured price and rating fields win over
// text parsing. Unpriced products get types.UnpricedSentinel and unrated
// ones types.DefaultRating. It reports false when the hit has neither a
// price nor a rating signal.
func FromHit(h types.RawSearchHit) (types.ProductResearchResult, bool) {
	price := h.Price
	if price <= 0 {
		text := h.PriceText
		if text == "" {
			text = h.Snippet
		}
		price, _ = ParsePrice(text)
	}

	rating := h.Rating
	if rating <= 0 {
		if h.RatingText != "" {
			rating, _ = parseRatingField(h.RatingText)
		} else {
			rating, _ = ParseRating(h.Snippet)
		}
	}

	rating = ClampRating(rating)

	if price <= 0 && rating <= 0 {
		return types.ProductResearchResult{}, false
	}

	p := types.ProductResearchResult{
		Name:           h.Title,
		Price:          price,
		Rating:         rating,
		Description:    firstNonEmpty(h.Snippet, h.Description, h.Title),
		ImageURL:       h.Thumbnail,
		Source:         SourceLabel(h.Link),
		SourceURL:      h.Link,
		SentimentScore: types.NeutralScore,
		OverallScore:   types.NeutralScore,
		ProductID:      h.ProductID,
		ReviewCount:    h.ReviewsCount,
		Seller:         h.Seller,
	}
	if h.Kind == types.HitCatalog {
		p.Source = firstNonEmpty(h.Source, search.WalmartSource)
		p.Availability = types.InStock
		if h.OutOfStock {
			p.Availability = types.OutOfStock
		}
	}
	if rating > 0 {
		p.Reviews = []types.ReviewData{SyntheticReview(h.Kind, rating, h.ReviewsCount)}
	}
	if p.Price <= 0 {
		p.Price = types.UnpricedSentinel
	}
	if p.Rating <= 0 {
		p.Rating = types.DefaultRating
	}
	return p, true
}

// SyntheticReview stands in for a missing review payload. Its label comes
// from the rating thresholds and its confidence is fixed at 0.8.
func SyntheticReview(kind types.HitKind, rating float64, reviewCount int) types.ReviewData {
	r := types.ReviewData{
		Text:   syntheticText(kind, rating, reviewCount),
		Rating: rating,
	}
	r.SetSentiment(sentiment.LabelForRating(rating), syntheticConfidence)
	return r
}

func syntheticText(kind types.HitKind, rating float64, reviewCount int) string {
	if kind == types.HitCatalog && reviewCount > 0 {
		switch {
		case rating >= 4.5:
			return fmt.Sprintf("Excellent product! Highly recommended. %d customers agree.", reviewCount)
		case rating >= 4.0:
			return fmt.Sprintf("Great product with good value. %d reviews.", reviewCount)
		case rating >= 3.5:
			return fmt.Sprintf("Good product overall. %d customer reviews.", reviewCount)
		default:
			return fmt.Sprintf("Average product. Based on %d reviews.", reviewCount)
		}
	}
	switch {
	case rating >= 4:
		return "Great product, highly recommended!"
	case rating >= 3:
		return "Good value for money."
	default:
		return "Average product."
	}
}

// fromDetail builds a product from a detail record, scoring up to
// MaxReviews reviews.
func (e *Extractor) fromDetail(ctx context.Context, d *types.ProductDetail) types.ProductResearchResult {
	limit := e.MaxReviews
	if limit <= 0 {
		limit = DefaultMaxReviews
	}
	src := d.Reviews
	if len(src) > limit {
		src = src[:limit]
	}

	reviews := make([]types.ReviewData, 0, len(src))
	for _, dr := range src {
		rating := ClampRating(dr.Rating)
		r := types.ReviewData{
			Text:         dr.Text,
			Rating:       rating,
			ReviewTitle:  dr.Title,
			ReviewDate:   dr.Date,
			ReviewerName: dr.ReviewerName,
			HelpfulVotes: dr.HelpfulVotes,
			Verified:     dr.Verified,
		}
		if e.Reviews != nil {
			res := e.Reviews.AnalyzeReview(ctx, dr.Text, rating)
			r.SetSentiment(res.Label, res.Confidence)
		}
		reviews = append(reviews, r)
	}

	p := types.ProductResearchResult{
		Name:           d.Title,
		Price:          d.Price,
		Rating:         ClampRating(d.Rating),
		Description:    firstNonEmpty(d.Description, d.Title),
		Source:         search.WalmartSource,
		SourceURL:      detailURLPrefix + d.ID,
		Reviews:        reviews,
		SentimentScore: sentiment.AggregateScore(reviews),
		OverallScore:   types.NeutralScore,
		ProductID:      d.ID,
		ReviewCount:    d.ReviewCount,
		Specifications: d.Specifications,
		Seller:         firstNonEmpty(d.Seller, search.WalmartSource),
		Availability:   types.OutOfStock,
		Shipping:       d.ShippingInfo,
	}
	if len(d.Images) > 0 {
		p.ImageURL = d.Images[0]
	}
	if d.InStock {
		p.Availability = types.InStock
	}
	if p.Price <= 0 {
		p.Price = types.UnpricedSentinel
	}
	if p.Rating <= 0 {
		p.Rating = types.DefaultRating
	}
	return p
}

// Dedup drops products whose source URL or normalized name was already
// seen, keeping the first occurrence.
func Dedup(products []types.ProductResearchResult) []types.ProductResearchResult {
	keep := dedupIndexes(products)
	out := make([]types.ProductResearchResult, len(keep))
	for i, k := range keep {
		out[i] = products[k]
	}
	return out
}

func dedupIndexes(products []types.ProductResearchResult) []int {
	seenURL := make(map[string]bool, len(products))
	seenName := make(map[string]bool, len(products))
	keep := make([]int, 0, len(products))

	for i, p := range products {
		u := strings.TrimRight(strings.ToLower(strings.TrimSpace(p.SourceURL)), "/")
		n := normalizeName(p.Name)
		if (u != "" && seenURL[u]) || (n != "" && seenName[n]) {
			continue
		}
		if u != "" {
			seenURL[u] = true
		}
		if n != "" {
			seenName[n] = true
		}
		keep = append(keep, i)
	}
	return keep
}

// normalizeName lowercases name and folds punctuation and runs of
// whitespace into single spaces.
func normalizeName(name string) string {
	f := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 0x7f)
	})
	return strings.Join(f, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
