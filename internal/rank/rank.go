// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores products under a weighted policy and orders them by
// score. Scores are clamped to [0, 1] and ties keep their input order.
package rank

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/product-research/pkg/types"
)

// priceCeiling is the price at which the price term reaches zero.
const priceCeiling = 1000.0

// Weight is one signal's share of a policy's score.
type Weight struct {
	Signal string  `json:"signal" yaml:"signal"`
	Share  float64 `json:"share" yaml:"share"`
}

// Policy scores a single product.
type Policy interface {
	Name() types.ScoringPolicy
	Score(p types.ProductResearchResult) float64
	Weights() []Weight
}

// Basic weighs rating, sentiment, and price.
type Basic struct{}

// Name returns types.PolicyBasic.
func (Basic) Name() types.ScoringPolicy { return types.PolicyBasic }

// Weights lists the basic weights.
func (Basic) Weights() []Weight {
	return []Weight{{"rating", 0.4}, {"sentiment", 0.3}, {"price", 0.3}}
}

// Score is 0.4·rating/5 + 0.3·sentiment + 0.3·priceTerm.
func (Basic) Score(p types.ProductResearchResult) float64 {
	return clamp01(0.4*(p.Rating/5) + 0.3*p.SentimentScore + 0.3*priceTerm(p.Price))
}

// Enhanced adds review volume, availability, and verified-purchase share
// to the basic signals.
type Enhanced struct{}

// Name returns types.PolicyEnhanced.
func (Enhanced) Name() types.ScoringPolicy { return types.PolicyEnhanced }

// Weights lists the enhanced weights.
func (Enhanced) Weights() []Weight {
	return []Weight{
		{"rating", 0.3},
		{"sentiment", 0.25},
		{"price", 0.2},
		{"review count", 0.15},
		{"availability", 0.05},
		{"verified reviews", 0.05},
	}
}

// Score applies the enhanced weights. A product without a review count
// gets 0.3 for that term.
func (Enhanced) Score(p types.ProductResearchResult) float64 {
	reviewTerm := 0.3
	if p.ReviewCount > 0 {
		reviewTerm = math.Min(1, float64(p.ReviewCount)/100)
	}
	availTerm := 0.5
	if p.Availability == types.InStock {
		availTerm = 1
	}
	verifiedTerm := float64(p.VerifiedReviews()) / math.Max(1, float64(len(p.Reviews)))

	return clamp01(0.3*(p.Rating/5) +
		0.25*p.SentimentScore +
		0.2*priceTerm(p.Price) +
		0.15*reviewTerm +
		0.05*availTerm +
		0.05*verifiedTerm)
}

// PolicyFor resolves name to a policy. PolicyAuto, or an empty name, picks
// Enhanced when any product carries review-count, availability, or
// verified-review data, and Basic otherwise.
func PolicyFor(name types.ScoringPolicy, products []types.ProductResearchResult) (Policy, error) {
	switch name {
	case types.PolicyBasic:
		return Basic{}, nil
	case types.PolicyEnhanced:
		return Enhanced{}, nil
	case types.PolicyAuto, "":
		if HasEnhancedSignals(products) {
			return Enhanced{}, nil
		}
		return Basic{}, nil
	default:
		return nil, fmt.Errorf("unknown scoring policy %q", name)
	}
}

// HasEnhancedSignals reports whether any product carries data only the
// enhanced policy uses.
func HasEnhancedSignals(products []types.ProductResearchResult) bool {
	for _, p := range products {
		if p.ReviewCount > 0 || p.Availability != "" || p.VerifiedReviews() > 0 {
			return true
		}
	}
	return false
}

// Rank sets OverallScore on every product and stable-sorts them
// descending. The slice is reordered in place and returned.
func Rank(products []types.ProductResearchResult, policy Policy) []types.ProductResearchResult {
	for i := range products {
		products[i].OverallScore = policy.Score(products[i])
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].OverallScore > products[j].OverallScore
	})
	return products
}

// Methodology describes a policy's weights, e.g.
// "rating 40%, sentiment 30%, price 30%".
func Methodology(policy Policy) string {
	parts := make([]string, 0, len(policy.Weights()))
	for _, w := range policy.Weights() {
		parts = append(parts, fmt.Sprintf("%s %g%%", w.Signal, math.Round(w.Share*1000)/10))
	}
	return strings.Join(parts, ", ")
}

// priceTerm falls linearly from 1 to 0 at priceCeiling. Non-positive
// prices score 0.
func priceTerm(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return math.Max(0, 1-price/priceCeiling)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
