// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the product research pipeline.
//
// Values flow strictly downstream: ResearchIntent → ResearchPlan →
// RawSearchHit → ProductResearchResult → DeepResearchResponse. Every value is
// request-scoped and owned by the pipeline run that created it.
package types

import "strings"

const (
	// NeutralScore is the midpoint used for sentiment and overall scores
	// before the analyzer and ranking stages run.
	NeutralScore = 0.5

	// UnpricedSentinel is assigned when no price can be parsed, so unpriced
	// items sort last under price-sensitive ranking.
	UnpricedSentinel = 999999.0

	// DefaultRating is used when a hit carries no rating signal.
	DefaultRating = 3.0

	// InStock is the availability label that earns full availability weight.
	InStock = "In Stock"

	// OutOfStock is the availability label for items that cannot be bought.
	OutOfStock = "Out of Stock"
)

// ResearchIntent is the structured reading of a free-text shopping request.
type ResearchIntent struct {
	Intent        string      `json:"intent" yaml:"intent"`
	Category      string      `json:"category" yaml:"category"`
	Constraints   Constraints `json:"constraints" yaml:"constraints"`
	OriginalQuery string      `json:"originalQuery" yaml:"original_query"`
}

// Constraints narrows a research request. Empty fields mean "no constraint".
type Constraints struct {
	// Price is an operator expression such as "<=1000".
	Price string `json:"price,omitempty" yaml:"price,omitempty"`

	// Rating is a qualitative or operator expression such as "high" or ">4".
	Rating string `json:"rating,omitempty" yaml:"rating,omitempty"`

	Brand    string   `json:"brand,omitempty" yaml:"brand,omitempty"`
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`
}

// PriceCeiling strips the comparison operator from Price, returning "" when
// there is no price constraint.
func (c Constraints) PriceCeiling() string {
	return strings.TrimLeft(c.Price, "<>=")
}

// ResearchPlan is the bounded set of queries derived from an intent.
type ResearchPlan struct {
	SearchQueries     []string `json:"searchQueries" yaml:"search_queries"`
	ExtractionTargets []string `json:"extractionTargets" yaml:"extraction_targets"`
	RankingCriteria   []string `json:"rankingCriteria" yaml:"ranking_criteria"`

	// ExpectedResults is a planning constant, not a promise from the provider.
	ExpectedResults int `json:"expectedResults" yaml:"expected_results"`
}

// HitKind tags the shape a RawSearchHit was decoded from.
type HitKind string

const (
	HitOrganic  HitKind = "organic"
	HitShopping HitKind = "shopping"
	HitCatalog  HitKind = "catalog"
)

// RawSearchHit is one provider result before normalization. Kind selects
// which fields are meaningful: organic and shopping hits carry text price
// and rating fields, catalog hits carry structured ones.
type RawSearchHit struct {
	Kind    HitKind `json:"kind" yaml:"kind"`
	Query   string  `json:"query,omitempty" yaml:"query,omitempty"`
	Title   string  `json:"title" yaml:"title"`
	Link    string  `json:"link" yaml:"link"`
	Snippet string  `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	Source  string  `json:"source,omitempty" yaml:"source,omitempty"`

	PriceText  string `json:"priceText,omitempty" yaml:"price_text,omitempty"`
	RatingText string `json:"ratingText,omitempty" yaml:"rating_text,omitempty"`

	Price        float64 `json:"price,omitempty" yaml:"price,omitempty"`
	Rating       float64 `json:"rating,omitempty" yaml:"rating,omitempty"`
	ReviewsCount int     `json:"reviewsCount,omitempty" yaml:"reviews_count,omitempty"`
	Thumbnail    string  `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`

	ProductID   string `json:"productId,omitempty" yaml:"product_id,omitempty"`
	Seller      string `json:"seller,omitempty" yaml:"seller,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	OutOfStock  bool   `json:"outOfStock,omitempty" yaml:"out_of_stock,omitempty"`
}

// SentimentLabel is the polarity assigned to a review.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// Valid reports whether l is one of the three known labels.
func (l SentimentLabel) Valid() bool {
	switch l {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// Value maps a label onto the 0–1 polarity scale. Unknown labels are neutral.
func (l SentimentLabel) Value() float64 {
	switch l {
	case SentimentPositive:
		return 1.0
	case SentimentNegative:
		return 0.0
	default:
		return NeutralScore
	}
}

// ReviewData is a single customer review. Sentiment and Confidence stay
// unset until the sentiment analyzer scores the review.
type ReviewData struct {
	Text       string         `json:"text" yaml:"text"`
	Rating     float64        `json:"rating" yaml:"rating"`
	Sentiment  SentimentLabel `json:"sentiment,omitempty" yaml:"sentiment,omitempty"`
	Confidence *float64       `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	ReviewTitle  string `json:"reviewTitle,omitempty" yaml:"review_title,omitempty"`
	ReviewDate   string `json:"reviewDate,omitempty" yaml:"review_date,omitempty"`
	ReviewerName string `json:"reviewerName,omitempty" yaml:"reviewer_name,omitempty"`
	HelpfulVotes int    `json:"helpfulVotes,omitempty" yaml:"helpful_votes,omitempty"`
	Verified     bool   `json:"verified,omitempty" yaml:"verified,omitempty"`
}

// Scored reports whether the review already carries a sentiment label.
func (r ReviewData) Scored() bool {
	return r.Sentiment.Valid() && r.Confidence != nil
}

// SetSentiment records the analyzer's verdict on the review.
func (r *ReviewData) SetSentiment(label SentimentLabel, confidence float64) {
	r.Sentiment = label
	r.Confidence = &confidence
}

// Specification is a single name/value product attribute.
type Specification struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// ProductResearchResult is the canonical product representation. Each
// downstream stage mutates it in place.
type ProductResearchResult struct {
	Name        string       `json:"name" yaml:"name"`
	Price       float64      `json:"price" yaml:"price"`
	Rating      float64      `json:"rating" yaml:"rating"`
	Description string       `json:"description" yaml:"description"`
	ImageURL    string       `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
	Source      string       `json:"source" yaml:"source"`
	SourceURL   string       `json:"sourceUrl" yaml:"source_url"`
	Reviews     []ReviewData `json:"reviews" yaml:"reviews"`

	SentimentScore float64 `json:"sentimentScore" yaml:"sentiment_score"`
	OverallScore   float64 `json:"overallScore" yaml:"overall_score"`

	ProductID      string          `json:"productId,omitempty" yaml:"product_id,omitempty"`
	ReviewCount    int             `json:"reviewCount,omitempty" yaml:"review_count,omitempty"`
	Specifications []Specification `json:"specifications,omitempty" yaml:"specifications,omitempty"`
	Seller         string          `json:"seller,omitempty" yaml:"seller,omitempty"`
	Availability   string          `json:"availability,omitempty" yaml:"availability,omitempty"`
	Shipping       string          `json:"shipping,omitempty" yaml:"shipping,omitempty"`
}

// Unpriced reports whether the product carries the sentinel price. Only
// the exact sentinel counts, so a genuine high price stays priced.
func (p ProductResearchResult) Unpriced() bool {
	return p.Price == UnpricedSentinel
}

// VerifiedReviews counts reviews from verified purchasers.
func (p ProductResearchResult) VerifiedReviews() int {
	n := 0
	for _, r := range p.Reviews {
		if r.Verified {
			n++
		}
	}
	return n
}

// DeepResearchResponse is the terminal artifact of a research run. Product
// order is the ranking order; Citations[i] is Products[i].SourceURL.
type DeepResearchResponse struct {
	RunID           string                  `json:"runId" yaml:"run_id"`
	Query           string                  `json:"query" yaml:"query"`
	Products        []ProductResearchResult `json:"products" yaml:"products"`
	ResearchSummary string                  `json:"researchSummary" yaml:"research_summary"`
	Citations       []string                `json:"citations" yaml:"citations"`
	Methodology     string                  `json:"methodology" yaml:"methodology"`
	ScoringPolicy   string                  `json:"scoringPolicy,omitempty" yaml:"scoring_policy,omitempty"`

	// TotalProcessingTime is the run's wall time in milliseconds.
	TotalProcessingTime int64 `json:"totalProcessingTime" yaml:"total_processing_time"`
}
