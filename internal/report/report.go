// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes the narrative summary of a research run. The
// generative service drafts it when available; otherwise a deterministic
// markdown report is built from the same statistics.
package report

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/product-research/internal/genai"
	"github.com/pdiddy/product-research/internal/rank"
	"github.com/pdiddy/product-research/pkg/types"
)

const (
	// DefaultTopN is how many products the model prompt embeds.
	DefaultTopN = 5

	fallbackTopN = 3
)

// Stats aggregates the whole ranked set.
type Stats struct {
	Products     int     `json:"products" yaml:"products"`
	TotalReviews int     `json:"totalReviews" yaml:"total_reviews"`
	AvgRating    float64 `json:"avgRating" yaml:"avg_rating"`
	AvgSentiment float64 `json:"avgSentiment" yaml:"avg_sentiment"`

	// MinPrice and MaxPrice span priced products only. Both are zero
	// when nothing is priced.
	MinPrice float64 `json:"minPrice" yaml:"min_price"`
	MaxPrice float64 `json:"maxPrice" yaml:"max_price"`
}

// Summarize computes Stats over products. Review totals use the provider
// count when present and the attached reviews otherwise.
func Summarize(products []types.ProductResearchResult) Stats {
	s := Stats{Products: len(products)}
	if len(products) == 0 {
		return s
	}

	priced := false
	for _, p := range products {
		if p.ReviewCount > 0 {
			s.TotalReviews += p.ReviewCount
		} else {
			s.TotalReviews += len(p.Reviews)
		}
		s.AvgRating += p.Rating
		s.AvgSentiment += p.SentimentScore

		if p.Unpriced() {
			continue
		}
		if !priced || p.Price < s.MinPrice {
			s.MinPrice = p.Price
		}
		if !priced || p.Price > s.MaxPrice {
			s.MaxPrice = p.Price
		}
		priced = true
	}
	s.AvgRating /= float64(len(products))
	s.AvgSentiment /= float64(len(products))
	return s
}

// PriceRange renders the priced span, e.g. "$25 - $1,299.99".
func (s Stats) PriceRange() string {
	if s.MaxPrice <= 0 {
		return "N/A"
	}
	return Money(s.MinPrice) + " - " + Money(s.MaxPrice)
}

// Synthesizer produces the research summary.
type Synthesizer struct {
	AI genai.Completer

	// TopN is how many products the model prompt embeds (default 5).
	TopN int

	Log zerolog.Logger
}

// Generate returns the markdown summary for products, which must already
// be ranked. An empty set never reaches the model.
func (s *Synthesizer) Generate(ctx context.Context, query string, products []types.ProductResearchResult, policy rank.Policy) string {
	if len(products) == 0 {
		return NoResults(query)
	}
	if !genai.Available(s.AI) {
		return Fallback(query, products, policy)
	}

	text, err := s.generateWithModel(ctx, query, products)
	if err != nil {
		s.Log.Warn().Err(err).Msg("report generation failed, using deterministic report")
		return Fallback(query, products, policy)
	}
	return text
}

func (s *Synthesizer) generateWithModel(ctx context.Context, query string, products []types.ProductResearchResult) (string, error) {
	n := s.TopN
	if n <= 0 {
		n = DefaultTopN
	}
	top := products[:min(n, len(products))]

	prompt, err := render(reportPromptTmpl, struct {
		Query string
		Top   []types.ProductResearchResult
		Stats Stats
	}{query, top, Summarize(products)})
	if err != nil {
		return "", fmt.Errorf("rendering report prompt: %w", err)
	}

	text, err := s.AI.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(text), "```markdown"), "```"))
	if text == "" {
		return "", fmt.Errorf("model returned an empty report")
	}
	if extra := UncitedLinks(text, Citations(products)); len(extra) > 0 {
		s.Log.Warn().Strs("links", extra).Msg("report links to pages outside the ranked products")
	}
	return text, nil
}

// NoResults is the summary for a run that found nothing.
func NoResults(query string) string {
	return fmt.Sprintf("# Deep Research Results for %q\n\n"+
		"No matching products were found for %q. Try different keywords or a broader category.\n", query, query)
}

// Fallback builds the deterministic report over the top three products,
// with the best-value pick taken from the full set.
func Fallback(query string, products []types.ProductResearchResult, policy rank.Policy) string {
	if len(products) == 0 {
		return NoResults(query)
	}
	stats := Summarize(products)
	top := products[:min(fallbackTopN, len(products))]

	var b strings.Builder
	fmt.Fprintf(&b, "# Deep Research Results for %q\n\n", query)

	b.WriteString("## Executive Summary\n")
	fmt.Fprintf(&b, "Based on analysis of %d products and %d customer reviews, here are the top recommendations:\n\n",
		stats.Products, stats.TotalReviews)
	b.WriteString("**Key Findings:**\n")
	fmt.Fprintf(&b, "- Average rating: %.1f/5 stars\n", stats.AvgRating)
	fmt.Fprintf(&b, "- Customer sentiment: %s positive\n", percent(stats.AvgSentiment, 1))
	fmt.Fprintf(&b, "- Price range: %s\n\n", stats.PriceRange())

	b.WriteString("## Top Product Recommendations\n\n")
	for i, p := range top {
		writeProduct(&b, i+1, p)
	}

	best := BestValue(products)
	b.WriteString("## Best Value\n")
	fmt.Fprintf(&b, "**%s** has the highest overall score (%s) at %s.\n\n",
		best.Name, percent(best.OverallScore, 0), Money(best.Price))

	b.WriteString("## Research Methodology\n")
	if policy != nil {
		fmt.Fprintf(&b, "Products were ranked with the %s scoring policy: %s. ", policy.Name(), rank.Methodology(policy))
	}
	b.WriteString("Review sentiment was scored per review and averaged per product.\n\n")

	b.WriteString("## Buying Recommendation\n")
	first := top[0]
	fmt.Fprintf(&b, "**Recommended**: %s - This product offers the best combination of customer satisfaction (%s/5 stars), "+
		"positive sentiment (%s), and value at %s.\n",
		first.Name, formatNumber(first.Rating), percent(first.SentimentScore, 1), Money(first.Price))
	return b.String()
}

func writeProduct(b *strings.Builder, n int, p types.ProductResearchResult) {
	fmt.Fprintf(b, "### %d. %s\n", n, p.Name)
	fmt.Fprintf(b, "- **Price**: %s\n", Money(p.Price))
	fmt.Fprintf(b, "- **Rating**: %s/5 stars (%d reviews)\n", formatNumber(p.Rating), p.ReviewCount)
	if p.Availability != "" {
		fmt.Fprintf(b, "- **Availability**: %s\n", p.Availability)
	}
	if p.Seller != "" {
		fmt.Fprintf(b, "- **Seller**: %s\n", p.Seller)
	}
	fmt.Fprintf(b, "- **Customer Sentiment**: %s positive\n", percent(p.SentimentScore, 1))
	fmt.Fprintf(b, "- **Overall Score**: %s\n", percent(p.OverallScore, 0))
	if len(p.Specifications) > 0 {
		fmt.Fprintf(b, "- **Key Features**: %s\n", keySpecs(p))
	}
	fmt.Fprintf(b, "- **Source**: [View on %s](%s)\n", p.Source, p.SourceURL)

	if len(p.Reviews) > 0 {
		pos, neg := 0, 0
		for _, r := range p.Reviews {
			switch r.Sentiment {
			case types.SentimentPositive:
				pos++
			case types.SentimentNegative:
				neg++
			}
		}
		b.WriteString("\n**Customer Feedback Analysis:**\n")
		fmt.Fprintf(b, "- %d positive reviews, %d negative reviews\n", pos, neg)
		fmt.Fprintf(b, "- %d verified purchase reviews\n", p.VerifiedReviews())

		sample := p.Reviews[0]
		for _, r := range p.Reviews {
			if r.Sentiment == types.SentimentPositive {
				sample = r
				break
			}
		}
		if sample.Text != "" {
			fmt.Fprintf(b, "- Sample review: %q (%s/5)\n", excerpt(sample.Text, 150), formatNumber(sample.Rating))
		}
	}
	b.WriteString("\n")
}

// BestValue returns the product with the highest overall score. Earlier
// products win ties.
func BestValue(products []types.ProductResearchResult) types.ProductResearchResult {
	var best types.ProductResearchResult
	for i, p := range products {
		if i == 0 || p.OverallScore > best.OverallScore {
			best = p
		}
	}
	return best
}

// Comparison renders a side-by-side summary naming the best value, lowest
// price, and highest rated products.
func Comparison(products []types.ProductResearchResult) string {
	if len(products) == 0 {
		return "There are no products to compare."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here's a detailed comparison of the %d products:\n\n", len(products))
	cheapest, highest := products[0], products[0]
	for i, p := range products {
		fmt.Fprintf(&b, "**%d. %s**\n", i+1, p.Name)
		fmt.Fprintf(&b, "- Price: %s\n", Money(p.Price))
		fmt.Fprintf(&b, "- Rating: %s/5 stars\n", formatNumber(p.Rating))
		fmt.Fprintf(&b, "- Sentiment: %s positive\n", percent(p.SentimentScore, 0))
		fmt.Fprintf(&b, "- Overall Score: %s\n", percent(p.OverallScore, 0))
		fmt.Fprintf(&b, "- Source: %s\n\n", p.Source)

		if p.Price < cheapest.Price {
			cheapest = p
		}
		if p.Rating > highest.Rating {
			highest = p
		}
	}
	fmt.Fprintf(&b, "**Best Value:** %s\n\n", BestValue(products).Name)
	fmt.Fprintf(&b, "**Lowest Price:** %s\n\n", cheapest.Name)
	fmt.Fprintf(&b, "**Highest Rated:** %s\n", highest.Name)
	return b.String()
}

// Money formats a price with thousands separators and at most two
// decimals. Unpriced products render as "N/A".
func Money(p float64) string {
	if p == types.UnpricedSentinel || p <= 0 {
		return "N/A"
	}
	s := strconv.FormatFloat(p, 'f', 2, 64)
	s = strings.TrimSuffix(s, ".00")

	whole, frac, _ := strings.Cut(s, ".")
	var out []byte
	for i := range len(whole) {
		if i > 0 && (len(whole)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, whole[i])
	}
	if frac != "" {
		return "$" + string(out) + "." + frac
	}
	return "$" + string(out)
}

func percent(v float64, digits int) string {
	return strconv.FormatFloat(math.Max(0, v)*100, 'f', digits, 64) + "%"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func keySpecs(p types.ProductResearchResult) string {
	if len(p.Specifications) == 0 {
		return "N/A"
	}
	specs := p.Specifications[:min(3, len(p.Specifications))]
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.Name + ": " + s.Value
	}
	return strings.Join(parts, ", ")
}

func sampleReviews(p types.ProductResearchResult) string {
	reviews := p.Reviews[:min(2, len(p.Reviews))]
	if len(reviews) == 0 {
		return "N/A"
	}
	parts := make([]string, len(reviews))
	for i, r := range reviews {
		label := string(r.Sentiment)
		if label == "" {
			label = "unscored"
		}
		parts[i] = fmt.Sprintf("%q (%s/5, %s)", excerpt(r.Text, 100), formatNumber(r.Rating), label)
	}
	return strings.Join(parts, "; ")
}

// excerpt shortens s to n runes, marking the cut with "...".
func excerpt(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
