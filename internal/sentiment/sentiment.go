// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sentiment scores review and product polarity. The generative
// service is tried first; a keyword analyzer and then the numeric rating
// serve as fallbacks, so every call returns a usable verdict.
package sentiment

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/product-research/internal/genai"
	"github.com/pdiddy/product-research/pkg/types"
)

const (
	// DefaultCharLimit bounds the text sent to the model per call.
	DefaultCharLimit = 500

	lexicalConfidence = 0.7
	tieConfidence     = 0.6
	ratingConfidence  = 0.7
)

var (
	positiveWords = []string{"great", "excellent", "amazing", "love", "perfect", "recommend", "best", "awesome"}
	negativeWords = []string{"terrible", "awful", "hate", "worst", "broken", "disappointed", "waste", "bad"}
)

// Result is a polarity verdict for one piece of text.
type Result struct {
	Label      types.SentimentLabel `json:"sentiment"`
	Confidence float64              `json:"confidence"`
}

// Analyzer scores reviews and products. The zero value works and uses only
// the deterministic fallbacks.
type Analyzer struct {
	AI genai.Completer

	// CharLimit truncates text before it is sent to the model (default 500).
	CharLimit int

	// Concurrency caps in-flight model calls in Enrich (default 2).
	Concurrency int

	Log zerolog.Logger
}

// AnalyzeReview labels a single review. Empty text falls back to the
// rating, and to neutral 0.5 when there is no rating either.
func (a *Analyzer) AnalyzeReview(ctx context.Context, text string, rating float64) Result {
	if strings.TrimSpace(text) == "" {
		if rating > 0 {
			return RatingSentiment(rating)
		}
		return Result{Label: types.SentimentNeutral, Confidence: types.NeutralScore}
	}
	if !genai.Available(a.AI) {
		return SimpleSentimentAnalysis(text)
	}

	res, err := a.reviewWithModel(ctx, text)
	if err != nil {
		a.Log.Debug().Err(err).Msg("review sentiment model failed, using keyword analysis")
		return SimpleSentimentAnalysis(text)
	}
	return res
}

func (a *Analyzer) reviewWithModel(ctx context.Context, text string) (Result, error) {
	prompt, err := render(reviewPromptTmpl, truncate(text, a.charLimit()))
	if err != nil {
		return Result{}, err
	}

	var res Result
	if err := genai.CompleteJSON(ctx, a.AI, prompt, &res); err != nil {
		return Result{}, err
	}
	res.Label = types.SentimentLabel(strings.ToLower(strings.TrimSpace(string(res.Label))))
	if !res.Label.Valid() {
		return Result{}, fmt.Errorf("model returned unknown sentiment label %q", res.Label)
	}
	res.Confidence = clamp01(res.Confidence)
	return res, nil
}

// SimpleSentimentAnalysis compares how many distinct positive and negative
// keywords appear; repeating a keyword does not add weight. Ties,
// including no hits at all, are neutral.
func SimpleSentimentAnalysis(text string) Result {
	lower := strings.ToLower(text)
	pos := countWords(lower, positiveWords)
	neg := countWords(lower, negativeWords)

	switch {
	case pos > neg:
		return Result{Label: types.SentimentPositive, Confidence: lexicalConfidence}
	case neg > pos:
		return Result{Label: types.SentimentNegative, Confidence: lexicalConfidence}
	default:
		return Result{Label: types.SentimentNeutral, Confidence: tieConfidence}
	}
}

func countWords(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}

// RatingSentiment derives a label from a 0-5 star rating alone.
func RatingSentiment(rating float64) Result {
	return Result{Label: LabelForRating(rating), Confidence: ratingConfidence}
}

// LabelForRating maps a star rating onto a label: 4 and up is positive,
// 3 and up is neutral.
func LabelForRating(rating float64) types.SentimentLabel {
	switch {
	case rating >= 4:
		return types.SentimentPositive
	case rating >= 3:
		return types.SentimentNeutral
	default:
		return types.SentimentNegative
	}
}

// AggregateScore averages the label values of reviews. Unlabeled reviews
// count as neutral and an empty list is neutral.
func AggregateScore(reviews []types.ReviewData) float64 {
	if len(reviews) == 0 {
		return types.NeutralScore
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Sentiment.Value()
	}
	return sum / float64(len(reviews))
}

// ProductScore scores the description and review texts of p together.
// The model is asked for a bare number; anything unparseable falls back to
// the keyword analyzer scaled around 0.5.
func (a *Analyzer) ProductScore(ctx context.Context, p types.ProductResearchResult) float64 {
	parts := []string{p.Description}
	for _, r := range p.Reviews {
		parts = append(parts, r.Text)
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return types.NeutralScore
	}
	text = truncate(text, a.charLimit())

	if genai.Available(a.AI) {
		score, err := a.productWithModel(ctx, text)
		if err == nil {
			return score
		}
		a.Log.Debug().Err(err).Str("product", p.Name).Msg("product sentiment model failed, using keyword analysis")
	}
	return lexicalScore(SimpleSentimentAnalysis(text))
}

func (a *Analyzer) productWithModel(ctx context.Context, text string) (float64, error) {
	prompt, err := render(productPromptTmpl, text)
	if err != nil {
		return 0, err
	}
	reply, err := a.AI.Complete(ctx, prompt)
	if err != nil {
		return 0, err
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(reply), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(score) {
		return types.NeutralScore, nil
	}
	return clamp01(score), nil
}

// lexicalScore moves a label's value toward 0.5 in proportion to the
// verdict's uncertainty.
func lexicalScore(r Result) float64 {
	return types.NeutralScore + (r.Label.Value()-types.NeutralScore)*r.Confidence
}

// Enrich labels every unscored review and sets each product's
// SentimentScore: the label average when reviews exist, ProductScore
// otherwise. Products are updated in place. Only ctx cancellation is an
// error.
func (a *Analyzer) Enrich(ctx context.Context, products []types.ProductResearchResult) error {
	limit := a.Concurrency
	if limit <= 0 {
		limit = 2
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range products {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := &products[i]
			for j := range p.Reviews {
				if p.Reviews[j].Scored() {
					continue
				}
				res := a.AnalyzeReview(gctx, p.Reviews[j].Text, p.Reviews[j].Rating)
				p.Reviews[j].SetSentiment(res.Label, res.Confidence)
			}

			if len(p.Reviews) > 0 {
				p.SentimentScore = AggregateScore(p.Reviews)
			} else {
				p.SentimentScore = a.ProductScore(gctx, *p)
			}
			p.SentimentScore = clamp01(p.SentimentScore)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (a *Analyzer) charLimit() int {
	if a.CharLimit > 0 {
		return a.CharLimit
	}
	return DefaultCharLimit
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return types.NeutralScore
	}
	return math.Max(0, math.Min(1, v))
}
