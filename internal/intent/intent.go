// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intent reads shopping requests. The Extractor turns a research
// query into a ResearchIntent; the Classifier maps a chat message onto one
// of the fixed shopping intents. Both prefer the generative text service and
// fall back to deterministic keyword rules.
package intent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/product-research/internal/genai"
	"github.com/pdiddy/product-research/pkg/types"
)

// ResearchIntentLabel is the intent value carried by every ResearchIntent.
const ResearchIntentLabel = "product_research"

// DefaultCategory is used when no category keyword matches.
const DefaultCategory = "product"

// categories is matched in order; the first hit wins.
var categories = []string{
	"coffee", "laptop", "phone", "smartphone", "headphones", "headphone",
	"watch", "camera", "tablet", "speaker", "mouse", "keyboard", "monitor",
	"chair", "desk", "backpack", "shoes", "clothing", "book", "game",
}

var brands = []string{
	"apple", "samsung", "sony", "lg", "dell", "hp", "lenovo", "nike",
	"adidas", "microsoft", "google",
}

var features = []string{
	"wireless", "bluetooth", "usb", "rechargeable", "waterproof", "portable",
	"automatic", "manual", "noise cancelling", "camera", "gaming",
}

var ratingPhrases = []string{"high-rated", "best rated", "top rated"}

var (
	categoryRe = wordPatterns(categories, true)
	brandRe    = wordPatterns(brands, false)
	featureRe  = wordPatterns(features, false)

	priceCeilingRe = regexp.MustCompile(`(?:under|below|less than|maximum|max)\s*[$₹]?([\d,]+)|[$₹]?([\d,]+)\s*(?:or less|max|maximum)`)
)

// wordPatterns compiles one word-bounded matcher per vocabulary entry,
// optionally accepting a trailing plural "s".
func wordPatterns(words []string, plural bool) []*regexp.Regexp {
	suffix := ""
	if plural {
		suffix = "s?"
	}
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + suffix + `\b`)
	}
	return out
}

func firstMatch(text string, words []string, patterns []*regexp.Regexp) string {
	for i, re := range patterns {
		if re.MatchString(text) {
			return words[i]
		}
	}
	return ""
}

// Extractor produces a ResearchIntent from a free-text query.
type Extractor struct {
	AI  genai.Completer
	Log zerolog.Logger
}

// ExtractIntent asks the generative service for a structured intent and
// falls back to ExtractIntentFallback on a missing credential, call failure,
// or malformed response. It never fails.
func (e *Extractor) ExtractIntent(ctx context.Context, query string) types.ResearchIntent {
	if !genai.Available(e.AI) {
		return ExtractIntentFallback(query)
	}

	ri, err := e.extractWithModel(ctx, query)
	if err != nil {
		e.Log.Warn().Err(err).Str("query", query).Msg("intent extraction failed, using keyword rules")
		return ExtractIntentFallback(query)
	}
	return ri
}

func (e *Extractor) extractWithModel(ctx context.Context, query string) (types.ResearchIntent, error) {
	prompt, err := render(extractionPromptTmpl, struct{ Query string }{query})
	if err != nil {
		return types.ResearchIntent{}, fmt.Errorf("rendering prompt: %w", err)
	}

	var ri types.ResearchIntent
	if err := genai.CompleteJSON(ctx, e.AI, prompt, &ri); err != nil {
		return types.ResearchIntent{}, err
	}

	ri.Category = strings.TrimSpace(ri.Category)
	if ri.Category == "" {
		return types.ResearchIntent{}, fmt.Errorf("model intent has empty category")
	}
	ri.Intent = ResearchIntentLabel
	ri.OriginalQuery = query
	ri.Constraints = normalizeConstraints(ri.Constraints)
	return ri, nil
}

func normalizeConstraints(c types.Constraints) types.Constraints {
	c.Price = strings.TrimSpace(c.Price)
	c.Rating = strings.TrimSpace(c.Rating)
	c.Brand = strings.TrimSpace(c.Brand)

	var kept []string
	for _, f := range c.Features {
		if f = strings.TrimSpace(f); f != "" {
			kept = append(kept, f)
		}
	}
	c.Features = kept
	return c
}

// ExtractIntentFallback extracts an intent with keyword rules only.
func ExtractIntentFallback(query string) types.ResearchIntent {
	lower := strings.ToLower(query)

	category := firstMatch(lower, categories, categoryRe)
	if category == "" {
		category = DefaultCategory
	}

	var c types.Constraints
	if m := priceCeilingRe.FindStringSubmatch(lower); m != nil {
		amount := m[1]
		if amount == "" {
			amount = m[2]
		}
		if amount = strings.ReplaceAll(amount, ",", ""); amount != "" {
			c.Price = "<=" + amount
		}
	}

	c.Brand = firstMatch(lower, brands, brandRe)

	for _, phrase := range ratingPhrases {
		if strings.Contains(lower, phrase) {
			c.Rating = "high"
			break
		}
	}

	for i, re := range featureRe {
		// A word that already names the category is not also a feature.
		if features[i] == category {
			continue
		}
		if re.MatchString(lower) {
			c.Features = append(c.Features, features[i])
		}
	}

	return types.ResearchIntent{
		Intent:        ResearchIntentLabel,
		Category:      category,
		Constraints:   c,
		OriginalQuery: query,
	}
}
