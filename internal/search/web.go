// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/product-research/pkg/types"
)

// WebProvider queries generic web search through the SerpAPI google engine.
// Shopping sub-results are normalized into the organic hit shape.
type WebProvider struct {
	serp serpClient
}

// NewWeb returns a web search provider configured from cfg.
func NewWeb(cfg types.SearchConfig) *WebProvider {
	return &WebProvider{serp: newSerpClient(cfg)}
}

// Name returns the provider identifier.
func (p *WebProvider) Name() string { return "web" }

type webSearchResponse struct {
	OrganicResults  []webOrganic  `json:"organic_results"`
	ShoppingResults []webShopping `json:"shopping_results"`
}

type webOrganic struct {
	Title   string     `json:"title"`
	Link    string     `json:"link"`
	Snippet string     `json:"snippet"`
	Price   flexString `json:"price"`
	Rating  flexString `json:"rating"`
	Source  string     `json:"source"`
}

type webShopping struct {
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Price     flexString `json:"price"`
	Rating    flexFloat  `json:"rating"`
	Reviews   flexFloat  `json:"reviews"`
	Source    string     `json:"source"`
	Thumbnail string     `json:"thumbnail"`
}

// Search runs one web query and returns organic hits followed by
// normalized shopping hits.
func (p *WebProvider) Search(ctx context.Context, query string, resultCount int) (Response, error) {
	params := url.Values{
		"engine": {"google"},
		"q":      {query},
		"num":    {strconv.Itoa(resultCount)},
	}

	var wr webSearchResponse
	if err := p.serp.get(ctx, p.Name(), params, &wr); err != nil {
		return Response{}, err
	}

	var hits []types.RawSearchHit
	for _, o := range wr.OrganicResults {
		title := plainText(o.Title)
		if title == "" || o.Link == "" {
			continue
		}
		hits = append(hits, types.RawSearchHit{
			Kind:       types.HitOrganic,
			Title:      title,
			Link:       o.Link,
			Snippet:    plainText(o.Snippet),
			Source:     o.Source,
			PriceText:  string(o.Price),
			RatingText: string(o.Rating),
		})
	}

	for _, s := range wr.ShoppingResults {
		title := plainText(s.Title)
		if title == "" || s.Link == "" || s.Price == "" {
			continue
		}
		hits = append(hits, types.RawSearchHit{
			Kind:         types.HitShopping,
			Title:        title,
			Link:         s.Link,
			Snippet:      ShoppingSnippet(s.Source, string(s.Price), float64(s.Rating), int(s.Reviews)),
			Source:       s.Source,
			PriceText:    string(s.Price),
			Rating:       float64(s.Rating),
			ReviewsCount: int(s.Reviews),
			Thumbnail:    s.Thumbnail,
		})
	}
	return Response{Hits: hits}, nil
}

// ShoppingSnippet synthesizes the descriptive snippet for a shopping result,
// e.g. "Source: Target. Price: $49.99. Rating: 4.5/5 (120 reviews)".
func ShoppingSnippet(source, price string, rating float64, reviews int) string {
	var parts []string
	if source != "" {
		parts = append(parts, "Source: "+source)
	}
	if price != "" {
		parts = append(parts, "Price: "+price)
	}
	if rating > 0 {
		r := "Rating: " + strconv.FormatFloat(rating, 'f', -1, 64) + "/5"
		if reviews > 0 {
			r += fmt.Sprintf(" (%d reviews)", reviews)
		}
		parts = append(parts, r)
	}
	return strings.Join(parts, ". ")
}
