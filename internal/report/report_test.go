// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/product-research/internal/genai"
	"github.com/pdiddy/product-research/internal/rank"
	"github.com/pdiddy/product-research/pkg/types"
)

func ranked() []types.ProductResearchResult {
	conf := 0.9
	return []types.ProductResearchResult{
		{
			Name: "Keurig K-Mini", Price: 79.99, Rating: 4.5, ReviewCount: 1200,
			SentimentScore: 0.8, OverallScore: 0.82, Source: "Walmart",
			SourceURL: "https://www.walmart.com/ip/1", Availability: types.InStock, Seller: "Walmart",
			Specifications: []types.Specification{
				{Name: "Color", Value: "Black"},
				{Name: "Capacity", Value: "12 oz"},
				{Name: "Weight", Value: "5 lb"},
				{Name: "Extra", Value: "x"},
			},
			Reviews: []types.ReviewData{
				{Text: "Stopped working", Rating: 1, Sentiment: types.SentimentNegative, Confidence: &conf},
				{Text: "Love the compact size", Rating: 5, Sentiment: types.SentimentPositive, Confidence: &conf, Verified: true},
			},
		},
		{Name: "Mr. Coffee", Price: 1299, Rating: 4.0, SentimentScore: 0.5, OverallScore: 0.6, Source: "target.com", SourceURL: "https://target.com/p/2"},
		{Name: "Ninja", Price: types.UnpricedSentinel, Rating: 4.8, SentimentScore: 0.9, OverallScore: 0.55, Source: "ninja.com", SourceURL: "https://ninja.com/3"},
		{Name: "Hamilton Beach", Price: 25, Rating: 3.5, SentimentScore: 0.4, OverallScore: 0.4, Source: "amazon.com", SourceURL: "https://amazon.com/4"},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(ranked())
	assert.Equal(t, 4, s.Products)
	assert.Equal(t, 1200, s.TotalReviews)
	assert.InDelta(t, (4.5+4+4.8+3.5)/4, s.AvgRating, 1e-9)
	assert.InDelta(t, (0.8+0.5+0.9+0.4)/4, s.AvgSentiment, 1e-9)
	assert.Equal(t, 25.0, s.MinPrice)
	assert.Equal(t, 1299.0, s.MaxPrice)
	assert.Equal(t, "$25 - $1,299", s.PriceRange())

	assert.Equal(t, "N/A", Summarize(nil).PriceRange())
}

func TestSummarize_HighPriceStaysPriced(t *testing.T) {
	products := []types.ProductResearchResult{
		{Name: "Espresso bar", Price: 1234567.89, Rating: 5},
		{Name: "Ninja", Price: types.UnpricedSentinel, Rating: 4},
		{Name: "Hamilton Beach", Price: 25, Rating: 3},
	}
	assert.False(t, products[0].Unpriced())
	assert.True(t, products[1].Unpriced())

	s := Summarize(products)
	assert.Equal(t, 25.0, s.MinPrice)
	assert.Equal(t, 1234567.89, s.MaxPrice)
	assert.Equal(t, "$25 - $1,234,567.89", s.PriceRange())
}

func TestMoney(t *testing.T) {
	tests := map[float64]string{
		79.99:                  "$79.99",
		79:                     "$79",
		1299.5:                 "$1,299.50",
		1234567.891:            "$1,234,567.89",
		999:                    "$999",
		types.UnpricedSentinel: "N/A",
		0:                      "N/A",
	}
	for in, want := range tests {
		assert.Equal(t, want, Money(in), "%v", in)
	}
}

func TestFallback(t *testing.T) {
	md := Fallback("coffee maker", ranked(), rank.Enhanced{})

	for _, want := range []string{
		`# Deep Research Results for "coffee maker"`,
		"## Executive Summary",
		"Based on analysis of 4 products and 1200 customer reviews",
		"- Average rating: 4.2/5 stars",
		"- Price range: $25 - $1,299",
		"## Top Product Recommendations",
		"### 1. Keurig K-Mini",
		"- **Key Features**: Color: Black, Capacity: 12 oz, Weight: 5 lb\n",
		"- 1 positive reviews, 1 negative reviews",
		"- 1 verified purchase reviews",
		`- Sample review: "Love the compact size" (5/5)`,
		"- **Source**: [View on Walmart](https://www.walmart.com/ip/1)",
		"### 3. Ninja",
		"- **Price**: N/A",
		"## Best Value\n**Keurig K-Mini** has the highest overall score (82%) at $79.99.",
		"## Research Methodology",
		"enhanced scoring policy: rating 30%",
		"## Buying Recommendation\n**Recommended**: Keurig K-Mini",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "Hamilton Beach", "only the top three are described")
}

func TestBestValueUsesOverallScore(t *testing.T) {
	products := ranked()
	products[3].OverallScore = 0.95
	assert.Equal(t, "Hamilton Beach", BestValue(products).Name)
}

func TestGenerate_EmptySkipsModel(t *testing.T) {
	called := false
	s := &Synthesizer{AI: genai.Func(func(context.Context, string) (string, error) {
		called = true
		return "x", nil
	})}

	out := s.Generate(context.Background(), "unicorn saddle", nil, rank.Basic{})
	assert.False(t, called)
	assert.Contains(t, out, "No matching products were found")
	assert.Contains(t, out, `"unicorn saddle"`)
}

func TestGenerate_Model(t *testing.T) {
	var prompt string
	s := &Synthesizer{TopN: 2, AI: genai.Func(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "```markdown\n## Executive Summary\nBuy the Keurig.\n```", nil
	})}

	out := s.Generate(context.Background(), "coffee maker", ranked(), rank.Basic{})
	assert.Equal(t, "## Executive Summary\nBuy the Keurig.", out)

	assert.Contains(t, prompt, `Original Query: "coffee maker"`)
	assert.Contains(t, prompt, "1. Keurig K-Mini")
	assert.Contains(t, prompt, "- Price: $79.99")
	assert.Contains(t, prompt, "- Sentiment Score: 80.0%")
	assert.Contains(t, prompt, "- Key Specifications: Color: Black, Capacity: 12 oz, Weight: 5 lb")
	assert.Contains(t, prompt, `"Stopped working" (1/5, negative)`)
	assert.Contains(t, prompt, "2. Mr. Coffee")
	assert.NotContains(t, prompt, "3. Ninja")
	assert.Contains(t, prompt, "- Total products analyzed: 4")
	assert.Contains(t, prompt, "- Price range: $25 - $1,299")
}

func TestGenerate_ModelFailureFallsBack(t *testing.T) {
	for name, ai := range map[string]genai.Completer{
		"error":    genai.Func(func(context.Context, string) (string, error) { return "", errors.New("quota") }),
		"empty":    genai.Func(func(context.Context, string) (string, error) { return "  ", nil }),
		"disabled": genai.Disabled{},
	} {
		t.Run(name, func(t *testing.T) {
			s := &Synthesizer{AI: ai}
			out := s.Generate(context.Background(), "coffee maker", ranked(), rank.Basic{})
			assert.Contains(t, out, "## Best Value")
			assert.Contains(t, out, "basic scoring policy: rating 40%, sentiment 30%, price 30%")
		})
	}
}

func TestComparison(t *testing.T) {
	out := Comparison(ranked())
	assert.Contains(t, out, "comparison of the 4 products")
	assert.Contains(t, out, "**Best Value:** Keurig K-Mini")
	assert.Contains(t, out, "**Lowest Price:** Hamilton Beach")
	assert.Contains(t, out, "**Highest Rated:** Ninja")
	assert.Equal(t, "There are no products to compare.", Comparison(nil))
}

func TestCitations(t *testing.T) {
	products := ranked()
	resp := &types.DeepResearchResponse{Products: products, Citations: Citations(products)}
	require.NoError(t, ValidateCitations(resp))

	resp.Citations[1], resp.Citations[2] = resp.Citations[2], resp.Citations[1]
	assert.ErrorContains(t, ValidateCitations(resp), "citation 1")

	resp.Citations = resp.Citations[:2]
	assert.ErrorContains(t, ValidateCitations(resp), "2 citations for 4 products")
}

func TestUncitedLinks(t *testing.T) {
	md := "See [Keurig](https://www.walmart.com/ip/1) and [deal](https://deals.example/x), " +
		"again [deal](https://deals.example/x), and [a](https://b.example)."
	got := UncitedLinks(md, []string{"https://www.walmart.com/ip/1"})
	assert.Equal(t, []string{"https://b.example", "https://deals.example/x"}, got)
}

func TestToHTML(t *testing.T) {
	out := ToHTML("# Results\n\n[Shop](https://walmart.com)\n\n<script>alert(1)</script>\n")
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Results</h1>")
	assert.Contains(t, out, `href="https://walmart.com"`)
	assert.NotContains(t, out, "<script>")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":         FormatMarkdown,
		"md":       FormatMarkdown,
		"Markdown": FormatMarkdown,
		"html":     FormatHTML,
		"json":     FormatJSON,
		"yaml":     FormatYAML,
		"TABLE":    FormatTable,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.ErrorContains(t, err, "pdf")
}

func sampleResponse() *types.DeepResearchResponse {
	products := ranked()
	return &types.DeepResearchResponse{
		RunID:               "run-1",
		Query:               "coffee maker",
		Products:            products,
		ResearchSummary:     "## Summary\nBuy the Keurig.\n",
		Citations:           Citations(products),
		Methodology:         "Deep Research",
		TotalProcessingTime: 42,
	}
}

func TestWrite(t *testing.T) {
	resp := sampleResponse()

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, resp, FormatMarkdown))
		assert.Contains(t, buf.String(), "## Sources\n1. https://www.walmart.com/ip/1\n")
		assert.Contains(t, buf.String(), "Processing time: 42ms")
	})

	t.Run("html", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, resp, FormatHTML))
		assert.Contains(t, buf.String(), "<ol>")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, resp, FormatJSON))
		var got types.DeepResearchResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "run-1", got.RunID)
		assert.Len(t, got.Products, 4)
		assert.Contains(t, buf.String(), `"totalProcessingTime": 42`)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, resp, FormatYAML))
		var got map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "coffee maker", got["query"])
		assert.Equal(t, 42, got["total_processing_time"])
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, resp, FormatTable))
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 5)
		assert.Contains(t, lines[1], "Keurig K-Mini")
		assert.Contains(t, lines[3], "N/A")
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, Write(&bytes.Buffer{}, resp, Format("pdf")))
	})
}

func TestFit(t *testing.T) {
	assert.Equal(t, "abc  ", fit("abc", 5))
	assert.Equal(t, "abcd…", fit("abcdefgh", 5))
	assert.Contains(t, Table(nil), "no products")
}
