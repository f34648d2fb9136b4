// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"text/template"
)

// reportPromptTmpl asks the model for a structured markdown report over
// the top products and the aggregate statistics of the whole set.
var reportPromptTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"money":   Money,
	"percent": percent,
	"specs":   keySpecs,
	"samples": sampleReviews,
	"inc":     func(i int) int { return i + 1 },
}).Parse(`As an expert product research analyst, create a comprehensive research report based on real customer data and reviews.

Original Query: "{{.Query}}"

Products Analyzed (with real customer reviews and ratings):
{{range $i, $p := .Top}}
{{inc $i}}. {{$p.Name}}
   - Price: {{money $p.Price}}
   - Rating: {{$p.Rating}}/5 ({{$p.ReviewCount}} reviews)
   - Sentiment Score: {{percent $p.SentimentScore 1}}
   - Availability: {{or $p.Availability "Unknown"}}
   - Seller: {{or $p.Seller $p.Source}}
   - Overall Score: {{percent $p.OverallScore 1}}
   - Key Specifications: {{specs $p}}
   - Sample Reviews: {{samples $p}}
{{end}}
Research Statistics:
- Total products analyzed: {{.Stats.Products}}
- Total customer reviews analyzed: {{.Stats.TotalReviews}}
- Average rating: {{printf "%.1f" .Stats.AvgRating}}/5
- Average sentiment score: {{percent .Stats.AvgSentiment 1}}
- Price range: {{.Stats.PriceRange}}

Create a detailed report with:
1. **Executive Summary** - Key findings and top recommendation
2. **Product Analysis** - Detailed breakdown of top 3 products with pros/cons
3. **Customer Sentiment Insights** - What customers really think based on reviews
4. **Value Analysis** - Best value propositions and price comparisons
5. **Buying Recommendation** - Specific recommendation with reasoning

Use real customer feedback and data. Be objective and thorough.
`))

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
