// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sentiment

import (
	"bytes"
	"text/template"
)

// reviewPromptTmpl asks the model for a label and confidence for one review.
var reviewPromptTmpl = template.Must(template.New("review").Parse(`Analyze the sentiment of this product review and return a JSON response:

Review: "{{.Text}}"

Return JSON in this exact format:
{
  "sentiment": "positive|negative|neutral",
  "confidence": 0.85,
  "reasoning": "brief explanation"
}

Consider:
- Overall tone and emotion
- Specific complaints or praise
- Recommendation likelihood
- Product satisfaction

Just return the JSON, no additional text.
`))

// productPromptTmpl asks the model for a single 0-1 polarity number.
var productPromptTmpl = template.Must(template.New("product").Parse(`Analyze the sentiment of this product-related text and return a score from 0 to 1:
"{{.Text}}"

Return only a number between 0 and 1 where:
- 0 = Very negative
- 0.5 = Neutral
- 1 = Very positive

Just return the number, no explanation.
`))

func render(tmpl *template.Template, text string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Text string }{text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
