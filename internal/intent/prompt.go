// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intent

import (
	"bytes"
	"text/template"
)

// extractionPromptTmpl asks the model for a ResearchIntent in a fixed JSON shape.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`Extract structured intent from this shopping query: "{{.Query}}"

Return JSON in this exact format:
{
  "intent": "product_research",
  "category": "main product category",
  "constraints": {
    "price": "price constraint if any (e.g., '<=500', '>1000')",
    "rating": "rating constraint if any (e.g., 'high', '>4')",
    "brand": "specific brand if mentioned",
    "features": ["list of specific features mentioned"]
  },
  "originalQuery": "{{.Query}}"
}

Examples:
- "Buy me a high-rated coffee under ₹500" → category: "coffee", price: "<=500", rating: "high"
- "Best gaming laptop under $1000" → category: "gaming laptop", price: "<=1000"
- "Samsung phone with good camera" → category: "smartphone", brand: "Samsung", features: ["camera"]

Respond with the JSON object only.
`))

// classifierPromptTmpl asks the model to classify one shopping message.
var classifierPromptTmpl = template.Must(template.New("classifier").Parse(`You are an expert at understanding customer intent in shopping conversations.

Analyze the user's message and classify it into one of these intents:
- product_search: Looking for specific products
- product_compare: Comparing multiple products
- product_info: Asking for product details
- add_to_cart: Wanting to add items to cart
- remove_from_cart: Removing items from cart
- view_cart: Checking cart contents
- checkout: Ready to purchase
- greeting: General greetings
- help: Asking for assistance
- complaint: Expressing dissatisfaction
- general_question: Other questions

Extract entities like product names, categories, brands, prices, colors, sizes, quantities, features.

Respond in JSON format with intent, confidence, entities, action, and parameters.

Example:
User: I need a coffee maker under $100
Assistant: {"intent": "product_search", "confidence": 0.9, "entities": [{"type": "product_name", "value": "coffee maker"}, {"type": "price", "value": "$100"}], "action": "search_products", "parameters": {"query": "coffee maker", "maxPrice": 100}}

User: {{.Message}}
Assistant:`))

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
