// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intent

import (
	"regexp"
	"strconv"

	"github.com/pdiddy/product-research/pkg/types"
)

const entityConfidence = 0.8

type entityPattern struct {
	kind     types.EntityType
	patterns []*regexp.Regexp
}

// entityPatterns is scanned in order so extracted entities are
// deterministic: grouped by type, then by position within each pattern.
var entityPatterns = []entityPattern{
	{types.EntityProductName, compileAll(
		`(?i)\b(iphone|macbook|airpods|galaxy|pixel|dell|hp|lenovo|sony|lg|samsung)\b`,
		`(?i)\b(coffee maker|blender|toaster|microwave|headphones|speaker|laptop|tablet|phone)\b`,
	)},
	{types.EntityCategory, compileAll(
		`(?i)\b(electronics|kitchen|home|clothing|books|sports|toys|beauty|health|automotive)\b`,
		`(?i)\b(kitchen & dining|food & beverages|home & garden)\b`,
	)},
	{types.EntityBrand, compileAll(
		`(?i)\b(apple|samsung|sony|lg|dell|hp|nike|adidas|keurig|ninja|starbucks|walmart)\b`,
	)},
	{types.EntityPrice, compileAll(
		`(?i)\$(\d+(?:\.\d{2})?)\s*(?:(?:to|-)\s*\$?(\d+(?:\.\d{2})?))?`,
	)},
	{types.EntityColor, compileAll(
		`(?i)\b(black|white|red|blue|green|yellow|purple|pink|orange|gray|silver|gold)\b`,
	)},
	{types.EntitySize, compileAll(
		`(?i)\b(small|medium|large|xl|xxl|xs|\d+(?:inch|oz|lb|kg|g))\b`,
	)},
	{types.EntityQuantity, compileAll(
		`(?i)\b(\d+|one|two|three|four|five|six|seven|eight|nine|ten)\b`,
	)},
	{types.EntityFeature, compileAll(
		`(?i)\b(wireless|bluetooth|usb|rechargeable|waterproof|portable|automatic|manual)\b`,
	)},
	{types.EntityLocation, compileAll(
		`(?i)\b(store|online|pickup|delivery|shipping|warehouse)\b`,
	)},
	{types.EntityTime, compileAll(
		`(?i)\b(today|tomorrow|this week|next week|asap|urgent|by \w+day)\b`,
	)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// ExtractEntities returns every pattern match in text with its byte offsets.
func ExtractEntities(text string) []types.Entity {
	entities := []types.Entity{}
	for _, ep := range entityPatterns {
		for _, re := range ep.patterns {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				entities = append(entities, types.Entity{
					Type:       ep.kind,
					Value:      text[loc[0]:loc[1]],
					Confidence: entityConfidence,
					Start:      loc[0],
					End:        loc[1],
				})
			}
		}
	}
	return entities
}

var (
	priceRangeRe = regexp.MustCompile(`\$(\d+(?:\.\d{2})?)\s*(?:to|-)\s*\$?(\d+(?:\.\d{2})?)`)
	priceUnderRe = regexp.MustCompile(`(?i)\b(?:under|below|less than|maximum|max)\s*\$(\d+(?:\.\d{2})?)`)
	priceOverRe  = regexp.MustCompile(`(?i)\b(?:over|above|more than|minimum|min)\s*\$(\d+(?:\.\d{2})?)`)
	paramCatRe   = regexp.MustCompile(`(?i)\b(electronics|kitchen|home|clothing|books|sports|toys|beauty|health|automotive)\b`)
	paramBrandRe = regexp.MustCompile(`(?i)\b(apple|samsung|sony|lg|dell|hp|nike|adidas|keurig|ninja|starbucks|walmart)\b`)
)

// ExtractSearchParameters builds the parameter bag for a product search
// message: query, minPrice, maxPrice, category, and brand when present.
func ExtractSearchParameters(text string) map[string]any {
	params := map[string]any{"query": text}

	if m := priceRangeRe.FindStringSubmatch(text); m != nil {
		setFloat(params, "minPrice", m[1])
		setFloat(params, "maxPrice", m[2])
	}
	if m := priceUnderRe.FindStringSubmatch(text); m != nil {
		setFloat(params, "maxPrice", m[1])
	}
	if m := priceOverRe.FindStringSubmatch(text); m != nil {
		setFloat(params, "minPrice", m[1])
	}
	if m := paramCatRe.FindStringSubmatch(text); m != nil {
		params["category"] = m[1]
	}
	if m := paramBrandRe.FindStringSubmatch(text); m != nil {
		params["brand"] = m[1]
	}
	return params
}

func setFloat(params map[string]any, key, raw string) {
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		params[key] = v
	}
}
