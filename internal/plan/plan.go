// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan turns a ResearchIntent into a bounded ResearchPlan. Planning
// is a pure function of its input.
package plan

import (
	"strings"

	"github.com/pdiddy/product-research/pkg/types"
)

// DefaultExpectedResults is the planning constant stored on each plan.
const DefaultExpectedResults = 20

// queryBudget is the number of queries each strategy keeps.
var queryBudget = map[types.PlanStrategy]int{
	types.StrategyCatalog: 2,
	types.StrategyWeb:     3,
}

var (
	extractionTargets = []string{"product name", "price", "rating", "reviews", "availability"}
	rankingCriteria   = []string{"rating", "price", "reviews sentiment", "availability"}
)

// StrategyFor returns the strategy matching a search provider.
func StrategyFor(p types.SearchProvider) types.PlanStrategy {
	if p == types.ProviderWeb {
		return types.StrategyWeb
	}
	return types.StrategyCatalog
}

// Plan builds the queries for ri: category with brand, category with
// features, and category "best rated" with the price ceiling. Blank and
// duplicate candidates are dropped and the rest capped to the strategy's
// budget. expected <= 0 uses DefaultExpectedResults.
func Plan(ri types.ResearchIntent, strategy types.PlanStrategy, expected int) types.ResearchPlan {
	category := ri.Category
	c := ri.Constraints

	bestRated := category + " best rated"
	if ceiling := c.PriceCeiling(); ceiling != "" {
		bestRated += " under " + ceiling
	}

	candidates := []string{
		category + " " + c.Brand,
		category + " " + strings.Join(c.Features, " "),
		bestRated,
	}

	budget, ok := queryBudget[strategy]
	if !ok {
		budget = queryBudget[types.StrategyCatalog]
	}

	seen := make(map[string]bool)
	var queries []string
	for _, q := range candidates {
		q = strings.Join(strings.Fields(q), " ")
		key := strings.ToLower(q)
		if q == "" || seen[key] {
			continue
		}
		seen[key] = true
		queries = append(queries, q)
		if len(queries) == budget {
			break
		}
	}

	if expected <= 0 {
		expected = DefaultExpectedResults
	}
	return types.ResearchPlan{
		SearchQueries:     queries,
		ExtractionTargets: append([]string(nil), extractionTargets...),
		RankingCriteria:   append([]string(nil), rankingCriteria...),
		ExpectedResults:   expected,
	}
}
