// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

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

// ruleConfidenceThreshold is the rule confidence above which the model is
// not consulted.
const ruleConfidenceThreshold = 0.8

var (
	greetingRe = regexp.MustCompile(`\b(hi|hello|hey|good morning|good afternoon|good evening)\b`)
	helpRe     = regexp.MustCompile(`\b(help|assist|support|how do|what can)\b`)
	cartRe     = regexp.MustCompile(`\b(cart|checkout|buy|purchase|order)\b`)
	cartAddRe  = regexp.MustCompile(`\b(add|put|place)\b`)
	cartDelRe  = regexp.MustCompile(`\b(remove|delete|take out)\b`)
	cartViewRe = regexp.MustCompile(`\b(show|view|check|what)\b`)
	searchRe   = regexp.MustCompile(`\b(find|search|look for|show me|get me|buy me|need|want)\b`)
	compareRe  = regexp.MustCompile(`\b(compare|vs|versus|difference|better|best)\b`)
)

// defaultActions maps each intent to the action taken when the model omits one.
var defaultActions = map[types.IntentType]types.Action{
	types.IntentProductSearch:   types.ActionSearchProducts,
	types.IntentProductCompare:  types.ActionShowProductDetail,
	types.IntentProductInfo:     types.ActionShowProductDetail,
	types.IntentAddToCart:       types.ActionAddToCart,
	types.IntentRemoveFromCart:  types.ActionRemoveFromCart,
	types.IntentViewCart:        types.ActionShowCart,
	types.IntentCheckout:        types.ActionShowCart,
	types.IntentGreeting:        types.ActionProvideInfo,
	types.IntentHelp:            types.ActionShowHelp,
	types.IntentComplaint:       types.ActionProvideInfo,
	types.IntentGeneralQuestion: types.ActionProvideInfo,
}

// Classifier maps chat messages onto shopping intents.
type Classifier struct {
	AI  genai.Completer
	Log zerolog.Logger
}

// Classify returns the rule-based result when it is confident, otherwise
// asks the generative service. Any model failure yields the rule result.
func (c *Classifier) Classify(ctx context.Context, message string) types.IntentResult {
	rule := ClassifyRuleBased(message)
	if rule.Confidence > ruleConfidenceThreshold || !genai.Available(c.AI) {
		return rule
	}

	res, err := c.classifyWithModel(ctx, message)
	if err != nil {
		c.Log.Warn().Err(err).Msg("intent classification failed, using rules")
		return rule
	}
	return res
}

type modelIntent struct {
	Intent     string         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Entities   []types.Entity `json:"entities"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

func (c *Classifier) classifyWithModel(ctx context.Context, message string) (types.IntentResult, error) {
	prompt, err := render(classifierPromptTmpl, struct{ Message string }{message})
	if err != nil {
		return types.IntentResult{}, fmt.Errorf("rendering prompt: %w", err)
	}

	var mi modelIntent
	if err := genai.CompleteJSON(ctx, c.AI, prompt, &mi); err != nil {
		return types.IntentResult{}, err
	}

	it := types.IntentType(strings.TrimSpace(mi.Intent))
	if !it.Valid() {
		return types.IntentResult{}, fmt.Errorf("model returned unknown intent %q", mi.Intent)
	}

	action := types.Action(strings.TrimSpace(mi.Action))
	if action == "" {
		action = defaultActions[it]
	}
	res := types.IntentResult{
		Intent:     it,
		Confidence: clamp01(mi.Confidence),
		Entities:   mi.Entities,
		Action:     action,
		Parameters: mi.Parameters,
	}
	if res.Entities == nil {
		res.Entities = []types.Entity{}
	}
	if res.Parameters == nil {
		res.Parameters = map[string]any{}
	}
	return res, nil
}

// ClassifyRuleBased classifies message with fixed regular expressions.
func ClassifyRuleBased(message string) types.IntentResult {
	lower := strings.ToLower(message)

	result := func(it types.IntentType, conf float64, entities bool, params map[string]any) types.IntentResult {
		r := types.IntentResult{
			Intent:     it,
			Confidence: conf,
			Entities:   []types.Entity{},
			Action:     defaultActions[it],
			Parameters: params,
		}
		if entities {
			r.Entities = ExtractEntities(message)
		}
		if r.Parameters == nil {
			r.Parameters = map[string]any{}
		}
		return r
	}

	switch {
	case greetingRe.MatchString(lower):
		return result(types.IntentGreeting, 0.9, false, nil)
	case helpRe.MatchString(lower):
		return result(types.IntentHelp, 0.8, false, nil)
	}

	if cartRe.MatchString(lower) {
		switch {
		case cartAddRe.MatchString(lower):
			return result(types.IntentAddToCart, 0.8, true, nil)
		case cartDelRe.MatchString(lower):
			return result(types.IntentRemoveFromCart, 0.8, true, nil)
		case cartViewRe.MatchString(lower):
			return result(types.IntentViewCart, 0.8, false, nil)
		}
	}

	switch {
	case searchRe.MatchString(lower):
		return result(types.IntentProductSearch, 0.8, true, ExtractSearchParameters(message))
	case compareRe.MatchString(lower):
		return result(types.IntentProductCompare, 0.7, true, nil)
	}
	return result(types.IntentGeneralQuestion, 0.5, true, nil)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
