// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"

	"github.com/pdiddy/product-research/internal/intent"
	"github.com/pdiddy/product-research/internal/report"
	"github.com/pdiddy/product-research/pkg/types"
)

const researchConfidence = 0.95

var (
	researchSuggestions = []string{
		"Show me more details about these products",
		"Compare the top 3 products",
		"Find similar products in different price ranges",
		"Search for products in other categories",
	}
	researchFollowUps = []string{
		"Would you like me to find more options in this category?",
		"Do you want to see detailed comparisons?",
		"Are you interested in products from specific brands?",
	}
)

// HandleMessage answers one chat message. Product searches run a full
// research pass when a search credential is configured; a failed pass and
// every other intent get the canned reply for the intent. Only rate limiting
// and cancellation are errors.
func (s *Service) HandleMessage(ctx context.Context, text string) (*types.AssistantReply, error) {
	if !s.limiter.Allow() {
		return nil, ErrRateLimited
	}

	r := s.snapshot()
	cls := intent.Classifier{AI: r.ai, Log: r.log}
	res := cls.Classify(ctx, text)

	if res.Intent == types.IntentProductSearch && s.HasCredentials() {
		resp, err := s.ConductDeepResearch(ctx, text)
		if err == nil {
			return researchReply(res, resp), nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		r.log.Warn().Err(err).Msg("deep research failed, answering from template")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return TemplateReply(res), nil
}

func researchReply(res types.IntentResult, resp *types.DeepResearchResponse) *types.AssistantReply {
	res.Confidence = researchConfidence
	res.Action = types.ActionSearchProducts

	content := resp.ResearchSummary
	if content == "" {
		content = "Conducting Deep Research to find the best products for you..."
	}
	return &types.AssistantReply{
		Intent:      res,
		Content:     content,
		Research:    resp,
		Suggestions: append([]string(nil), researchSuggestions...),
		FollowUps:   append([]string(nil), researchFollowUps...),
		Reasoning: fmt.Sprintf("Deep Research conducted: %s. Processing time: %dms",
			resp.Methodology, resp.TotalProcessingTime),
	}
}

// TemplateReply builds the canned reply for a classified message.
func TemplateReply(res types.IntentResult) *types.AssistantReply {
	t, ok := templates[res.Intent]
	if !ok {
		t = templates[types.IntentGeneralQuestion]
	}
	return &types.AssistantReply{
		Intent:      res,
		Content:     t.content,
		Suggestions: append([]string(nil), t.suggestions...),
		FollowUps:   append([]string(nil), t.followUps...),
		Reasoning:   "Generated from template",
	}
}

// CompareReply renders a side-by-side pick list for ranked products.
func CompareReply(res types.IntentResult, resp *types.DeepResearchResponse) *types.AssistantReply {
	reply := TemplateReply(res)
	if resp != nil && len(resp.Products) > 0 {
		reply.Content = templates[types.IntentProductCompare].content + "\n\n" + report.Comparison(resp.Products)
		reply.Research = resp
	}
	return reply
}
