// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "github.com/pdiddy/product-research/pkg/types"

type replyTemplate struct {
	content     string
	suggestions []string
	followUps   []string
}

var openQuestions = []string{
	"What type of products are you interested in?",
	"Are you looking for something specific?",
	"Would you like me to show you our popular categories?",
}

var templates = map[types.IntentType]replyTemplate{
	types.IntentGreeting: {
		content: "Hello! I'm your Walmart shopping assistant. How can I help you find what you're looking for today?",
		suggestions: []string{
			"Find coffee makers under $100",
			"Show me bestselling headphones",
			"Search for kitchen appliances",
		},
		followUps: openQuestions,
	},
	types.IntentHelp: {
		content: "I'm here to help! I can assist you with finding products, comparing options, managing your cart, and answering questions about items. What would you like to do?",
		suggestions: []string{
			"Find products by category",
			"Compare similar products",
			"Check my cart",
		},
		followUps: []string{
			"What specific help do you need?",
			"Are you looking for products?",
			"Need assistance with your account?",
		},
	},
	types.IntentProductSearch: {
		content: "I'll help you find what you're looking for! Let me search for the best products that match your needs.",
		suggestions: []string{
			"Show me more options",
			"Filter by price range",
			"Compare top brands",
		},
		followUps: []string{
			"Any specific brand preference?",
			"What's your budget range?",
			"Any particular features you're looking for?",
		},
	},
	types.IntentProductCompare: {
		content: "I'll help you compare these products to find the best option for your needs.",
		suggestions: []string{
			"Show detailed comparison",
			"Find similar products",
			"Add to cart",
		},
		followUps: []string{
			"Which aspect is most important to you?",
			"Would you like to see more options?",
			"Do you have a preference between these?",
		},
	},
	types.IntentProductInfo: {
		content: "Here's the detailed information about this product.",
		suggestions: []string{
			"Show me more details",
			"Compare with similar products",
			"Add to cart",
		},
		followUps: []string{
			"Would you like to see similar products?",
			"Do you need any additional information?",
			"Are you ready to add this to your cart?",
		},
	},
	types.IntentAddToCart: {
		content: "I'll add this item to your cart right away.",
		suggestions: []string{
			"Continue shopping",
			"View cart",
			"Proceed to checkout",
		},
		followUps: []string{
			"Would you like to continue shopping?",
			"Do you need anything else?",
			"Ready to proceed to checkout?",
		},
	},
	types.IntentRemoveFromCart: {
		content: "I'll remove this item from your cart.",
		suggestions: []string{
			"Continue shopping",
			"Find similar products",
			"View cart",
		},
		followUps: []string{
			"Would you like to find a replacement?",
			"Any specific reason for removing?",
			"Need help finding alternatives?",
		},
	},
	types.IntentViewCart: {
		content: "Here's what's currently in your cart.",
		suggestions: []string{
			"Continue shopping",
			"Proceed to checkout",
			"Update quantities",
		},
		followUps: []string{
			"Ready to checkout?",
			"Need to update quantities?",
			"Want to continue shopping?",
		},
	},
	types.IntentCheckout: {
		content: "I'll help you proceed to checkout.",
		suggestions: []string{
			"Review order",
			"Change shipping",
			"Apply coupon",
		},
		followUps: []string{
			"Confirm shipping address?",
			"Choose payment method?",
			"Apply any coupons?",
		},
	},
	types.IntentComplaint: {
		content: "I understand your concern. Let me help resolve this issue.",
		suggestions: []string{
			"Contact support",
			"Return item",
			"Track order",
		},
		followUps: []string{
			"Would you like to speak to a manager?",
			"Can I help resolve this issue?",
			"Need assistance with returns?",
		},
	},
	types.IntentGeneralQuestion: {
		content: "I'm here to help with your shopping needs! Could you tell me more about what you're looking for?",
		suggestions: []string{
			"Find specific products",
			"Browse by category",
			"Get product recommendations",
		},
		followUps: openQuestions,
	},
}
