// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// IntentType is one of the fixed shopping intents a message can carry.
type IntentType string

const (
	IntentProductSearch   IntentType = "product_search"
	IntentProductCompare  IntentType = "product_compare"
	IntentProductInfo     IntentType = "product_info"
	IntentAddToCart       IntentType = "add_to_cart"
	IntentRemoveFromCart  IntentType = "remove_from_cart"
	IntentViewCart        IntentType = "view_cart"
	IntentCheckout        IntentType = "checkout"
	IntentGreeting        IntentType = "greeting"
	IntentHelp            IntentType = "help"
	IntentComplaint       IntentType = "complaint"
	IntentGeneralQuestion IntentType = "general_question"
)

var knownIntents = map[IntentType]bool{
	IntentProductSearch:   true,
	IntentProductCompare:  true,
	IntentProductInfo:     true,
	IntentAddToCart:       true,
	IntentRemoveFromCart:  true,
	IntentViewCart:        true,
	IntentCheckout:        true,
	IntentGreeting:        true,
	IntentHelp:            true,
	IntentComplaint:       true,
	IntentGeneralQuestion: true,
}

// Valid reports whether t is a known intent.
func (t IntentType) Valid() bool {
	return knownIntents[t]
}

// Action is what the assistant should do in response to an intent.
type Action string

const (
	ActionSearchProducts    Action = "search_products"
	ActionShowProductDetail Action = "show_product_details"
	ActionAddToCart         Action = "add_to_cart"
	ActionRemoveFromCart    Action = "remove_from_cart"
	ActionShowCart          Action = "show_cart"
	ActionShowHelp          Action = "show_help"
	ActionProvideInfo       Action = "provide_info"
)

// EntityType classifies a span of user text.
type EntityType string

const (
	EntityProductName EntityType = "product_name"
	EntityCategory    EntityType = "category"
	EntityBrand       EntityType = "brand"
	EntityPrice       EntityType = "price"
	EntityColor       EntityType = "color"
	EntitySize        EntityType = "size"
	EntityQuantity    EntityType = "quantity"
	EntityFeature     EntityType = "feature"
	EntityLocation    EntityType = "location"
	EntityTime        EntityType = "time"
)

// Entity is a matched span within a message.
type Entity struct {
	Type       EntityType `json:"type" yaml:"type"`
	Value      string     `json:"value" yaml:"value"`
	Confidence float64    `json:"confidence" yaml:"confidence"`
	Start      int        `json:"start" yaml:"start"`
	End        int        `json:"end" yaml:"end"`
}

// IntentResult is the classifier's reading of one message.
type IntentResult struct {
	Intent     IntentType     `json:"intent" yaml:"intent"`
	Confidence float64        `json:"confidence" yaml:"confidence"`
	Entities   []Entity       `json:"entities" yaml:"entities"`
	Action     Action         `json:"action" yaml:"action"`
	Parameters map[string]any `json:"parameters" yaml:"parameters"`
}

// AssistantReply is what the assistant hands to the chat layer for a message.
type AssistantReply struct {
	Intent      IntentResult          `json:"intent" yaml:"intent"`
	Content     string                `json:"content" yaml:"content"`
	Research    *DeepResearchResponse `json:"research,omitempty" yaml:"research,omitempty"`
	Suggestions []string              `json:"suggestions" yaml:"suggestions"`
	FollowUps   []string              `json:"followUpQuestions" yaml:"follow_up_questions"`
	Reasoning   string                `json:"reasoning" yaml:"reasoning"`
}
