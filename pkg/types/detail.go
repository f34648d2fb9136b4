// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ProductDetail is the richer per-item record returned by a catalog
// provider's detail endpoint.
type ProductDetail struct {
	ID             string          `json:"id" yaml:"id"`
	Title          string          `json:"title" yaml:"title"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	Images         []string        `json:"images,omitempty" yaml:"images,omitempty"`
	Brand          string          `json:"brand,omitempty" yaml:"brand,omitempty"`
	Price          float64         `json:"price" yaml:"price"`
	OriginalPrice  float64         `json:"originalPrice,omitempty" yaml:"original_price,omitempty"`
	Rating         float64         `json:"rating" yaml:"rating"`
	ReviewCount    int             `json:"reviewCount" yaml:"review_count"`
	InStock        bool            `json:"inStock" yaml:"in_stock"`
	ShippingInfo   string          `json:"shippingInfo,omitempty" yaml:"shipping_info,omitempty"`
	Seller         string          `json:"seller,omitempty" yaml:"seller,omitempty"`
	Specifications []Specification `json:"specifications,omitempty" yaml:"specifications,omitempty"`
	Reviews        []DetailReview  `json:"reviews,omitempty" yaml:"reviews,omitempty"`
}

// DetailReview is a review as delivered by the detail endpoint, before
// sentiment scoring.
type DetailReview struct {
	ID           string  `json:"id,omitempty" yaml:"id,omitempty"`
	Title        string  `json:"title,omitempty" yaml:"title,omitempty"`
	Text         string  `json:"text" yaml:"text"`
	Rating       float64 `json:"rating" yaml:"rating"`
	Date         string  `json:"date,omitempty" yaml:"date,omitempty"`
	ReviewerName string  `json:"reviewerName,omitempty" yaml:"reviewer_name,omitempty"`
	Verified     bool    `json:"verified,omitempty" yaml:"verified,omitempty"`
	HelpfulVotes int     `json:"helpfulVotes,omitempty" yaml:"helpful_votes,omitempty"`
}
