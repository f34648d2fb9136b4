// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/product-research/pkg/types"
)

// WalmartSource is the source label carried by catalog hits.
const WalmartSource = "Walmart"

// WalmartProvider queries the SerpAPI walmart engine. It also implements
// DetailFetcher through the walmart_product engine.
type WalmartProvider struct {
	serp serpClient
}

// NewWalmart returns a Walmart provider configured from cfg.
func NewWalmart(cfg types.SearchConfig) *WalmartProvider {
	return &WalmartProvider{serp: newSerpClient(cfg)}
}

// Name returns the provider identifier.
func (p *WalmartProvider) Name() string { return "walmart" }

type walmartSearchResponse struct {
	OrganicResults []walmartProduct `json:"organic_results"`
}

type walmartProduct struct {
	USItemID       flexString `json:"us_item_id"`
	ProductID      flexString `json:"product_id"`
	Title          string     `json:"title"`
	Thumbnail      string     `json:"thumbnail"`
	Rating         flexFloat  `json:"rating"`
	Reviews        flexFloat  `json:"reviews"`
	SellerName     string     `json:"seller_name"`
	ProductPageURL string     `json:"product_page_url"`
	Description    string     `json:"description"`
	OutOfStock     bool       `json:"out_of_stock"`
	PrimaryOffer   struct {
		OfferPrice flexFloat `json:"offer_price"`
		MinPrice   flexFloat `json:"min_price"`
	} `json:"primary_offer"`
}

// Search runs one catalog query and returns validated catalog hits.
func (p *WalmartProvider) Search(ctx context.Context, query string, resultCount int) (Response, error) {
	params := url.Values{
		"engine": {"walmart"},
		"query":  {query},
		"ps":     {strconv.Itoa(resultCount)},
		"page":   {"1"},
		"sort":   {"best_match"},
		"device": {"desktop"},
	}

	var wr walmartSearchResponse
	if err := p.serp.get(ctx, p.Name(), params, &wr); err != nil {
		return Response{}, err
	}

	var hits []types.RawSearchHit
	for _, wp := range wr.OrganicResults {
		if hit, ok := wp.toHit(); ok {
			hits = append(hits, hit)
		}
	}
	return Response{Hits: hits}, nil
}

// toHit validates a catalog product. Title and product page are required.
func (wp walmartProduct) toHit() (types.RawSearchHit, bool) {
	title := plainText(wp.Title)
	if title == "" || wp.ProductPageURL == "" {
		return types.RawSearchHit{}, false
	}
	id := string(wp.USItemID)
	if id == "" {
		id = string(wp.ProductID)
	}
	return types.RawSearchHit{
		Kind:         types.HitCatalog,
		Title:        title,
		Link:         wp.ProductPageURL,
		Source:       WalmartSource,
		Price:        float64(wp.PrimaryOffer.OfferPrice),
		Rating:       float64(wp.Rating),
		ReviewsCount: int(wp.Reviews),
		Thumbnail:    wp.Thumbnail,
		ProductID:    id,
		Seller:       wp.SellerName,
		Description:  plainText(wp.Description),
		OutOfStock:   wp.OutOfStock,
	}, true
}

type walmartDetailResponse struct {
	Product *walmartDetailProduct `json:"product"`
	Reviews []walmartDetailReview `json:"reviews"`
}

type walmartDetailProduct struct {
	USItemID      flexString   `json:"us_item_id"`
	ProductID     flexString   `json:"product_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	AboutThisItem []string     `json:"about_this_item"`
	Images        []string     `json:"images"`
	Thumbnail     string       `json:"thumbnail"`
	Brand         string       `json:"brand"`
	Price         flexFloat    `json:"price"`
	OriginalPrice flexFloat    `json:"original_price"`
	Rating        flexFloat    `json:"rating"`
	ReviewsCount  flexFloat    `json:"reviews_count"`
	Reviews       flexFloat    `json:"reviews"`
	OutOfStock    bool         `json:"out_of_stock"`
	ShippingInfo  string       `json:"shipping_info"`
	SellerName    string       `json:"seller_name"`
	Specs         []detailSpec `json:"specifications"`
	PrimaryOffer  struct {
		OfferPrice flexFloat `json:"offer_price"`
		MinPrice   flexFloat `json:"min_price"`
	} `json:"primary_offer"`
}

type detailSpec struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

type walmartDetailReview struct {
	ID               flexString `json:"id"`
	Title            string     `json:"title"`
	Text             string     `json:"text"`
	ReviewText       string     `json:"review_text"`
	Rating           flexFloat  `json:"rating"`
	Date             string     `json:"date"`
	ReviewDate       string     `json:"review_date"`
	ReviewerName     string     `json:"reviewer_name"`
	VerifiedPurchase bool       `json:"verified_purchase"`
	HelpfulVotes     flexFloat  `json:"helpful_votes"`
}

// ProductDetail fetches the per-item record for productID. A response
// without a product title is rejected.
func (p *WalmartProvider) ProductDetail(ctx context.Context, productID string) (*types.ProductDetail, error) {
	params := url.Values{
		"engine":     {"walmart_product"},
		"product_id": {productID},
		"device":     {"desktop"},
	}

	var dr walmartDetailResponse
	if err := p.serp.get(ctx, p.Name()+"_product", params, &dr); err != nil {
		return nil, err
	}
	if dr.Product == nil || strings.TrimSpace(dr.Product.Title) == "" {
		return nil, fmt.Errorf("product %s: detail response has no product", productID)
	}
	return dr.toDetail(productID), nil
}

func (dr walmartDetailResponse) toDetail(requestedID string) *types.ProductDetail {
	wp := dr.Product

	id := firstNonEmpty(string(wp.USItemID), string(wp.ProductID), requestedID)
	desc := wp.Description
	if desc == "" {
		desc = strings.Join(wp.AboutThisItem, " ")
	}
	images := wp.Images
	if len(images) == 0 && wp.Thumbnail != "" {
		images = []string{wp.Thumbnail}
	}
	price := float64(wp.Price)
	if price == 0 {
		price = float64(wp.PrimaryOffer.OfferPrice)
	}
	original := float64(wp.OriginalPrice)
	if original == 0 {
		original = float64(wp.PrimaryOffer.MinPrice)
	}
	count := int(wp.ReviewsCount)
	if count == 0 {
		count = int(wp.Reviews)
	}

	d := &types.ProductDetail{
		ID:            id,
		Title:         plainText(wp.Title),
		Description:   plainText(desc),
		Images:        images,
		Brand:         wp.Brand,
		Price:         price,
		OriginalPrice: original,
		Rating:        float64(wp.Rating),
		ReviewCount:   count,
		InStock:       !wp.OutOfStock,
		ShippingInfo:  wp.ShippingInfo,
		Seller:        firstNonEmpty(wp.SellerName, WalmartSource),
	}

	for _, s := range wp.Specs {
		name := firstNonEmpty(s.Name, s.Key)
		value := firstNonEmpty(s.Value, s.Description)
		if name != "" && value != "" {
			d.Specifications = append(d.Specifications, types.Specification{Name: name, Value: value})
		}
	}

	for i, r := range dr.Reviews {
		d.Reviews = append(d.Reviews, types.DetailReview{
			ID:           firstNonEmpty(string(r.ID), fmt.Sprintf("%s-%d", id, i)),
			Title:        plainText(r.Title),
			Text:         plainText(firstNonEmpty(r.Text, r.ReviewText)),
			Rating:       float64(r.Rating),
			Date:         firstNonEmpty(r.Date, r.ReviewDate),
			ReviewerName: firstNonEmpty(r.ReviewerName, "Anonymous"),
			Verified:     r.VerifiedPurchase,
			HelpfulVotes: int(r.HelpfulVotes),
		})
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
