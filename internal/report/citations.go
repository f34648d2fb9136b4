// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/pdiddy/product-research/pkg/types"
)

// linkPattern matches inline markdown links: [text](url).
var linkPattern = regexp.MustCompile(`\[[^\[\]]*\]\((https?://[^\s)]+)\)`)

// Citations returns the source URL of every product, in product order.
func Citations(products []types.ProductResearchResult) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.SourceURL
	}
	return out
}

// ValidateCitations checks that resp.Citations lines up one-to-one with
// resp.Products.
func ValidateCitations(resp *types.DeepResearchResponse) error {
	if len(resp.Citations) != len(resp.Products) {
		return fmt.Errorf("%d citations for %d products", len(resp.Citations), len(resp.Products))
	}
	for i, p := range resp.Products {
		if resp.Citations[i] != p.SourceURL {
			return fmt.Errorf("citation %d is %q, want %q", i, resp.Citations[i], p.SourceURL)
		}
	}
	return nil
}

// UncitedLinks returns the links in a markdown summary that are not among
// citations, sorted and without duplicates.
func UncitedLinks(md string, citations []string) []string {
	known := make(map[string]bool, len(citations))
	for _, c := range citations {
		known[c] = true
	}

	seen := make(map[string]bool)
	for _, m := range linkPattern.FindAllStringSubmatch(md, -1) {
		if !known[m[1]] {
			seen[m[1]] = true
		}
	}

	var out []string
	for u := range seen {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
