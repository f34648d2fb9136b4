// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	// priceRe matches the first decimal token in free text, optionally
	// preceded by a dollar sign.
	priceRe = regexp.MustCompile(`\$?([\d,]+\.?\d*)`)

	// ratingRe matches "4.5/5", "4 stars", and "4.2 out of 5".
	ratingRe = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(?:/\s*5|\s*stars?|\s*out of 5)`)
)

// ParsePrice extracts the first positive decimal token from s. Thousands
// separators are removed. It reports false when no price is found.
func ParsePrice(s string) (float64, bool) {
	for _, m := range priceRe.FindAllStringSubmatch(s, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// ParseRating extracts an "X out of 5" style rating from s.
func ParseRating(s string) (float64, bool) {
	m := ratingRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// parseRatingField reads a provider rating field that may be a bare number
// or a phrase.
func parseRatingField(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
		return v, true
	}
	return ParseRating(s)
}

// MaxRating is the top of the star scale.
const MaxRating = 5.0

// ClampRating bounds r to the 0-5 star scale.
func ClampRating(r float64) float64 {
	if math.IsNaN(r) {
		return 0
	}
	return math.Max(0, math.Min(MaxRating, r))
}

// FormatPrice renders a price in the form ParsePrice reads back.
func FormatPrice(p float64) string {
	return "$" + strconv.FormatFloat(p, 'f', -1, 64)
}

// FormatRating renders a rating in the form ParseRating reads back.
func FormatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64) + "/5"
}

// SourceLabel returns the hostname of link without a leading "www.", or
// "unknown" when link has no host.
func SourceLabel(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
