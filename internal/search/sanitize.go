// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// plainText strips all markup from s, decodes entities, and collapses
// whitespace.
func plainText(s string) string {
	if s == "" {
		return ""
	}
	clean := html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(clean), " ")
}
