// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/product-research/pkg/types"
)

// Format selects how a research response is written.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTable    Format = "table"
)

// ParseFormat validates a format name. Empty means markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", "md":
		return FormatMarkdown, nil
	case FormatMarkdown, FormatHTML, FormatJSON, FormatYAML, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want markdown, html, json, yaml, or table)", s)
	}
}

var ugcPolicy = bluemonday.UGCPolicy()

// ToHTML renders markdown to sanitized HTML. Model-written reports pass
// through the UGC policy before they reach a browser.
func ToHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return ugcPolicy.Sanitize(string(markdown.Render(doc, renderer)))
}

// Markdown is the summary followed by a numbered source list.
func Markdown(resp *types.DeepResearchResponse) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(resp.ResearchSummary, "\n"))
	b.WriteString("\n")
	if len(resp.Citations) > 0 {
		b.WriteString("\n## Sources\n")
		for i, c := range resp.Citations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, c)
		}
	}
	fmt.Fprintf(&b, "\n_%s. Processing time: %dms._\n", resp.Methodology, resp.TotalProcessingTime)
	return b.String()
}

// Write renders resp to w in format f.
func Write(w io.Writer, resp *types.DeepResearchResponse, f Format) error {
	switch f {
	case FormatMarkdown, "":
		_, err := io.WriteString(w, Markdown(resp))
		return err
	case FormatHTML:
		_, err := io.WriteString(w, ToHTML(Markdown(resp)))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case FormatTable:
		_, err := io.WriteString(w, Table(resp.Products))
		return err
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

var tableColumns = []struct {
	title string
	width int
}{
	{"#", 3},
	{"Product", 40},
	{"Price", 11},
	{"Rating", 6},
	{"Sentiment", 9},
	{"Score", 5},
	{"Source", 16},
}

// Table renders ranked products as a fixed-width terminal table.
func Table(products []types.ProductResearchResult) string {
	if len(products) == 0 {
		return mutedStyle.Render("no products") + "\n"
	}

	var b strings.Builder
	header := make([]string, len(tableColumns))
	for i, c := range tableColumns {
		header[i] = headerStyle.Width(c.width).Render(c.title)
	}
	b.WriteString(strings.Join(header, " "))
	b.WriteString("\n")

	for i, p := range products {
		cells := []string{
			fmt.Sprintf("%d", i+1),
			p.Name,
			Money(p.Price),
			formatNumber(p.Rating),
			percent(p.SentimentScore, 0),
			fmt.Sprintf("%.2f", p.OverallScore),
			p.Source,
		}
		row := make([]string, len(cells))
		for j, cell := range cells {
			row[j] = fit(cell, tableColumns[j].width)
		}
		b.WriteString(strings.Join(row, " "))
		b.WriteString("\n")
	}
	return b.String()
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}
