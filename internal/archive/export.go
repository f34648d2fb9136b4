// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is one archived run with its ranked products.
type ExportEntry struct {
	ID        string          `json:"id" yaml:"id"`
	Query     string          `json:"query" yaml:"query"`
	CreatedAt time.Time       `json:"createdAt" yaml:"created_at"`
	Policy    string          `json:"scoringPolicy" yaml:"scoring_policy"`
	Products  []ExportProduct `json:"products" yaml:"products"`
}

// ExportProduct holds the product fields included in each export entry.
type ExportProduct struct {
	Name         string  `json:"name" yaml:"name"`
	Price        float64 `json:"price" yaml:"price"`
	Rating       float64 `json:"rating" yaml:"rating"`
	OverallScore float64 `json:"overallScore" yaml:"overall_score"`
	SourceURL    string  `json:"sourceUrl" yaml:"source_url"`
}

const exportLimit = 100000

// Export writes the runs matching opts to w as "yaml" (default) or "json".
func (s *Store) Export(ctx context.Context, w io.Writer, opts QueryOptions, format string) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	switch format {
	case "", "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	runs, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(runs))
	for i, r := range runs {
		products, err := s.products(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		entries[i] = ExportEntry{
			ID:        r.ID,
			Query:     r.Query,
			CreatedAt: r.CreatedAt,
			Policy:    r.Policy,
			Products:  products,
		}
	}
	return entries, nil
}

func (s *Store) products(ctx context.Context, runID string) ([]ExportProduct, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, price, rating, overall_score, source_url
		 FROM products WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []ExportProduct{}
	for rows.Next() {
		var (
			p   ExportProduct
			url sql.NullString
		)
		if err := rows.Scan(&p.Name, &p.Price, &p.Rating, &p.OverallScore, &url); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		p.SourceURL = url.String
		products = append(products, p)
	}
	return products, rows.Err()
}
