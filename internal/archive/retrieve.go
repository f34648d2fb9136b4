// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/product-research/pkg/types"
)

// QueryOptions filters archived runs.
type QueryOptions struct {
	// Query is matched against the query, report, and product names.
	// Empty lists runs newest first.
	Query string

	// Since drops runs created before it.
	Since time.Time

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Summary is one archived run without its full response.
type Summary struct {
	ID             string    `json:"id" yaml:"id"`
	Query          string    `json:"query" yaml:"query"`
	CreatedAt      time.Time `json:"createdAt" yaml:"created_at"`
	Policy         string    `json:"scoringPolicy" yaml:"scoring_policy"`
	Products       int       `json:"products" yaml:"products"`
	ProcessingTime int64     `json:"totalProcessingTime" yaml:"total_processing_time"`
	TopProduct     string    `json:"topProduct,omitempty" yaml:"top_product,omitempty"`
	TopScore       float64   `json:"topScore,omitempty" yaml:"top_score,omitempty"`
}

// List returns run summaries. A non-empty Query ranks matches by relevance;
// otherwise runs are ordered newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]Summary, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	query := strings.TrimSpace(opts.Query)
	var (
		qb     strings.Builder
		args   []any
		useFTS = query != "" && s.fts
	)

	qb.WriteString(
		`SELECT r.id, r.query, r.created_at, r.policy, r.product_count, r.processing_ms,
			p.name, p.overall_score
		FROM runs r`)
	if useFTS {
		qb.WriteString(` JOIN runs_fts ON runs_fts.rowid = r.rowid`)
	}
	qb.WriteString(` LEFT JOIN products p ON p.run_id = r.id AND p.position = 0 WHERE 1=1`)

	switch {
	case useFTS:
		qb.WriteString(` AND runs_fts MATCH ?`)
		args = append(args, ftsQuery(query))
	case query != "":
		qb.WriteString(` AND r.search_text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscape(query)+"%")
	}

	if !opts.Since.IsZero() {
		qb.WriteString(` AND r.created_at >= ?`)
		args = append(args, opts.Since.UTC().Format(time.RFC3339Nano))
	}

	if useFTS {
		qb.WriteString(` ORDER BY runs_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.created_at DESC`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var results []Summary
	for rows.Next() {
		var (
			sum       Summary
			createdAt string
			policy    sql.NullString
			topName   sql.NullString
			topScore  sql.NullFloat64
		)
		if err := rows.Scan(
			&sum.ID, &sum.Query, &createdAt, &policy, &sum.Products, &sum.ProcessingTime,
			&topName, &topScore,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		sum.Policy = policy.String
		sum.TopProduct = topName.String
		sum.TopScore = topScore.Float64
		results = append(results, sum)
	}
	return results, rows.Err()
}

// Search is List restricted to runs matching text.
func (s *Store) Search(ctx context.Context, text string, maxResults int) ([]Summary, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("search text is empty")
	}
	return s.List(ctx, QueryOptions{Query: text, MaxResults: maxResults})
}

// Get returns the full response for the run whose ID is id or starts with
// it. An ambiguous prefix is an error.
func (s *Store) Get(ctx context.Context, id string) (*types.DeepResearchResponse, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty ID", ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, response FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id = ? DESC LIMIT 2`,
		id, likeEscape(id)+"%", id,
	)
	if err != nil {
		return nil, fmt.Errorf("looking up run: %w", err)
	}
	defer rows.Close()

	var matches []string
	var body string
	for rows.Next() {
		var matchID, data string
		if err := rows.Scan(&matchID, &data); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if len(matches) == 0 {
			body = data
		}
		matches = append(matches, matchID)
		if matchID == id {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case len(matches) > 1 && matches[0] != id:
		return nil, fmt.Errorf("run ID prefix %q is ambiguous", id)
	}

	var resp types.DeepResearchResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", matches[0], err)
	}
	return &resp, nil
}

// ftsQuery quotes each term so user text cannot inject FTS5 operators.
func ftsQuery(text string) string {
	fields := strings.Fields(text)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}

func likeEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
