// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/product-research/internal/archive"
	"github.com/pdiddy/product-research/internal/report"
	"github.com/pdiddy/product-research/internal/secrets"
	"github.com/pdiddy/product-research/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "Research products for a shopping request and print a ranked report",
	Long: `Research runs the full pipeline for a free-text shopping request:
intent extraction, search planning, catalog or web search, product and review
extraction, sentiment scoring, ranking, and report generation.

The report is printed as markdown by default. Use --format for HTML, JSON,
YAML, or a terminal table, and --save to keep the run in the archive.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("query is empty")
	}

	formatName, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyResearchFlags(cmd, &cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc, release, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	if !svc.HasCredentials() {
		return fmt.Errorf("no search credential: add %s to the secrets directory or set SERPAPI_API_KEY", secrets.SerpAPIKey)
	}

	resp, err := svc.ConductDeepResearch(ctx, query)
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := saveRun(ctx, cfg.Archive, resp); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved run %s\n", resp.RunID)
	}

	return report.Write(os.Stdout, resp, format)
}

// applyResearchFlags overlays command-line overrides on cfg.
func applyResearchFlags(cmd *cobra.Command, cfg *types.Config) {
	if cmd.Flags().Changed("policy") {
		policy, _ := cmd.Flags().GetString("policy")
		cfg.Ranking.Policy = types.ScoringPolicy(policy)
	}
	if cmd.Flags().Changed("timeout") {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		cfg.Research.Timeout = timeout
	}
	if cmd.Flags().Changed("provider") {
		provider, _ := cmd.Flags().GetString("provider")
		cfg.Search.Provider = types.SearchProvider(provider)
	}
	if cmd.Flags().Changed("no-details") {
		noDetails, _ := cmd.Flags().GetBool("no-details")
		cfg.Research.FetchDetails = !noDetails
	}
}

func saveRun(ctx context.Context, cfg types.ArchiveConfig, resp *types.DeepResearchResponse) error {
	store, err := archive.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(ctx, resp)
}

func init() {
	researchCmd.Flags().String("format", "markdown", "output format: markdown, html, json, yaml, table")
	researchCmd.Flags().String("policy", "auto", "scoring policy: auto, basic, enhanced")
	researchCmd.Flags().Duration("timeout", 2*time.Minute, "deadline for the whole run (0 = none)")
	researchCmd.Flags().String("provider", "walmart", "search provider: walmart or web")
	researchCmd.Flags().Bool("no-details", false, "skip per-item detail fetches")
	researchCmd.Flags().Bool("save", false, "store the run in the archive")

	rootCmd.AddCommand(researchCmd)
}
