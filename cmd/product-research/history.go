// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/product-research/internal/archive"
	"github.com/pdiddy/product-research/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse archived research runs (list, show, search, export)",
	Long: `History manages the local SQLite archive of research runs saved with
research --save. Use subcommands to list recent runs, print one in full,
search them by text, or export them.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		opts := archive.QueryOptions{}
		opts.MaxResults, _ = cmd.Flags().GetInt("limit")
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			opts.Since = time.Now().Add(-since)
		}

		runs, err := store.List(context.Background(), opts)
		if err != nil {
			return err
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return formatRuns(runs, jsonOutput)
	},
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print an archived run; a unique ID prefix is enough",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}

		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		resp, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		return report.Write(os.Stdout, resp, format)
	},
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Full-text search over archived queries, reports, and product names",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.Search(context.Background(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return formatRuns(runs, jsonOutput)
	},
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived runs to YAML or JSON",
	Long: `Export writes every archived run (or those matching --query) with its
ranked products. Output goes to stdout unless --output names a file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		query, _ := cmd.Flags().GetString("query")
		output, _ := cmd.Flags().GetString("output")

		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		w := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}

		if err := store.Export(context.Background(), w, archive.QueryOptions{Query: query}, format); err != nil {
			return err
		}
		if output != "" {
			fmt.Fprintf(os.Stderr, "Exported to %s\n", output)
		}
		return nil
	},
}

// --- delete subcommand ---

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Remove an archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Delete(context.Background(), args[0])
	},
}

// --- shared helpers ---

func openArchive() (*archive.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return archive.Open(cfg.Archive)
}

func formatRuns(runs []archive.Summary, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-8s  %-16s  %-30s  %-8s  %-30s  %s\n",
		"ID", "Created", "Query", "Products", "Top product", "Score")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(os.Stdout, "%-8s  %-16s  %-30s  %-8d  %-30s  %.0f%%\n",
			id, r.CreatedAt.Local().Format("2006-01-02 15:04"),
			clip(r.Query, 30), r.Products, clip(r.TopProduct, 30), r.TopScore*100)
	}

	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum runs to list")
	historyListCmd.Flags().Duration("since", 0, "only runs newer than this (e.g. 24h)")
	historyListCmd.Flags().Bool("json", false, "output runs as JSON")

	historyShowCmd.Flags().String("format", "markdown", "output format: markdown, html, json, yaml, table")

	historySearchCmd.Flags().Int("limit", 20, "maximum runs to return")
	historySearchCmd.Flags().Bool("json", false, "output runs as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().String("query", "", "full-text filter for a partial export")
	historyExportCmd.Flags().String("output", "", "write to this file instead of stdout")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyDeleteCmd)

	rootCmd.AddCommand(historyCmd)
}
