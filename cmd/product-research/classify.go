// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/product-research/internal/genai"
	"github.com/pdiddy/product-research/internal/intent"
	"github.com/pdiddy/product-research/internal/logging"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <message>",
	Short: "Classify a chat message into a shopping intent",
	Long: `Classify prints the intent, entities, action, and search parameters
for a chat message as JSON. Confident rule matches are returned directly;
otherwise the generative text service is consulted when configured.

Use --research to print the structured research intent instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ai, err := genai.New(cfg.GenAI)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log, os.Stderr)

	var out any
	if research, _ := cmd.Flags().GetBool("research"); research {
		ex := intent.Extractor{AI: ai, Log: log}
		out = ex.ExtractIntent(context.Background(), message)
	} else {
		cls := intent.Classifier{AI: ai, Log: log}
		out = cls.Classify(context.Background(), message)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

func init() {
	classifyCmd.Flags().Bool("research", false, "print the research intent (product type, features, constraints)")

	rootCmd.AddCommand(classifyCmd)
}
