// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pdiddy/product-research/pkg/types"
)

var (
	replyHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	replyMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Answer a chat message as the shopping assistant",
	Long: `Ask classifies a chat message and answers it. Product searches run
the full research pipeline when a search credential is configured; other
messages get the assistant's reply for their intent along with suggested
next steps.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc, release, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	reply, err := svc.HandleMessage(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reply)
	}
	printReply(reply)
	return nil
}

func printReply(reply *types.AssistantReply) {
	fmt.Println(replyMuted.Render(fmt.Sprintf("intent: %s (%.0f%%)", reply.Intent.Intent, reply.Intent.Confidence*100)))
	fmt.Println()
	fmt.Println(reply.Content)

	if len(reply.Suggestions) > 0 {
		fmt.Println()
		fmt.Println(replyHeader.Render("Suggestions"))
		for _, s := range reply.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
	if len(reply.FollowUps) > 0 {
		fmt.Println()
		fmt.Println(replyHeader.Render("Follow-up questions"))
		for _, q := range reply.FollowUps {
			fmt.Printf("  - %s\n", q)
		}
	}
	fmt.Println()
	fmt.Println(replyMuted.Render(reply.Reasoning))
}

func init() {
	askCmd.Flags().Bool("json", false, "print the reply as JSON")

	rootCmd.AddCommand(askCmd)
}
