// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/pdiddy/product-research/pkg/types"
)

// LLMCompleter adapts any langchaingo model to Completer. A local model
// needs no credential, so HasCredential is always true.
type LLMCompleter struct {
	Model   llms.Model
	Options []llms.CallOption
}

// NewOllama connects to a local Ollama server. BaseURL overrides the
// default server address.
func NewOllama(cfg types.AIConfig) (*LLMCompleter, error) {
	model := cfg.Model
	if model == "" {
		model = "llama3"
	}
	opts := []ollama.Option{ollama.WithModel(model)}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}

	callOpts := []llms.CallOption{llms.WithTemperature(cfg.Temperature)}
	if cfg.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(cfg.MaxTokens))
	}
	return &LLMCompleter{Model: llm, Options: callOpts}, nil
}

// HasCredential reports whether a model is attached.
func (l *LLMCompleter) HasCredential() bool { return l.Model != nil }

// Complete runs a single-prompt generation.
func (l *LLMCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if l.Model == nil {
		return "", ErrNoCredential
	}
	text, err := llms.GenerateFromSinglePrompt(ctx, l.Model, prompt, l.Options...)
	if err != nil {
		return "", fmt.Errorf("calling local model: %w", err)
	}
	return text, nil
}
