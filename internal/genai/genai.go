// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai abstracts the generative text service used by the intent,
// sentiment, and report stages. Every stage checks HasCredential before
// calling Complete and falls back to deterministic logic when it is false.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/product-research/pkg/types"
)

// ErrNoCredential is returned by Complete when no credential is configured.
var ErrNoCredential = errors.New("generative text service has no credential")

// Completer turns a prompt into a single complete-text response.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	HasCredential() bool
}

// Disabled is the Completer used when no credential is configured.
type Disabled struct{}

// Complete always fails with ErrNoCredential.
func (Disabled) Complete(context.Context, string) (string, error) {
	return "", ErrNoCredential
}

// HasCredential always reports false.
func (Disabled) HasCredential() bool { return false }

// New builds the Completer selected by cfg.Provider, wrapped with retries.
// A hosted provider without an API key yields Disabled.
func New(cfg types.AIConfig) (Completer, error) {
	var c Completer
	switch cfg.Provider {
	case types.GenAIGemini, "":
		if cfg.APIKey == "" {
			return Disabled{}, nil
		}
		c = NewGemini(cfg)
	case types.GenAIOpenAI:
		if cfg.APIKey == "" {
			return Disabled{}, nil
		}
		c = NewOpenAI(cfg)
	case types.GenAIOllama:
		llm, err := NewOllama(cfg)
		if err != nil {
			return nil, err
		}
		c = llm
	default:
		return nil, fmt.Errorf("unknown generative text provider %q", cfg.Provider)
	}
	return WithRetry(c, cfg.MaxRetries), nil
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

type retrying struct {
	Completer
	maxRetries int
}

// WithRetry wraps c so failed calls are retried up to maxRetries times with
// exponential backoff. ErrNoCredential is never retried.
func WithRetry(c Completer, maxRetries int) Completer {
	if maxRetries <= 0 {
		return c
	}
	return retrying{Completer: c, maxRetries: maxRetries}
}

func (r retrying) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := r.Completer.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, ErrNoCredential) || ctx.Err() != nil {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", r.maxRetries, lastErr)
}

// CleanJSON strips markdown code fences and any prose surrounding the
// outermost JSON object or array in a model response.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	s = strings.TrimSpace(s)

	if s == "" || s[0] == '{' || s[0] == '[' {
		return s
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	if end := strings.LastIndexByte(s, closer); end > start {
		return s[start : end+1]
	}
	return s
}

// CompleteJSON calls c and decodes the cleaned response into v.
func CompleteJSON(ctx context.Context, c Completer, prompt string, v any) error {
	if c == nil || !c.HasCredential() {
		return ErrNoCredential
	}
	text, err := c.Complete(ctx, prompt)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(CleanJSON(text)), v); err != nil {
		return fmt.Errorf("parsing model JSON: %w", err)
	}
	return nil
}

// Available reports whether c is non-nil and has a credential.
func Available(c Completer) bool {
	return c != nil && c.HasCredential()
}

// Func adapts a plain function to Completer. It always reports a credential.
type Func func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// HasCredential always reports true.
func (Func) HasCredential() bool { return true }
