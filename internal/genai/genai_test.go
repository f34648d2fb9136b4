// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/pdiddy/product-research/pkg/types"
)

func init() {
	backoffBase = time.Millisecond
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", "Here you go:\n{\"a\":1}\nThanks", `{"a":1}`},
		{"array", "```json\n[1,2]\n```", `[1,2]`},
		{"no json", "just words", "just words"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestCompleteJSON(t *testing.T) {
	var out struct {
		Sentiment string `json:"sentiment"`
	}

	err := CompleteJSON(context.Background(), Disabled{}, "p", &out)
	assert.ErrorIs(t, err, ErrNoCredential)

	fenced := Func(func(context.Context, string) (string, error) {
		return "```json\n{\"sentiment\":\"positive\"}\n```", nil
	})
	require.NoError(t, CompleteJSON(context.Background(), fenced, "p", &out))
	assert.Equal(t, "positive", out.Sentiment)

	garbage := Func(func(context.Context, string) (string, error) {
		return "not json at all", nil
	})
	assert.Error(t, CompleteJSON(context.Background(), garbage, "p", &out))
}

func TestWithRetry(t *testing.T) {
	var calls int32
	flaky := Func(func(context.Context, string) (string, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	got, err := WithRetry(flaky, 2).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, 0)
	_, err = WithRetry(flaky, 1).Complete(context.Background(), "p")
	assert.ErrorContains(t, err, "after 1 retries")
}

func TestWithRetry_NoCredentialNotRetried(t *testing.T) {
	var calls int32
	c := Func(func(context.Context, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", ErrNoCredential
	})
	_, err := WithRetry(c, 3).Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNoCredential)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNew(t *testing.T) {
	c, err := New(types.AIConfig{Provider: types.GenAIGemini})
	require.NoError(t, err)
	assert.False(t, c.HasCredential())

	c, err = New(types.AIConfig{Provider: types.GenAIOpenAI})
	require.NoError(t, err)
	assert.False(t, c.HasCredential())

	c, err = New(types.AIConfig{Provider: types.GenAIGemini, APIKey: "k"})
	require.NoError(t, err)
	assert.True(t, c.HasCredential())

	_, err = New(types.AIConfig{Provider: "bogus"})
	assert.ErrorContains(t, err, "bogus")
}

func TestGeminiComplete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "hello", req.Contents[0].Parts[0].Text)
		assert.Equal(t, 100, req.GenerationConfig.MaxOutputTokens)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hi there"}]}}]}`))
	}))
	defer ts.Close()

	old := geminiBaseURL
	geminiBaseURL = ts.URL
	defer func() { geminiBaseURL = old }()

	g := NewGemini(types.AIConfig{APIKey: "test-key", Model: "gemini-test", MaxTokens: 100})
	got, err := g.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", got)
}

func TestGeminiComplete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `boom`, "returned 500"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "no candidates"},
		{"bad json", http.StatusOK, `{`, "decoding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			old := geminiBaseURL
			geminiBaseURL = ts.URL
			defer func() { geminiBaseURL = old }()

			_, err := NewGemini(types.AIConfig{APIKey: "k"}).Complete(context.Background(), "p")
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	_, err := NewGemini(types.AIConfig{}).Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestOpenAIComplete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"answer"}}]}`))
	}))
	defer ts.Close()

	o := NewOpenAI(types.AIConfig{APIKey: "sk-test", Model: "gpt-test", BaseURL: ts.URL + "/v1"})
	got, err := o.Complete(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "answer", got)
}

type fakeModel struct {
	reply string
}

func (m *fakeModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return m.reply, nil
}

func TestLLMCompleter(t *testing.T) {
	l := &LLMCompleter{Model: &fakeModel{reply: "local reply"}}
	assert.True(t, l.HasCredential())

	got, err := l.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "local reply", got)

	_, err = (&LLMCompleter{}).Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNoCredential)
}
