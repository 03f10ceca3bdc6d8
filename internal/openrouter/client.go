// Package openrouter wraps the two OpenRouter API surfaces the harness
// needs: OpenAI-compatible chat completions and the per-generation
// accounting endpoint used for cost reconciliation.
package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// BaseURL is OpenRouter's OpenAI-compatible API root.
	BaseURL = "https://openrouter.ai/api/v1"

	generationEndpoint = BaseURL + "/generation"
)

// Message is one entry of the interleaved conversational context.
type Message struct {
	Role    string
	Content string
}

// Role labels for Message.
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// ChatRequest is a single blocking chat-completion round trip. The full
// prior conversation is resent on every call; there is no incremental
// context caching.
type ChatRequest struct {
	ModelID      string
	SystemPrompt string
	Messages     []Message
	Temperature  float64
	MaxTokens    int
}

// Usage is the token accounting OpenRouter returns inline with a call.
// These are normalized (GPT-tokenizer) counts; the authoritative native
// counts come later from the generation endpoint.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// ChatResponse is the result of one completion call. Content may be empty
// when the model chose to stop; FinishReason carries the provider's stop
// reason in that case.
type ChatResponse struct {
	Content      string
	FinishReason string
	Usage        Usage
	CallID       string
}

// ChatClient issues chat-completion calls.
type ChatClient interface {
	Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// GenerationStats is the authoritative per-call accounting from the
// provider, fetched after the fact by generation id.
type GenerationStats struct {
	NativePromptTokens     int
	NativeCompletionTokens int
	TotalCost              float64
}

// GenerationLookup fetches authoritative usage and cost for one call id.
type GenerationLookup interface {
	LookupGeneration(ctx context.Context, callID string) (*GenerationStats, error)
}

// Client talks to the live OpenRouter API. It implements both ChatClient
// and GenerationLookup.
type Client struct {
	api        *openai.Client
	apiKey     string
	httpClient *http.Client

	// generationURL is overridden in tests.
	generationURL string
}

// NewClient builds a client authenticated with the given API key.
func NewClient(apiKey string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = BaseURL

	return &Client{
		api:           openai.NewClientWithConfig(cfg),
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: 2 * time.Minute},
		generationURL: generationEndpoint,
	}
}

// Complete implements [ChatClient].
func (c *Client) Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.ModelID,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion for %s: %w", req.ModelID, err)
	}

	out := &ChatResponse{
		CallID: resp.ID,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}

	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.FinishReason = string(resp.Choices[0].FinishReason)
	}

	return out, nil
}

// generationResponse mirrors the subset of the generation endpoint's
// payload the ledger needs.
type generationResponse struct {
	Data struct {
		NativeTokensPrompt     int     `json:"native_tokens_prompt"`
		NativeTokensCompletion int     `json:"native_tokens_completion"`
		TotalCost              float64 `json:"total_cost"`
	} `json:"data"`
}

// LookupGeneration implements [GenerationLookup]. go-openai has no binding
// for this endpoint, so the request is issued directly.
func (c *Client) LookupGeneration(ctx context.Context, callID string) (*GenerationStats, error) {
	u := c.generationURL + "?id=" + url.QueryEscape(callID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation lookup for %s: %w", callID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("generation lookup for %s: status %d: %s", callID, resp.StatusCode, body)
	}

	var gen generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return nil, fmt.Errorf("decoding generation lookup for %s: %w", callID, err)
	}

	return &GenerationStats{
		NativePromptTokens:     gen.Data.NativeTokensPrompt,
		NativeCompletionTokens: gen.Data.NativeTokensCompletion,
		TotalCost:              gen.Data.TotalCost,
	}, nil
}
