package openrouter

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is an in-process stand-in for the live API, used by tests
// and by `run --mock`. It produces deterministic responses and serves
// generation lookups from a table it fills as calls happen.
type MockClient struct {
	mu sync.Mutex

	// ExhaustAfter, when > 0, makes every call past the Nth return empty
	// content with a stop reason, imitating a model that chose to stop.
	ExhaustAfter int

	// FailAfter, when > 0, makes every call past the Nth return an error.
	FailAfter int

	// FailLookups lists call ids whose generation lookup should fail.
	FailLookups map[string]bool

	// TokensPerCall fixes the usage reported per call (default 10/20).
	PromptTokensPerCall     int
	CompletionTokensPerCall int

	calls int
	stats map[string]*GenerationStats

	// Requests records every chat request, in call order.
	Requests []*ChatRequest
}

// NewMockClient creates a mock with defaults suitable for most tests.
func NewMockClient() *MockClient {
	return &MockClient{
		PromptTokensPerCall:     10,
		CompletionTokensPerCall: 20,
		stats:                   make(map[string]*GenerationStats),
	}
}

// Complete implements [ChatClient].
func (m *MockClient) Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.Requests = append(m.Requests, req)

	if m.FailAfter > 0 && m.calls > m.FailAfter {
		return nil, fmt.Errorf("mock provider failure on call %d", m.calls)
	}

	callID := fmt.Sprintf("gen-%04d", m.calls)
	resp := &ChatResponse{
		CallID: callID,
		Usage: Usage{
			PromptTokens:     m.PromptTokensPerCall,
			CompletionTokens: m.CompletionTokensPerCall,
		},
	}

	// The generation endpoint reports native token counts, which differ
	// from the normalized inline usage; skew them so reconciliation tests
	// can tell the two apart. Empty completions are billed too, so stats
	// exist for every call.
	m.stats[callID] = &GenerationStats{
		NativePromptTokens:     m.PromptTokensPerCall + 1,
		NativeCompletionTokens: m.CompletionTokensPerCall + 2,
		TotalCost:              0.001,
	}

	resp.FinishReason = "stop"
	if m.ExhaustAfter > 0 && m.calls > m.ExhaustAfter {
		return resp, nil
	}

	resp.Content = fmt.Sprintf("Mock reply %d to %d prior message(s).", m.calls, len(req.Messages))
	return resp, nil
}

// LookupGeneration implements [GenerationLookup].
func (m *MockClient) LookupGeneration(ctx context.Context, callID string) (*GenerationStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailLookups[callID] {
		return nil, fmt.Errorf("mock lookup failure for %s", callID)
	}

	stats, ok := m.stats[callID]
	if !ok {
		return nil, fmt.Errorf("unknown generation id %s", callID)
	}
	return stats, nil
}

// Calls returns how many chat completions have been issued.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// SeedStats registers generation stats for a call id, for tests that
// exercise the ledger without going through Complete.
func (m *MockClient) SeedStats(callID string, stats *GenerationStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[callID] = stats
}
