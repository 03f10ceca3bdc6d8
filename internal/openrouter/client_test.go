package openrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupGeneration(t *testing.T) {
	var gotAuth, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"native_tokens_prompt":123,"native_tokens_completion":456,"total_cost":0.0123}}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test")
	c.generationURL = srv.URL

	stats, err := c.LookupGeneration(context.Background(), "gen-abc/123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if gotID != "gen-abc/123" {
		t.Errorf("id query parameter = %q", gotID)
	}
	if stats.NativePromptTokens != 123 || stats.NativeCompletionTokens != 456 {
		t.Errorf("unexpected token counts: %+v", stats)
	}
	if stats.TotalCost != 0.0123 {
		t.Errorf("unexpected cost: %g", stats.TotalCost)
	}
}

func TestLookupGeneration_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("sk-test")
	c.generationURL = srv.URL

	if _, err := c.LookupGeneration(context.Background(), "gen-1"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestMockClient_Sequence(t *testing.T) {
	mock := NewMockClient()

	resp, err := mock.Complete(context.Background(), &ChatRequest{ModelID: "test/model"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.CallID != "gen-0001" {
		t.Errorf("call id = %q", resp.CallID)
	}
	if resp.Content == "" {
		t.Error("expected content")
	}
	if resp.Usage.PromptTokens != 10 || resp.Usage.CompletionTokens != 20 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}

	// Every call has lookup stats, including empty ones.
	stats, err := mock.LookupGeneration(context.Background(), "gen-0001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.NativePromptTokens != 11 || stats.NativeCompletionTokens != 22 {
		t.Errorf("unexpected native counts: %+v", stats)
	}

	if mock.Calls() != 1 {
		t.Errorf("Calls() = %d", mock.Calls())
	}
}

func TestMockClient_Exhaustion(t *testing.T) {
	mock := NewMockClient()
	mock.ExhaustAfter = 1

	if resp, _ := mock.Complete(context.Background(), &ChatRequest{}); resp.Content == "" {
		t.Error("first call should have content")
	}

	resp, err := mock.Complete(context.Background(), &ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "" || resp.FinishReason != "stop" {
		t.Errorf("expected empty content with stop reason, got %+v", resp)
	}

	// The empty call is still billed and still looked up.
	if _, err := mock.LookupGeneration(context.Background(), resp.CallID); err != nil {
		t.Errorf("stats missing for exhausted call: %v", err)
	}
}

func TestMockClient_UnknownGeneration(t *testing.T) {
	mock := NewMockClient()
	if _, err := mock.LookupGeneration(context.Background(), "gen-9999"); err == nil {
		t.Fatal("expected error for unknown generation id")
	}
}
