// Package conversation implements the self-conversation experiment: two
// participants backed by the same model alternating turns until a maximum
// is reached or one of them stops talking.
package conversation

import (
	"context"
	"fmt"

	"github.com/idlethoughts/soliloquy/internal/ledger"
	"github.com/idlethoughts/soliloquy/internal/openrouter"
	"github.com/idlethoughts/soliloquy/internal/pricing"
)

// Participant is one conversational identity. It owns its history and its
// ledger outright; the partner's history is only ever passed in as a
// read-only snapshot.
type Participant struct {
	History      []string
	ModelID      string
	Temperature  float64
	SystemPrompt string
	Ledger       *ledger.Ledger

	client    openrouter.ChatClient
	maxTokens int
}

// NewParticipant creates a participant with an empty history and a fresh
// ledger.
func NewParticipant(client openrouter.ChatClient, spec Settings, table *pricing.Table) *Participant {
	return &Participant{
		ModelID:      spec.ModelID,
		Temperature:  spec.Temperature,
		SystemPrompt: spec.SystemPrompt,
		Ledger:       ledger.New(table),
		client:       client,
		maxTokens:    spec.MaxTokens,
	}
}

// Settings are the per-participant parameters, fixed for its lifetime.
type Settings struct {
	ModelID      string
	Temperature  float64
	SystemPrompt string
	MaxTokens    int
}

// interleave builds the message view a participant sends with each call:
// its own utterances labeled assistant, the partner's labeled user,
// zipped oldest-first until the longer history is exhausted. The whole
// prior conversation is resent every call.
func interleave(self, partner []string) []openrouter.Message {
	n := len(self)
	if len(partner) > n {
		n = len(partner)
	}

	messages := make([]openrouter.Message, 0, len(self)+len(partner))
	for i := 0; i < n; i++ {
		if i < len(self) {
			messages = append(messages, openrouter.Message{Role: openrouter.RoleAssistant, Content: self[i]})
		}
		if i < len(partner) {
			messages = append(messages, openrouter.Message{Role: openrouter.RoleUser, Content: partner[i]})
		}
	}
	return messages
}

// Respond produces this participant's next utterance given the partner's
// current history. On success exactly one utterance is appended to
// History and the call's usage is recorded in the ledger. A response with
// no content signals ErrConversationExhausted; nothing is appended in
// that case.
func (p *Participant) Respond(ctx context.Context, partnerHistory []string) (string, error) {
	resp, err := p.client.Complete(ctx, &openrouter.ChatRequest{
		ModelID:      p.ModelID,
		SystemPrompt: p.SystemPrompt,
		Messages:     interleave(p.History, partnerHistory),
		Temperature:  p.Temperature,
		MaxTokens:    p.maxTokens,
	})
	if err != nil {
		return "", err
	}

	// Usage is billed whether or not content came back.
	p.Ledger.Record(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.CallID, p.ModelID)

	if resp.Content == "" {
		return "", fmt.Errorf("%w: stop reason %q", ErrConversationExhausted, resp.FinishReason)
	}

	p.History = append(p.History, resp.Content)
	return resp.Content, nil
}
