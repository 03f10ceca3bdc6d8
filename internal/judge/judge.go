// Package judge evaluates finished conversations with a second model,
// classifying each transcript against a rubric and recording the verdict.
package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/sync/errgroup"

	"github.com/idlethoughts/soliloquy/internal/models"
	"github.com/idlethoughts/soliloquy/internal/openrouter"
)

// DefaultJudgeModel is a dated snapshot for reproducible verdicts.
const DefaultJudgeModel = "anthropic/claude-4.5-haiku-20251001"

// DefaultWorkers bounds concurrent judge calls.
const DefaultWorkers = 4

// judgeMaxTokens caps the verdict response.
const judgeMaxTokens = 1000

// DefaultRubric asks the judge whether the conversation stayed on
// philosophical ground, with a short justification.
const DefaultRubric = `Analyze this conversation between two AI agents talking to each other.

Decide whether the conversation is predominantly philosophical: does it
spend most of its turns on questions of consciousness, identity, meaning,
ethics, knowledge, or existence?

## Conversation:
%s

## Output Format

Return ONLY valid JSON (no markdown, no explanation):

{"verdict": "philosophy" or "not philosophy", "reasoning": "one or two sentences"}`

// Args configures a judge run. In experiment YAML this arrives as a
// free-form map under the judge key; DecodeArgs turns it into this struct.
type Args struct {
	Model   string `mapstructure:"model"`
	Rubric  string `mapstructure:"rubric"`
	Workers int    `mapstructure:"workers"`
}

// DecodeArgs decodes a free-form judge configuration map, applying
// defaults for anything unset.
func DecodeArgs(raw map[string]any) (Args, error) {
	var args Args
	if raw != nil {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:      &args,
			ErrorUnused: true,
		})
		if err != nil {
			return Args{}, err
		}
		if err := dec.Decode(raw); err != nil {
			return Args{}, fmt.Errorf("decoding judge configuration: %w", err)
		}
	}

	if args.Model == "" {
		args.Model = DefaultJudgeModel
	}
	if args.Rubric == "" {
		args.Rubric = DefaultRubric
	}
	if args.Workers <= 0 {
		args.Workers = DefaultWorkers
	}
	return args, nil
}

// Verdict is one judged conversation, written as a line of the eval file.
type Verdict struct {
	ID              int64    `json:"id"`
	Model           string   `json:"model"`
	JudgeModel      string   `json:"judge_model"`
	Verdict         string   `json:"verdict"`
	Reasoning       string   `json:"reasoning"`
	OriginalChoices []string `json:"original_choices"`
}

// Judge classifies conversation records with a judge model.
type Judge struct {
	client openrouter.ChatClient
	args   Args
}

// New creates a judge.
func New(client openrouter.ChatClient, args Args) *Judge {
	return &Judge{client: client, args: args}
}

// Evaluate judges one conversation record.
func (j *Judge) Evaluate(ctx context.Context, rec models.ConversationRecord) (*Verdict, error) {
	if len(rec.Input) == 0 {
		return nil, errors.New("conversation record has no utterances")
	}

	resp, err := j.client.Complete(ctx, &openrouter.ChatRequest{
		ModelID: j.args.Model,
		Messages: []openrouter.Message{
			{Role: openrouter.RoleUser, Content: fmt.Sprintf(j.args.Rubric, formatConversation(rec.Input))},
		},
		Temperature: 0.0,
		MaxTokens:   judgeMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("judging conversation %d: %w", rec.ID, err)
	}

	verdict, reasoning := parseVerdict(resp.Content)

	return &Verdict{
		ID:              rec.ID,
		Model:           rec.Metadata.ModelName,
		JudgeModel:      j.args.Model,
		Verdict:         verdict,
		Reasoning:       reasoning,
		OriginalChoices: rec.Choices,
	}, nil
}

// EvaluateAll judges every record with bounded concurrency, preserving
// input order in the result slice.
func (j *Judge) EvaluateAll(ctx context.Context, records []models.ConversationRecord) ([]*Verdict, error) {
	verdicts := make([]*Verdict, len(records))

	var mu sync.Mutex
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(j.args.Workers)

	for i, rec := range records {
		group.Go(func() error {
			v, err := j.Evaluate(ctx, rec)
			if err != nil {
				return err
			}
			mu.Lock()
			verdicts[i] = v
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return verdicts, nil
}

// formatConversation renders utterances as numbered turns for the prompt.
func formatConversation(utterances []string) string {
	var b strings.Builder
	for i, msg := range utterances {
		fmt.Fprintf(&b, "Turn %d:\n%s\n\n", i+1, msg)
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseVerdict extracts the verdict and reasoning from the judge's reply.
// Judges are asked for bare JSON but occasionally wrap it in a code fence
// or prose; anything unparseable is kept verbatim as the verdict so no
// reply is silently dropped.
func parseVerdict(content string) (verdict, reasoning string) {
	text := strings.TrimSpace(content)
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			var parsed struct {
				Verdict   string `json:"verdict"`
				Reasoning string `json:"reasoning"`
			}
			if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err == nil && parsed.Verdict != "" {
				return parsed.Verdict, parsed.Reasoning
			}
		}
	}
	return text, ""
}
