package models

import "time"

// SampleStatus describes how a single conversation sample ended.
type SampleStatus string

const (
	// StatusCompleted means the turn loop reached the configured maximum.
	StatusCompleted SampleStatus = "completed"
	// StatusExhausted means a participant deliberately stopped talking
	// before the turn maximum.
	StatusExhausted SampleStatus = "exhausted"
	// StatusFailed means a provider call failed and the sample was abandoned.
	StatusFailed SampleStatus = "failed"
)

// SampleResult captures one sample's outcome for the batch summary file.
type SampleResult struct {
	Index        int          `json:"index"`
	Status       SampleStatus `json:"status"`
	Turns        int          `json:"turns"`
	InputTokens  int          `json:"input_tokens"`
	OutputTokens int          `json:"output_tokens"`
	Cost         float64      `json:"cost"`
	Reconciled   bool         `json:"reconciled"`
	DurationMs   int64        `json:"duration_ms"`
	ErrorMsg     string       `json:"error,omitempty"`
}

// BatchSummary aggregates ledger totals across all samples in a run.
// It exists only as a run-level report and its sibling summary JSON file;
// the per-conversation records are the durable artifact.
type BatchSummary struct {
	ModelID      string         `json:"model_id"`
	Samples      int            `json:"samples"`
	Completed    int            `json:"completed"`
	Exhausted    int            `json:"exhausted"`
	Failed       int            `json:"failed"`
	InputTokens  int            `json:"input_tokens"`
	OutputTokens int            `json:"output_tokens"`
	TotalTokens  int            `json:"total_tokens"`
	TotalCost    float64        `json:"total_cost"`
	StartedAt    time.Time      `json:"started_at"`
	DurationMs   int64          `json:"duration_ms"`
	Results      []SampleResult `json:"results"`
}

// Finished returns the number of samples that produced a transcript.
func (s *BatchSummary) Finished() int {
	return s.Completed + s.Exhausted
}

// CostPerSample returns the average cost over finished samples, or zero
// when nothing finished.
func (s *BatchSummary) CostPerSample() float64 {
	n := s.Finished()
	if n == 0 {
		return 0
	}
	return s.TotalCost / float64(n)
}

// SampleCosts returns per-sample costs for finished samples, in run order.
func (s *BatchSummary) SampleCosts() []float64 {
	costs := make([]float64, 0, len(s.Results))
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			continue
		}
		costs = append(costs, r.Cost)
	}
	return costs
}
