// Package batch repeats the conversation driver over N independent
// samples, aggregates ledger totals, and reports progress to listeners.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/idlethoughts/soliloquy/internal/conversation"
	"github.com/idlethoughts/soliloquy/internal/models"
	"github.com/idlethoughts/soliloquy/internal/openrouter"
	"github.com/idlethoughts/soliloquy/internal/pricing"
)

// EventType identifies a progress event.
type EventType string

const (
	EventBatchStart     EventType = "batch_start"
	EventSampleStart    EventType = "sample_start"
	EventUtterance      EventType = "utterance"
	EventSampleComplete EventType = "sample_complete"
	EventBatchComplete  EventType = "batch_complete"
)

// ProgressEvent is a progress update delivered to listeners.
type ProgressEvent struct {
	EventType    EventType
	SampleNum    int
	TotalSamples int
	Status       models.SampleStatus
	Speaker      string
	Text         string
	DurationMs   int64
}

// ProgressListener receives progress updates.
type ProgressListener func(event ProgressEvent)

// Sink persists finished conversation records; satisfied by
// *transcript.Writer.
type Sink = conversation.Sink

// SampleError reports which sample failed and why. The underlying
// *conversation.ProviderCallError is reachable through errors.As.
type SampleError struct {
	Index int
	Total int
	Err   error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("sample %d/%d: %v", e.Index, e.Total, e.Err)
}

func (e *SampleError) Unwrap() error {
	return e.Err
}

// Controller runs a batch of conversation samples sequentially. Samples
// are independent; the only shared mutable resource is the sink, and the
// sequential schedule is what keeps it single-writer.
type Controller struct {
	spec   *models.ExperimentSpec
	table  *pricing.Table
	client openrouter.ChatClient
	lookup openrouter.GenerationLookup
	sink   Sink

	listeners []ProgressListener
}

// Option configures a Controller.
type Option func(*Controller)

// WithListener registers a progress listener.
func WithListener(l ProgressListener) Option {
	return func(c *Controller) {
		c.listeners = append(c.listeners, l)
	}
}

// WithGenerationLookup enables post-sample cost reconciliation.
func WithGenerationLookup(lookup openrouter.GenerationLookup) Option {
	return func(c *Controller) {
		c.lookup = lookup
	}
}

// NewController creates a batch controller.
func NewController(spec *models.ExperimentSpec, table *pricing.Table, client openrouter.ChatClient, sink Sink, opts ...Option) *Controller {
	c := &Controller{
		spec:   spec,
		table:  table,
		client: client,
		sink:   sink,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) notify(event ProgressEvent) {
	for _, l := range c.listeners {
		l(event)
	}
}

// Run executes the configured number of samples. On a provider failure
// the batch stops, but the returned summary still carries totals from
// samples that finished before the failure; the error identifies the
// failing sample.
func (c *Controller) Run(ctx context.Context) (*models.BatchSummary, error) {
	start := time.Now()
	summary := &models.BatchSummary{
		ModelID:   c.spec.ModelID,
		Samples:   c.spec.Samples,
		StartedAt: start,
	}

	c.notify(ProgressEvent{EventType: EventBatchStart, TotalSamples: c.spec.Samples})

	for i := 1; i <= c.spec.Samples; i++ {
		c.notify(ProgressEvent{EventType: EventSampleStart, SampleNum: i, TotalSamples: c.spec.Samples})

		result, sampleErr := c.runSample(ctx, i, summary)
		if sampleErr != nil {
			summary.Failed++
			summary.DurationMs = time.Since(start).Milliseconds()
			c.notify(ProgressEvent{
				EventType:    EventSampleComplete,
				SampleNum:    i,
				TotalSamples: c.spec.Samples,
				Status:       models.StatusFailed,
			})
			return summary, &SampleError{Index: i, Total: c.spec.Samples, Err: sampleErr}
		}

		c.notify(ProgressEvent{
			EventType:    EventSampleComplete,
			SampleNum:    i,
			TotalSamples: c.spec.Samples,
			Status:       result.Status,
			DurationMs:   summary.Results[len(summary.Results)-1].DurationMs,
		})
	}

	summary.DurationMs = time.Since(start).Milliseconds()
	c.notify(ProgressEvent{EventType: EventBatchComplete, TotalSamples: c.spec.Samples, DurationMs: summary.DurationMs})

	return summary, nil
}

// runSample drives one conversation and folds its ledgers into the
// summary. Token totals are recorded even for failed samples; the calls
// that did happen were still billed.
func (c *Controller) runSample(ctx context.Context, index int, summary *models.BatchSummary) (*conversation.Result, error) {
	start := time.Now()

	driver := conversation.NewDriver(c.client, c.lookup, c.spec, c.table, c.sink)
	driver.OnUtterance(func(speaker, text string) {
		c.notify(ProgressEvent{
			EventType:    EventUtterance,
			SampleNum:    index,
			TotalSamples: c.spec.Samples,
			Speaker:      speaker,
			Text:         text,
		})
	})

	result, err := driver.Run(ctx)

	prompt := driver.A.Ledger.PromptTokens + driver.B.Ledger.PromptTokens
	completion := driver.A.Ledger.CompletionTokens + driver.B.Ledger.CompletionTokens
	cost := driver.A.Ledger.CostEstimate + driver.B.Ledger.CostEstimate
	reconciled := driver.A.Ledger.Reconciled && driver.B.Ledger.Reconciled

	summary.InputTokens += prompt
	summary.OutputTokens += completion
	summary.TotalTokens += prompt + completion
	summary.TotalCost += cost

	sample := models.SampleResult{
		Index:        index,
		InputTokens:  prompt,
		OutputTokens: completion,
		Cost:         cost,
		Reconciled:   reconciled,
		DurationMs:   time.Since(start).Milliseconds(),
	}

	if err != nil {
		sample.Status = models.StatusFailed
		sample.Turns = driver.Turns()
		sample.ErrorMsg = err.Error()
		summary.Results = append(summary.Results, sample)
		return nil, err
	}

	sample.Status = result.Status
	sample.Turns = result.Turns
	summary.Results = append(summary.Results, sample)

	switch result.Status {
	case models.StatusCompleted:
		summary.Completed++
	case models.StatusExhausted:
		summary.Exhausted++
	}

	return result, nil
}

// WriteSummaryFile saves the batch summary (config plus per-sample
// results) as indented JSON next to the transcripts.
func WriteSummaryFile(path string, spec *models.ExperimentSpec, summary *models.BatchSummary) error {
	payload := struct {
		Config  *models.ExperimentSpec `json:"config"`
		Summary *models.BatchSummary   `json:"summary"`
	}{Config: spec, Summary: summary}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing batch summary: %w", err)
	}
	return nil
}
