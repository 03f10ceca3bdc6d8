package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/idlethoughts/soliloquy/internal/models"
	"github.com/idlethoughts/soliloquy/internal/openrouter"
	"github.com/idlethoughts/soliloquy/internal/pricing"
)

// State is the driver's lifecycle position.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateTerminated State = "terminated"
)

// Sink persists one finished conversation record.
type Sink interface {
	Append(record models.ConversationRecord) error
}

// UtteranceFunc observes each utterance as it is produced. Speaker is "A"
// or "B"; the scripted greeting is reported for "B" before any call.
type UtteranceFunc func(speaker, text string)

// Result describes a terminal conversation.
type Result struct {
	Status models.SampleStatus
	Turns  int
	Record models.ConversationRecord
}

// Driver runs one conversation sample between two participants backed by
// the same model. It owns both participants; each turn is two sequential
// blocking calls (A responds to B, then B responds to A), so utterances
// are strictly ordered and every call's input depends on the previous
// call's output.
type Driver struct {
	A, B *Participant

	spec   *models.ExperimentSpec
	lookup openrouter.GenerationLookup
	sink   Sink

	state       State
	turn        int
	onUtterance UtteranceFunc
}

// NewDriver builds a fresh driver for one sample. Both participants are
// created here and discarded with the driver; only their ledger values
// outlive the sample.
func NewDriver(client openrouter.ChatClient, lookup openrouter.GenerationLookup, spec *models.ExperimentSpec, table *pricing.Table, sink Sink) *Driver {
	settings := Settings{
		ModelID:      spec.ModelID,
		Temperature:  *spec.Temperature,
		SystemPrompt: spec.SystemPrompt,
		MaxTokens:    spec.MaxTokens,
	}

	return &Driver{
		A:      NewParticipant(client, settings, table),
		B:      NewParticipant(client, settings, table),
		spec:   spec,
		lookup: lookup,
		sink:   sink,
		state:  StateNotStarted,
	}
}

// OnUtterance registers an observer for live conversation display.
func (d *Driver) OnUtterance(fn UtteranceFunc) {
	d.onUtterance = fn
}

// State returns the driver's current lifecycle state.
func (d *Driver) State() State {
	return d.state
}

// Turns returns the number of fully or partially completed turns so far,
// not counting the scripted greeting.
func (d *Driver) Turns() int {
	return d.turn
}

// Run drives the conversation to a terminal state. Turn 0 is scripted:
// the greeting is seeded into B's history with no model call. Each
// following turn, A responds to B and then B responds to A. The loop ends
// when the configured turn maximum is reached (completed), when either
// participant stops talking (exhausted), or when a provider call fails
// (failed, propagated to the caller).
//
// On every terminal state both ledgers are reconciled best-effort; the
// record is persisted for completed and exhausted conversations with
// whatever history exists; a half-finished turn is kept, not rolled
// back.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	d.state = StateInProgress
	d.B.History = append(d.B.History, d.spec.Greeting)
	d.emit("B", d.spec.Greeting)

	status := models.StatusCompleted

	for d.turn = 1; d.turn <= d.spec.Turns; d.turn++ {
		text, err := d.A.Respond(ctx, d.B.History)
		if err != nil {
			if errors.Is(err, ErrConversationExhausted) {
				slog.Debug("participant A exhausted", "turn", d.turn)
				status = models.StatusExhausted
				break
			}
			return nil, d.fail(ctx, err)
		}
		d.emit("A", text)

		text, err = d.B.Respond(ctx, d.A.History)
		if err != nil {
			if errors.Is(err, ErrConversationExhausted) {
				slog.Debug("participant B exhausted", "turn", d.turn)
				status = models.StatusExhausted
				break
			}
			return nil, d.fail(ctx, err)
		}
		d.emit("B", text)
	}
	if d.turn > d.spec.Turns {
		d.turn = d.spec.Turns
	}

	d.state = StateTerminated
	d.reconcile(ctx)

	record := models.NewConversationRecord(d.A.History, d.spec)
	if d.sink != nil {
		if err := d.sink.Append(record); err != nil {
			return nil, fmt.Errorf("persisting conversation: %w", err)
		}
	}

	return &Result{
		Status: status,
		Turns:  len(d.A.History),
		Record: record,
	}, nil
}

// fail marks the driver terminated, reconciles what was spent, and wraps
// the underlying error. Failed samples are not persisted: the batch
// summary reports only samples that finished a conversation.
func (d *Driver) fail(ctx context.Context, err error) error {
	d.state = StateTerminated
	d.reconcile(ctx)
	return &ProviderCallError{ModelID: d.spec.ModelID, Turn: d.turn, Err: err}
}

func (d *Driver) reconcile(ctx context.Context) {
	if d.lookup == nil {
		return
	}
	d.A.Ledger.Reconcile(ctx, d.lookup)
	d.B.Ledger.Reconcile(ctx, d.lookup)
}

func (d *Driver) emit(speaker, text string) {
	if d.onUtterance != nil {
		d.onUtterance(speaker, text)
	}
}
