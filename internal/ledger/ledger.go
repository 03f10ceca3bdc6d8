// Package ledger tracks per-participant token usage and cost: locally
// estimated while the conversation runs, then reconciled against the
// provider's authoritative per-generation accounting.
package ledger

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/idlethoughts/soliloquy/internal/openrouter"
	"github.com/idlethoughts/soliloquy/internal/pricing"
)

// DefaultLookupDelay spaces successive reconciliation lookups so a batch
// of them does not trip provider rate limits.
const DefaultLookupDelay = 250 * time.Millisecond

// callRecord keeps one call's local estimate so a failed lookup can fall
// back to it during reconciliation.
type callRecord struct {
	id               string
	promptTokens     int
	completionTokens int
	cost             float64
}

// Ledger accumulates token counts and cost for one participant. It is
// owned exclusively by that participant and mutated only from its call
// path, so it needs no locking.
type Ledger struct {
	PromptTokens     int
	CompletionTokens int
	CostEstimate     float64
	CallIDs          []string

	// Reconciled is true once at least one authoritative lookup has
	// replaced that call's estimate. FullyReconciled is true only when
	// every recorded call was confirmed.
	Reconciled      bool
	FullyReconciled bool

	table       *pricing.Table
	lookupDelay time.Duration
	calls       []callRecord
}

// New creates a ledger estimating against the given pricing table.
func New(table *pricing.Table) *Ledger {
	return &Ledger{
		table:       table,
		lookupDelay: DefaultLookupDelay,
	}
}

// SetLookupDelay overrides the spacing between reconciliation lookups.
// Tests set it to zero.
func (l *Ledger) SetLookupDelay(d time.Duration) {
	l.lookupDelay = d
}

// Record adds one call's usage to the running totals and remembers the
// call id for later reconciliation.
func (l *Ledger) Record(promptTokens, completionTokens int, callID, modelID string) {
	cost := l.table.Cost(modelID, promptTokens, completionTokens)

	l.PromptTokens += promptTokens
	l.CompletionTokens += completionTokens
	l.CostEstimate += cost
	l.CallIDs = append(l.CallIDs, callID)

	l.calls = append(l.calls, callRecord{
		id:               callID,
		promptTokens:     promptTokens,
		completionTokens: completionTokens,
		cost:             cost,
	})
}

// Reconcile replaces the estimate fields with provider-confirmed figures.
// It is best-effort: a call whose lookup fails keeps its local estimate,
// a warning is emitted, and reconciliation continues with the next call.
// Reconcile never returns an error for individual lookup failures; after
// it runs the totals strictly replace (never add to) the prior estimates.
func (l *Ledger) Reconcile(ctx context.Context, lookup openrouter.GenerationLookup) {
	if len(l.calls) == 0 {
		return
	}

	var (
		promptTokens     int
		completionTokens int
		cost             float64
		confirmed        int
	)

	for i, call := range l.calls {
		if i > 0 && l.lookupDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(l.lookupDelay):
			}
		}

		// Once the context is cancelled, this call and every call after
		// it keep their local estimates; no further lookups are issued.
		if ctx.Err() != nil {
			promptTokens += call.promptTokens
			completionTokens += call.completionTokens
			cost += call.cost
			continue
		}

		stats, err := lookup.LookupGeneration(ctx, call.id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] reconciliation lookup failed for %s, keeping estimate: %v\n", call.id, err)
			promptTokens += call.promptTokens
			completionTokens += call.completionTokens
			cost += call.cost
			continue
		}

		promptTokens += stats.NativePromptTokens
		completionTokens += stats.NativeCompletionTokens
		cost += stats.TotalCost
		confirmed++
	}

	l.PromptTokens = promptTokens
	l.CompletionTokens = completionTokens
	l.CostEstimate = cost
	l.Reconciled = confirmed > 0
	l.FullyReconciled = confirmed == len(l.calls)
}
