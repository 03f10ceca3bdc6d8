// Package reporting renders batch results as a plain-language console
// report: token totals, costs, scale projections, and a confidence
// interval over per-sample cost when enough samples exist.
package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/idlethoughts/soliloquy/internal/models"
	"github.com/idlethoughts/soliloquy/internal/statistics"
)

// printer formats large token counts with thousands separators.
var printer = message.NewPrinter(language.English)

// projectionFactors are the scale multiples shown in the cost projection.
var projectionFactors = []int{10, 100, 1000}

// minSamplesForCI is the smallest batch that gets a bootstrap interval.
const minSamplesForCI = 2

// InterpretReconciliation explains whether reported costs are provider
// confirmed or local estimates.
func InterpretReconciliation(results []models.SampleResult) string {
	if len(results) == 0 {
		return "No samples ran."
	}
	confirmed := 0
	for _, r := range results {
		if r.Reconciled {
			confirmed++
		}
	}
	switch {
	case confirmed == len(results):
		return "Costs confirmed against provider generation records."
	case confirmed == 0:
		return "Costs are local estimates; provider confirmation unavailable."
	default:
		return fmt.Sprintf("Costs confirmed for %d of %d samples; the rest are local estimates.", confirmed, len(results))
	}
}

// FormatBatchReport produces the full post-batch console report.
func FormatBatchReport(summary *models.BatchSummary) string {
	var b strings.Builder

	duration := time.Duration(summary.DurationMs) * time.Millisecond

	b.WriteString("=== Batch Summary ===\n\n")
	b.WriteString(fmt.Sprintf("Model:         %s\n", summary.ModelID))
	b.WriteString(fmt.Sprintf("Samples:       %d completed, %d exhausted, %d failed out of %d\n",
		summary.Completed, summary.Exhausted, summary.Failed, summary.Samples))
	b.WriteString(fmt.Sprintf("Duration:      %v\n", duration.Round(time.Millisecond)))

	b.WriteString("\nToken Usage:\n")
	b.WriteString(printer.Sprintf("  Input:       %d tokens\n", summary.InputTokens))
	b.WriteString(printer.Sprintf("  Output:      %d tokens\n", summary.OutputTokens))
	b.WriteString(printer.Sprintf("  Total:       %d tokens\n", summary.TotalTokens))

	b.WriteString("\nCost:\n")
	b.WriteString(fmt.Sprintf("  Total:       $%.4f\n", summary.TotalCost))
	if summary.Finished() > 0 {
		b.WriteString(fmt.Sprintf("  Per sample:  $%.4f\n", summary.CostPerSample()))
	}
	b.WriteString(fmt.Sprintf("  %s\n", InterpretReconciliation(summary.Results)))

	costs := summary.SampleCosts()
	if len(costs) >= minSamplesForCI {
		b.WriteString(fmt.Sprintf("  Std dev:     $%.4f per sample\n", statistics.StdDev(costs)))
		ci := statistics.BootstrapCI(costs, 0.95)
		b.WriteString(fmt.Sprintf("  95%% CI:      $%.4f to $%.4f per sample (bootstrap, n=%d)\n",
			ci.Lower, ci.Upper, len(costs)))
	}

	if summary.Finished() > 0 {
		b.WriteString("\nProjected Cost at Scale:\n")
		perSample := summary.CostPerSample()
		for _, factor := range projectionFactors {
			n := summary.Finished() * factor
			b.WriteString(printer.Sprintf("  %d samples:  $%.2f\n", n, perSample*float64(n)))
		}
	}

	return b.String()
}

// FormatVerdictTally summarizes judge verdicts as counts per label.
func FormatVerdictTally(verdicts map[string]int, total int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Judged %d conversations:\n", total))

	// Stable order: highest count first, ties alphabetical.
	type entry struct {
		label string
		count int
	}
	entries := make([]entry, 0, len(verdicts))
	for label, count := range verdicts {
		entries = append(entries, entry{label, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].label < entries[j].label
	})

	for _, e := range entries {
		b.WriteString(fmt.Sprintf("  %-20s %d\n", e.label+":", e.count))
	}
	return b.String()
}
