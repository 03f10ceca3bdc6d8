package reporting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idlethoughts/soliloquy/internal/models"
)

func TestInterpretReconciliation(t *testing.T) {
	assert.Equal(t, "No samples ran.", InterpretReconciliation(nil))

	all := []models.SampleResult{{Reconciled: true}, {Reconciled: true}}
	assert.Contains(t, InterpretReconciliation(all), "confirmed against provider")

	none := []models.SampleResult{{Reconciled: false}}
	assert.Contains(t, InterpretReconciliation(none), "local estimates")

	some := []models.SampleResult{{Reconciled: true}, {Reconciled: false}}
	assert.Contains(t, InterpretReconciliation(some), "1 of 2")
}

func TestFormatBatchReport(t *testing.T) {
	summary := &models.BatchSummary{
		ModelID:      "anthropic/claude-sonnet-4.5",
		Samples:      3,
		Completed:    2,
		Exhausted:    1,
		InputTokens:  1_234_567,
		OutputTokens: 89_012,
		TotalTokens:  1_323_579,
		TotalCost:    0.09,
		DurationMs:   5250,
		Results: []models.SampleResult{
			{Index: 1, Status: models.StatusCompleted, Cost: 0.04, Reconciled: true},
			{Index: 2, Status: models.StatusCompleted, Cost: 0.03, Reconciled: true},
			{Index: 3, Status: models.StatusExhausted, Cost: 0.02, Reconciled: true},
		},
	}

	report := FormatBatchReport(summary)

	assert.Contains(t, report, "anthropic/claude-sonnet-4.5")
	assert.Contains(t, report, "2 completed, 1 exhausted, 0 failed out of 3")

	// Thousands separators on token counts.
	assert.Contains(t, report, "1,234,567")
	assert.Contains(t, report, "89,012")

	assert.Contains(t, report, "$0.0900")
	assert.Contains(t, report, "Per sample:  $0.0300")

	// 3 finished samples project to 30, 300, 3000.
	assert.Contains(t, report, "30 samples:")
	assert.Contains(t, report, "3,000 samples:")

	// Enough samples for spread statistics.
	assert.Contains(t, report, "Std dev:")
	assert.Contains(t, report, "95% CI:")
}

func TestFormatBatchReport_SingleSampleNoCI(t *testing.T) {
	summary := &models.BatchSummary{
		ModelID:   "test/model",
		Samples:   1,
		Completed: 1,
		TotalCost: 0.01,
		Results: []models.SampleResult{
			{Index: 1, Status: models.StatusCompleted, Cost: 0.01},
		},
	}

	report := FormatBatchReport(summary)
	assert.NotContains(t, report, "95% CI:")
	assert.NotContains(t, report, "Std dev:")
}

func TestFormatBatchReport_AllFailed(t *testing.T) {
	summary := &models.BatchSummary{
		ModelID: "test/model",
		Samples: 1,
		Failed:  1,
		Results: []models.SampleResult{
			{Index: 1, Status: models.StatusFailed},
		},
	}

	report := FormatBatchReport(summary)
	assert.NotContains(t, report, "Projected Cost")
	assert.NotContains(t, report, "Per sample:")
}

func TestFormatVerdictTally(t *testing.T) {
	out := FormatVerdictTally(map[string]int{
		"philosophy":     7,
		"not philosophy": 3,
	}, 10)

	assert.Contains(t, out, "Judged 10 conversations")

	// Highest count listed first.
	phi := strings.Index(out, "philosophy:")
	not := strings.Index(out, "not philosophy:")
	assert.True(t, phi >= 0 && not >= 0)
	assert.Less(t, phi, not)
}
