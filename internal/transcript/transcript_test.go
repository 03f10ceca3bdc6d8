package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idlethoughts/soliloquy/internal/models"
)

func testRecord(id int64, input ...string) models.ConversationRecord {
	return models.ConversationRecord{
		Input:   input,
		ID:      id,
		Choices: models.DefaultChoices,
		Metadata: models.RecordMetadata{
			ModelName:   "test/model",
			Temperature: 1.0,
		},
	}
}

func TestWriter_AppendAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "conversations.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)
	assert.Equal(t, path, w.Path())

	require.NoError(t, w.Append(testRecord(1, "first", "second")))
	require.NoError(t, w.Append(testRecord(2, "third")))

	records, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, []string{"first", "second"}, records[0].Input)
	assert.Equal(t, int64(2), records[1].ID)
	assert.Equal(t, "test/model", records[0].Metadata.ModelName)
	assert.Equal(t, []string{"philosophy", "not philosophy"}, records[0].Choices)
}

func TestWriter_AppendsAcrossWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.jsonl")

	w1, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w1.Append(testRecord(1, "a")))

	// A second writer to the same path appends rather than truncates.
	w2, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w2.Append(testRecord(2, "b")))

	records, err := ReadAll(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestWriter_OneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(testRecord(1, "line one\nline two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 1, "embedded newlines must be escaped, not written raw")
}

func TestReadAll_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.jsonl")
	content := `{"input":["a"],"id":1,"choices":[],"metadata":{}}

{"input":["b"],"id":2,"choices":[],"metadata":{}}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := ReadAll(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestReadAll_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("not json\n"), 0o644))

	_, err := ReadAll(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestFilenames(t *testing.T) {
	ts := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)

	assert.Equal(t, "anthropic-claude-sonnet-4.5", ModelSlug("anthropic/claude-sonnet-4.5"))

	assert.Equal(t,
		"conversations-anthropic-claude-sonnet-4.5-20260830-140500-15.jsonl",
		Filename("anthropic/claude-sonnet-4.5", 15, ts))

	assert.Equal(t,
		"summary-anthropic-claude-sonnet-4.5-20260830-140500.json",
		SummaryFilename("anthropic/claude-sonnet-4.5", ts))

	assert.Equal(t, "data/run-eval.jsonl", EvalFilename("data/run.jsonl"))
}
