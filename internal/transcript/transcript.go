// Package transcript persists finished conversations as append-only JSON
// lines, one object per conversation.
package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/idlethoughts/soliloquy/internal/models"
)

// Writer appends conversation records to a single JSONL file. The file is
// opened in append mode and closed on every write, so no handle outlives
// a driver. Writer does not synchronize concurrent writers to the same
// path; callers that run samples concurrently must serialize appends
// themselves. The reference runner is strictly sequential.
type Writer struct {
	path string
}

// NewWriter creates a writer for the given path, creating parent
// directories as needed.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating transcript directory: %w", err)
		}
	}
	return &Writer{path: path}, nil
}

// Path returns the transcript file path.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one record as a single JSON line.
func (w *Writer) Append(record models.ConversationRecord) error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening transcript %s: %w", w.path, err)
	}
	if err := json.NewEncoder(f).Encode(record); err != nil {
		f.Close()
		return fmt.Errorf("writing transcript record: %w", err)
	}

	return f.Close()
}

// ReadAll loads every record from a JSONL transcript file, in write order.
func ReadAll(path string) ([]models.ConversationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []models.ConversationRecord

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec models.ConversationRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", path, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return records, nil
}

// slugReplacer swaps characters that are awkward in filenames.
var slugReplacer = strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")

// ModelSlug converts a model id to a filename-safe slug.
func ModelSlug(modelID string) string {
	return slugReplacer.Replace(modelID)
}

// Filename returns the conventional transcript filename for a run.
func Filename(modelID string, turns int, ts time.Time) string {
	return fmt.Sprintf("conversations-%s-%s-%d.jsonl", ModelSlug(modelID), ts.Format("20060102-150405"), turns)
}

// SummaryFilename returns the conventional batch summary filename.
func SummaryFilename(modelID string, ts time.Time) string {
	return fmt.Sprintf("summary-%s-%s.json", ModelSlug(modelID), ts.Format("20060102-150405"))
}

// EvalFilename returns the sibling filename for judge verdicts over the
// given transcript file.
func EvalFilename(transcriptPath string) string {
	ext := filepath.Ext(transcriptPath)
	return strings.TrimSuffix(transcriptPath, ext) + "-eval.jsonl"
}
