package models

import "time"

// DefaultChoices is a static label pair carried in every persisted record.
// It is scaffolding from a discontinued classification pass; downstream
// notebooks still expect the field, so it is written but never read.
var DefaultChoices = []string{"philosophy", "not philosophy"}

// RecordMetadata is the experiment snapshot stored with each conversation.
type RecordMetadata struct {
	ModelName    string  `json:"model_name"`
	Temperature  float64 `json:"temperature"`
	SystemPrompt string  `json:"system_prompt"`
}

// ConversationRecord is the persisted artifact for one finished sample.
// Input holds the first speaker's utterances in turn order; the partner's
// side is reconstructable as the implicit response slots. Records are
// immutable once written.
type ConversationRecord struct {
	Input    []string       `json:"input"`
	ID       int64          `json:"id"`
	Choices  []string       `json:"choices"`
	Metadata RecordMetadata `json:"metadata"`
}

// NewConversationRecord builds a record with a timestamp-derived id.
func NewConversationRecord(input []string, spec *ExperimentSpec) ConversationRecord {
	// Copy so later driver mutations can't reach the persisted slice.
	turns := make([]string, len(input))
	copy(turns, input)

	return ConversationRecord{
		Input:   turns,
		ID:      time.Now().UnixNano(),
		Choices: DefaultChoices,
		Metadata: RecordMetadata{
			ModelName:    spec.ModelID,
			Temperature:  *spec.Temperature,
			SystemPrompt: spec.SystemPrompt,
		},
	}
}
