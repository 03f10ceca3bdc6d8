package conversation

import (
	"errors"
	"fmt"
)

// ErrConversationExhausted signals that a participant deliberately stopped
// talking: the provider returned a stop reason with no generated content.
// It is a normal termination condition, not a failure, and is never
// retried.
var ErrConversationExhausted = errors.New("conversation exhausted")

// ProviderCallError wraps any provider call failure other than deliberate
// exhaustion: network errors, rate limits, malformed responses. The driver
// does not retry these; they surface to the batch controller.
type ProviderCallError struct {
	ModelID string
	Turn    int
	Err     error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("provider call failed for %s on turn %d: %v", e.ModelID, e.Turn, e.Err)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Err
}
