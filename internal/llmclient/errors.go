package llmclient

import (
	"errors"
	"fmt"
)

// ErrLimitExceeded is quota exhaustion from the provider. Callers surface it
// unchanged; the pipeline never retries on its own.
var ErrLimitExceeded = errors.New("llmclient: usage limit exceeded")

// ProviderError wraps any other upstream LLM failure with its status.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("llmclient: %s status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("llmclient: %s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }
