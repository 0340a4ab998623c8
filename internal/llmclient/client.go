// Package llmclient defines the injected LLM collaborator and its provider
// implementations. A client performs one schema-constrained generation per
// call; cross-cutting concerns (logging, hooks) are layered on via
// internal/llm middleware.
package llmclient

import (
	"context"
	"encoding/json"
)

// Request is a single schema-constrained generation.
type Request struct {
	Prompt      string
	Schema      map[string]any
	Model       string
	Temperature float64
	MaxTokens   int
}

// Response carries the provider output. OutputParsed is set when the
// provider returned structured JSON directly; otherwise OutputText must be
// parseable as JSON.
type Response struct {
	OutputText   string
	OutputParsed json.RawMessage
}

// Payload returns the JSON body of the response, preferring the parsed form.
func (r Response) Payload() []byte {
	if len(r.OutputParsed) > 0 {
		return r.OutputParsed
	}
	return []byte(r.OutputText)
}

// Client is the injected LLM collaborator. Implementations must be safe for
// concurrent unrelated calls.
type Client interface {
	Name() string
	Generate(ctx context.Context, req Request) (Response, error)
	Close() error
}
