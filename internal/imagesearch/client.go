// Package imagesearch finds stock imagery for slides. Providers share one
// small interface so the HTTP shell can pick a source from configuration and
// tests can substitute a double.
package imagesearch

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by constructors given an empty credential.
var ErrMissingAPIKey = errors.New("imagesearch: missing API key")

// StatusError reports a non-2xx provider response.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("imagesearch: %s returned status %d: %s", e.Provider, e.Status, e.Body)
}

// Query is one image search.
type Query struct {
	Text    string
	PerPage int // defaults to 5, capped at 30
}

// Result is one image candidate.
type Result struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Description  string `json:"description,omitempty"`
	Photographer string `json:"photographer,omitempty"`
	SourcePage   string `json:"sourcePage,omitempty"`
}

// Client searches one image provider.
type Client interface {
	Source() string
	Search(ctx context.Context, q Query) ([]Result, error)
}

func perPage(q Query) int {
	switch {
	case q.PerPage <= 0:
		return 5
	case q.PerPage > 30:
		return 30
	}
	return q.PerPage
}
