// Package llm calls an OpenAI-compatible completion endpoint with bounded
// retries, exponential backoff, and respect for provider retry hints.
package llm

import (
	"context"
	"errors"
)

// Terminal states of the retry engine. Both surface as generic upstream
// failure to callers, but carry distinct labels for operational triage:
// ErrMaxRetriesExceeded means the upstream kept failing, ErrTimeout means
// we ran out of time.
var (
	ErrMaxRetriesExceeded = errors.New("llm: max retries exceeded")
	ErrTimeout            = errors.New("llm: retry time budget exhausted")
)

// CompletionRequest is one unit of upstream work: a fully built prompt plus
// its sampling parameters.
type CompletionRequest struct {
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Client dispatches completion requests. The returned text is the raw
// completion field, an untrusted string the caller must parse and repair.
type Client interface {
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}
