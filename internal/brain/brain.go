// Package brain is the thin adapter in front of the LLM completion API.
// Callers always receive an explicit (Response, error) pair; the
// orchestrator decides how a failure degrades, never this package.
package brain

import "context"

// Request carries a fully-assembled prompt and generation parameters.
type Request struct {
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Response is a completed text generation.
type Response struct {
	Text string
}

// Brain produces a completion for an assembled prompt.
type Brain interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
