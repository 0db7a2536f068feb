package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// MockBrain provides deterministic local replies when no API key is
// configured, and records calls for tests.
type MockBrain struct {
	mu      sync.Mutex
	calls   []Request
	reply   func(Request) string
	failErr error
}

func NewMockBrain() *MockBrain { return &MockBrain{} }

// SetReply overrides the canned response builder.
func (b *MockBrain) SetReply(fn func(Request) string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reply = fn
}

// FailWith makes every subsequent Complete call return err.
func (b *MockBrain) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failErr = err
}

// Calls returns a snapshot of the requests seen so far.
func (b *MockBrain) Calls() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.calls))
	copy(out, b.calls)
	return out
}

func (b *MockBrain) Complete(ctx context.Context, req Request) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	default:
	}

	b.mu.Lock()
	b.calls = append(b.calls, req)
	reply := b.reply
	failErr := b.failErr
	b.mu.Unlock()

	if failErr != nil {
		return Response{}, failErr
	}
	if reply != nil {
		return Response{Text: reply(req)}, nil
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return Response{}, errors.New("empty prompt")
	}
	return Response{Text: fmt.Sprintf("(mock) considered %d characters of prompt", len(prompt))}, nil
}
