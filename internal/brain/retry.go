package brain

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// RetryBrain wraps another Brain and retries transient failures with a
// capped exponential backoff. Non-retryable errors return immediately.
type RetryBrain struct {
	inner    Brain
	attempts int
	base     time.Duration
	cap      time.Duration
	sleep    func(context.Context, time.Duration) error
}

func NewRetryBrain(inner Brain, attempts int) *RetryBrain {
	if attempts < 1 {
		attempts = 2
	}
	return &RetryBrain{
		inner:    inner,
		attempts: attempts,
		base:     200 * time.Millisecond,
		cap:      2 * time.Second,
		sleep:    sleepCtx,
	}
}

func (r *RetryBrain) Complete(ctx context.Context, req Request) (Response, error) {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, backoff(attempt-1, r.base, r.cap)); err != nil {
				return Response{}, err
			}
		}
		resp, err := r.inner.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return Response{}, err
		}
	}
	return Response{}, lastErr
}

// isRetryable treats rate limits and upstream server errors as transient.
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Network-level failures carry no status code; retry them.
	return true
}

func backoff(attempt int, base, max time.Duration) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
