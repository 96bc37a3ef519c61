package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// retryableError marks transient failures: network errors, 429 and 5xx.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func isRetryableError(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// withRetry calls fn until it succeeds, returns a non-retryable error, or
// maxRetries retries are spent. Backoff doubles from base.
func withRetry(ctx context.Context, maxRetries int, base time.Duration, fn func() (Response, error)) (Response, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(base * time.Duration(1<<(attempt-1)))
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return Response{}, ctx.Err()
			}
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return Response{}, err
		}
	}
	return Response{}, fmt.Errorf("max retries exceeded: %w", lastErr)
}
