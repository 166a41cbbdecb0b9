package docqa

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/tutorstack/docqa/pkg/embedding"
	"github.com/tutorstack/docqa/pkg/index"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var embedErr *embedding.RetryableError
	if errors.As(err, &embedErr) {
		return true
	}
	var indexErr *index.RetryableError
	if errors.As(err, &indexErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

// withRetry runs fn under a per-attempt timeout. Fatal errors return
// immediately; retryable ones back off and retry until the budget is spent,
// then surface as an UnavailableError.
func (s *Service) withRetry(ctx context.Context, service string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
		lastErr = fn(attemptCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == MaxRetries-1 {
			break
		}
		s.log.Warn("retryable error, backing off", "service", service, "attempt", attempt, "error", lastErr)
		s.metrics.ServiceRetries.WithLabelValues(service).Inc()
		select {
		case <-time.After(s.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return &UnavailableError{Service: service, Attempts: MaxRetries, Err: lastErr}
}
