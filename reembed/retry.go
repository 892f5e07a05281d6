package reembed

import (
	"context"
	"log/slog"
	"time"
)

// RetryWithBackoff runs operation up to maxAttempts times, sleeping between
// attempts with exponentially growing delays (baseDelay, 2x, 4x, ...). The
// sleep is cut short when ctx is canceled, and the context error wins over
// the operation error in that case. After the final failed attempt the last
// operation error is returned unchanged so callers can inspect it.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := baseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 0 {
				slog.Debug("operation recovered", "attempt", attempt+1)
			}
			return nil
		}
		slog.Debug("operation failed",
			"attempt", attempt+1, "maxAttempts", maxAttempts, "err", lastErr)
	}

	return lastErr
}
