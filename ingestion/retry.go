package ingestion

import (
	"context"
	"time"
)

// RetryFixed runs op up to maxAttempts times, waiting a fixed delay after
// each failure before the next attempt. There is no wait after the final
// attempt.
//
// op receives the 1-based attempt number. onFailure, if non-nil, is called
// after every failed attempt. The context is checked before each attempt and
// while waiting; on cancellation ctx.Err() is returned.
// Returns the error from the last attempt if all attempts fail.
func RetryFixed(ctx context.Context, op func(attempt int) error, maxAttempts int, delay time.Duration, onFailure func(attempt int, err error)) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(attempt)
		if lastErr == nil {
			return nil
		}
		if onFailure != nil {
			onFailure(attempt, lastErr)
		}

		if attempt == maxAttempts {
			break
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
