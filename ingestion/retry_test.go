package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryFixed_Success(t *testing.T) {
	attempts := 0
	err := RetryFixed(context.Background(), func(int) error {
		attempts++
		return nil
	}, 3, 10*time.Millisecond, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetryFixed_EventualSuccess(t *testing.T) {
	var seen []int
	failures := 0
	err := RetryFixed(context.Background(), func(attempt int) error {
		seen = append(seen, attempt)
		if attempt < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, 5, time.Millisecond, func(int, error) { failures++ })

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Equal(t, 2, failures)
}

func TestRetryFixed_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	err := RetryFixed(context.Background(), func(int) error {
		attempts++
		return expectedErr
	}, 3, time.Millisecond, nil)

	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the original error")
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestRetryFixed_FixedDelay(t *testing.T) {
	delay := 20 * time.Millisecond
	var stamps []time.Time
	start := time.Now()
	_ = RetryFixed(context.Background(), func(int) error {
		stamps = append(stamps, time.Now())
		return errors.New("error")
	}, 3, delay, nil)
	elapsed := time.Since(start)

	require.Len(t, stamps, 3)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), delay)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), delay)
	// Exponential growth would need at least 3*delay.
	assert.Less(t, elapsed, 2*delay+delay/2+200*time.Millisecond)
}

func TestRetryFixed_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryFixed(ctx, func(int) error {
		attempts++
		if attempts == 2 {
			cancel() // Cancel after second attempt
		}
		return errors.New("error")
	}, 10, time.Millisecond, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled, "should return context.Canceled")
	assert.Equal(t, 2, attempts, "should stop when context is canceled")
}

func TestRetryFixed_CanceledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	start := time.Now()
	err := RetryFixed(ctx, func(int) error {
		attempts++
		time.AfterFunc(10*time.Millisecond, cancel)
		return errors.New("error")
	}, 3, time.Hour, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
	assert.Less(t, time.Since(start), time.Minute, "delay is interrupted by cancellation")
}

func TestRetryFixed_CanceledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := RetryFixed(ctx, func(int) error {
		called = true
		return nil
	}, 3, time.Millisecond, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRetryFixed_InvalidMaxAttempts(t *testing.T) {
	err := RetryFixed(context.Background(), func(int) error {
		return nil
	}, 0, time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	err = RetryFixed(context.Background(), func(int) error {
		return nil
	}, -1, time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}
