package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetryEventuallySucceeds(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return ErrStorageUnavailable
		}
		return nil
	}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryGivesUp(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return ErrStorageUnavailable
	}, RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, 2, calls)
}

func TestWithRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return &RetryableError{Err: errors.New("bad row"), Retryable: false}
	}, RetryOptions{MaxAttempts: 4, InitialDelay: time.Millisecond})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrStorageUnavailable))
	assert.False(t, IsRetryable(InvalidArgumentf("kind %q", "x")))
	assert.False(t, IsRetryable(context.Canceled))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", lvl.String())

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
