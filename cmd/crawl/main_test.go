package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"solana-pool-crawler/internal/retry"
)

func TestCleanShutdown(t *testing.T) {
	assert.True(t, cleanShutdown(nil))
	assert.True(t, cleanShutdown(context.Canceled))

	// Cancellation surfaces wrapped by whichever component observed it.
	wrapped := fmt.Errorf("list signatures before sig-42: %w", context.Canceled)
	assert.True(t, cleanShutdown(wrapped))

	assert.False(t, cleanShutdown(errors.New("connection refused")))
	assert.False(t, cleanShutdown(context.DeadlineExceeded))
}

func TestRetryPolicy(t *testing.T) {
	p := retryPolicy(100)
	assert.Equal(t, 100, p.MaxRetries)
	assert.Equal(t, retry.DefaultDelay, p.Delay)
	assert.Equal(t, retry.DefaultMaxDelay, p.MaxDelay)

	assert.Equal(t, retry.DefaultMaxRetries, retryPolicy(0).MaxRetries)
	assert.Equal(t, retry.DefaultMaxRetries, retryPolicy(-1).MaxRetries)
}

func TestSplitEndpoints(t *testing.T) {
	assert.Nil(t, splitEndpoints(""))
	assert.Equal(t, []string{"http://a"}, splitEndpoints("http://a"))
	assert.Equal(t, []string{"http://a", "http://b"}, splitEndpoints(" http://a , http://b ,"))
}
