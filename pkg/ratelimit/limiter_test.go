package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterval(t *testing.T) {
	iv := NewInterval(50 * time.Millisecond)

	assert.True(t, iv.Allow(), "first operation should not wait")
	assert.False(t, iv.Allow())

	start := time.Now()
	require.NoError(t, iv.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	iv.Reset()
	assert.True(t, iv.Allow())
}

func TestIntervalWaitCancelled(t *testing.T) {
	iv := NewInterval(time.Hour)
	require.NoError(t, iv.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, iv.Wait(ctx), context.DeadlineExceeded)
}

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(3, 100*time.Millisecond)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "request %d should be allowed", i+1)
	}
	assert.False(t, tb.Allow(), "4th request should be denied")

	time.Sleep(110 * time.Millisecond)
	assert.True(t, tb.Allow(), "should be allowed after refill")

	tb.Reset()
	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow())
	}
}

func TestTokenBucketWait(t *testing.T) {
	tb := NewTokenBucket(1, 30*time.Millisecond)
	require.NoError(t, tb.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, tb.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tb.Wait(ctx), context.Canceled)
}

func TestPerMinute(t *testing.T) {
	assert.Nil(t, PerMinute(0))
	assert.NotNil(t, PerMinute(30))
}

var (
	_ Limiter = (*Interval)(nil)
	_ Limiter = (*TokenBucket)(nil)
)
