package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAllowsUpToMaxHits(t *testing.T) {
	limiter := NewLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "hit %d", i)
	}

	allowed, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, _ = limiter.Allow(context.Background(), "10.0.0.2")
	assert.True(t, allowed, "keys are limited independently")
}

func TestLimiterWindowSlides(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiter(time.Minute, 1)
	limiter.now = func() time.Time { return now }

	allowed, _ := limiter.Allow(context.Background(), "k")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(context.Background(), "k")
	assert.False(t, allowed)

	now = now.Add(61 * time.Second)
	allowed, _ = limiter.Allow(context.Background(), "k")
	assert.True(t, allowed)
}

func TestLimiterConcurrentAccess(t *testing.T) {
	limiter := NewLimiter(time.Minute, 50)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow(context.Background(), "shared"); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowedCount)
}
