package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 5, BaseDelay: time.Second, Sleep: noSleep}

	err := p.Do(context.Background(), "embed", func() error {
		calls++
		if calls < 3 {
			return errors.New("429 too many requests")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsAtAttemptCap(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 4, BaseDelay: time.Second, Sleep: noSleep}

	err := p.Do(context.Background(), "embed", func() error {
		calls++
		return errors.New("RESOURCE_EXHAUSTED")
	})
	assert.Error(t, err)
	assert.Equal(t, 4, calls)
}

func TestDoAbortsOnNonRetryableError(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 4, BaseDelay: time.Second, Sleep: noSleep}

	permanent := errors.New("invalid argument")
	err := p.Do(context.Background(), "embed", func() error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{MaxAttempts: 4, BaseDelay: time.Second}
	err := p.Do(ctx, "embed", func() error {
		return errors.New("429")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimitedPredicate(t *testing.T) {
	assert.True(t, RateLimited(errors.New("googleapi: Error 429")))
	assert.True(t, RateLimited(errors.New("RESOURCE_EXHAUSTED: quota")))
	assert.True(t, RateLimited(errors.New("Resource exhausted, try again")))
	assert.True(t, RateLimited(errors.New("quota exceeded for model")))
	assert.False(t, RateLimited(errors.New("invalid api key")))
	assert.False(t, RateLimited(nil))
}

func TestDelayGrowsWithAttempt(t *testing.T) {
	p := Policy{MaxAttempts: 6, BaseDelay: 1500 * time.Millisecond}
	assert.Less(t, p.delay(0), p.delay(3))
}

func TestDelayGrowsWithSubSecondBase(t *testing.T) {
	p := Policy{MaxAttempts: 6, BaseDelay: 100 * time.Millisecond, Factor: 2}
	assert.Equal(t, 100*time.Millisecond, p.delay(0))
	assert.Equal(t, 800*time.Millisecond, p.delay(3))
	assert.Less(t, p.delay(0), p.delay(5))
}
