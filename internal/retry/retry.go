package retry

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Policy is a bounded retry strategy with exponentially growing delay and
// random jitter. It is shared by every call site that talks to a
// rate-limited external capability.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration // delay before the second attempt
	Factor      float64       // growth per attempt: BaseDelay * Factor^attempt; <=0 means 1.5
	MaxJitter   time.Duration // uniform extra delay in [0, MaxJitter)
	Retryable   func(error) bool

	// Sleep is swappable for tests; defaults to a context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// RateLimited reports whether err looks like a rate-limit-class failure.
var RateLimited = func(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "Resource exhausted") ||
		strings.Contains(msg, "exceeded")
}

// IsRetryable applies the policy's predicate, defaulting to RateLimited.
func (p Policy) IsRetryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return RateLimited(err)
}

// Do runs fn up to MaxAttempts times. Non-retryable errors abort
// immediately; exhausting the cap returns the last error.
func (p Policy) Do(ctx context.Context, op string, fn func() error) error {
	retryable := p.IsRetryable
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err

		delay := p.delay(attempt)
		log.Warn().
			Str("op", op).
			Int("attempt", attempt+1).
			Int("max_attempts", p.MaxAttempts).
			Dur("delay", delay).
			Err(err).
			Msg("retrying after rate limit")
		if attempt < p.MaxAttempts-1 {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}
	}
	return lastErr
}

func (p Policy) delay(attempt int) time.Duration {
	factor := p.Factor
	if factor <= 0 {
		factor = 1.5
	}
	grown := p.BaseDelay.Seconds() * math.Pow(factor, float64(attempt))
	jitter := 0.0
	if p.MaxJitter > 0 {
		jitter = rand.Float64() * p.MaxJitter.Seconds()
	}
	return time.Duration((grown + jitter) * float64(time.Second))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
