package resilient

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy determines the delay between retry attempts.
//
// Pattern: Strategy — swap backoff algorithms without changing the
// scheduler's state machine.
type BackoffStrategy interface {
	// Delay returns the duration to wait before the given retry attempt
	// (0-indexed: attempt 0 is the delay after the first failed attempt).
	Delay(attempt int) time.Duration
}

// BackoffFunc adapts an ordinary function into a [BackoffStrategy].
type BackoffFunc func(attempt int) time.Duration

// Delay calls the underlying function.
func (f BackoffFunc) Delay(attempt int) time.Duration { return f(attempt) }

// ---------------------------------------------------------------------------
// ConstantBackoff
// ---------------------------------------------------------------------------

// constantBackoff returns the same delay for every attempt.
type constantBackoff struct {
	d time.Duration
}

func (b *constantBackoff) Delay(_ int) time.Duration { return b.d }

// ConstantBackoff returns a [BackoffStrategy] that always returns a fixed
// delay d regardless of the attempt number.
func ConstantBackoff(d time.Duration) BackoffStrategy {
	return &constantBackoff{d: d}
}

// ---------------------------------------------------------------------------
// ExponentialBackoff
// ---------------------------------------------------------------------------

// exponentialBackoff returns base * 2^attempt.
type exponentialBackoff struct {
	base time.Duration
}

func (b *exponentialBackoff) Delay(attempt int) time.Duration {
	return time.Duration(float64(b.base) * math.Pow(2, float64(attempt)))
}

// ExponentialBackoff returns a [BackoffStrategy] whose delay doubles with
// each attempt: base * 2^attempt, without jitter.
func ExponentialBackoff(base time.Duration) BackoffStrategy {
	return &exponentialBackoff{base: base}
}

// ---------------------------------------------------------------------------
// LinearBackoff
// ---------------------------------------------------------------------------

// linearBackoff returns step * (attempt + 1).
type linearBackoff struct {
	step time.Duration
}

func (b *linearBackoff) Delay(attempt int) time.Duration {
	return b.step * time.Duration(attempt+1)
}

// LinearBackoff returns a [BackoffStrategy] whose delay increases linearly:
// step * (attempt + 1).
func LinearBackoff(step time.Duration) BackoffStrategy {
	return &linearBackoff{step: step}
}

// ---------------------------------------------------------------------------
// ExponentialJitterBackoff — the scheduler default
// ---------------------------------------------------------------------------

// jitterFraction is the upper bound of the random spread added on top of the
// exponential delay.
const jitterFraction = 0.3

// exponentialJitterBackoff returns base*2^attempt plus a uniform random
// spread in [0, jitterFraction * base * 2^attempt).
type exponentialJitterBackoff struct {
	base time.Duration
}

func (b *exponentialJitterBackoff) Delay(attempt int) time.Duration {
	exp := float64(b.base) * math.Pow(2, float64(attempt))

	spread := int64(exp * jitterFraction)
	if spread <= 0 {
		return time.Duration(exp)
	}

	return time.Duration(exp) + time.Duration(rand.Int64N(spread))
}

// ExponentialJitterBackoff returns a [BackoffStrategy] whose delay doubles
// with each attempt and adds up to 30% of uniform random jitter:
// base*2^attempt + uniform(0, 0.3 * base*2^attempt). The spread keeps
// synchronized clients from producing retry storms while the doubling keeps
// the envelope predictable: attempt 0 with a 100ms base falls in [100,130)ms,
// attempt 1 in [200,260)ms, and so on. A base of 0 yields zero delays.
func ExponentialJitterBackoff(base time.Duration) BackoffStrategy {
	return &exponentialJitterBackoff{base: base}
}
