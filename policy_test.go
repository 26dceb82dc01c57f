package resilient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicyWithDefaultsNormalizesAttempts(t *testing.T) {
	t.Parallel()

	for _, attempts := range []int{-1, 0, 1} {
		p := RetryPolicy{MaxAttempts: attempts}.withDefaults()

		assert.GreaterOrEqual(t, p.MaxAttempts, 1)
	}
}

func TestPolicyWithDefaultsSeedsJitterStrategy(t *testing.T) {
	t.Parallel()

	p := RetryPolicy{BaseDelay: 100 * time.Millisecond}.withDefaults()

	delay := p.Strategy.Delay(0)

	assert.GreaterOrEqual(t, delay, 100*time.Millisecond)
	assert.Less(t, delay, 130*time.Millisecond)
}

func TestPolicyWithDefaultsKeepsExplicitStrategy(t *testing.T) {
	t.Parallel()

	p := RetryPolicy{Strategy: ConstantBackoff(time.Second)}.withDefaults()

	assert.Equal(t, time.Second, p.Strategy.Delay(7))
}

func TestPresetsAreBounded(t *testing.T) {
	t.Parallel()

	presets := map[string]RetryPolicy{
		"interactive":     InteractivePolicy(),
		"background_sync": BackgroundSyncPolicy(),
		"one_shot":        OneShotPolicy(),
	}

	for name, p := range presets {
		assert.GreaterOrEqual(t, p.MaxAttempts, 1, name)
		assert.Positive(t, p.AttemptTimeout, name)
	}
}

func TestOneShotPolicyNeverRetries(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, OneShotPolicy().MaxAttempts)
}
