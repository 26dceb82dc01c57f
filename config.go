package resilient

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
)

type (
	// configFile is the top-level JSON structure.
	configFile struct {
		Policies map[string]PolicyConfig `json:"policies"`
	}

	// PolicyConfig holds the decoded configuration for a single retry
	// policy. Export it to embed in your own app config structs for JSON
	// unmarshaling, then call [BuildPolicy] to obtain a [RetryPolicy].
	PolicyConfig struct {
		// Backoff is the backoff strategy name.
		// Optional, defaults to "exponential_jitter". One of: "constant",
		// "exponential", "linear", "exponential_jitter".
		Backoff *string `json:"backoff,omitempty"`
		// BaseDelay seeds the backoff calculation.
		// Optional. Parsed via time.ParseDuration. Example: "100ms".
		BaseDelay *string `json:"base_delay,omitempty"`
		// AttemptTimeout bounds each individual transport call.
		// Optional. Parsed via time.ParseDuration. Example: "2s".
		AttemptTimeout *string `json:"attempt_timeout,omitempty"`
		// TotalTimeout bounds the whole logical request.
		// Optional. Parsed via time.ParseDuration. Example: "30s".
		TotalTimeout *string `json:"total_timeout,omitempty"`
		// MaxAttempts is the attempt ceiling.
		// Optional. Example: 4.
		MaxAttempts *int `json:"max_attempts,omitempty"`
	}
)

// LoadPolicies reads a JSON configuration file and returns the named retry
// policies it declares. All policies are validated eagerly so errors surface
// at load time.
//
// Duration values (base_delay, attempt_timeout, total_timeout) are parsed
// using [time.ParseDuration]. Supported backoff strategies: "constant",
// "exponential", "linear", "exponential_jitter".
func LoadPolicies(path string) (map[string]RetryPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resilient: read config: %w", err)
	}

	var cfg configFile
	if err = json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("resilient: parse config: %w", err)
	}

	policies := make(map[string]RetryPolicy, len(cfg.Policies))

	for name, pc := range cfg.Policies {
		policy, buildErr := BuildPolicy(&pc)
		if buildErr != nil {
			return nil, fmt.Errorf("resilient: policy %q: %w", name, buildErr)
		}

		policies[name] = policy
	}

	return policies, nil
}

// BuildPolicy converts a [PolicyConfig] into a [RetryPolicy]. Use this when
// you embed [PolicyConfig] in your own config struct and want to build a
// policy without going through [LoadPolicies]. Unset fields fall back to
// [DefaultPolicy] values.
func BuildPolicy(pc *PolicyConfig) (RetryPolicy, error) {
	policy := DefaultPolicy

	if pc.MaxAttempts != nil {
		policy.MaxAttempts = *pc.MaxAttempts
	}

	if pc.BaseDelay != nil {
		d, err := time.ParseDuration(*pc.BaseDelay)
		if err != nil {
			return RetryPolicy{}, fmt.Errorf("base_delay: %w", err)
		}

		policy.BaseDelay = d
	}

	if pc.AttemptTimeout != nil {
		d, err := time.ParseDuration(*pc.AttemptTimeout)
		if err != nil {
			return RetryPolicy{}, fmt.Errorf("attempt_timeout: %w", err)
		}

		policy.AttemptTimeout = d
	}

	if pc.TotalTimeout != nil {
		d, err := time.ParseDuration(*pc.TotalTimeout)
		if err != nil {
			return RetryPolicy{}, fmt.Errorf("total_timeout: %w", err)
		}

		policy.TotalTimeout = d
	}

	if pc.Backoff != nil {
		strategy, err := parseBackoffStrategy(*pc.Backoff, policy.BaseDelay)
		if err != nil {
			return RetryPolicy{}, fmt.Errorf("backoff: %w", err)
		}

		policy.Strategy = strategy
	}

	return policy, nil
}

// parseBackoffStrategy maps a backoff name + base delay to a BackoffStrategy.
//
//nolint:ireturn // returns interface by design for strategy pattern
func parseBackoffStrategy(name string, base time.Duration) (BackoffStrategy, error) {
	switch name {
	case "constant":
		return ConstantBackoff(base), nil
	case "exponential":
		return ExponentialBackoff(base), nil
	case "linear":
		return LinearBackoff(base), nil
	case "exponential_jitter":
		return ExponentialJitterBackoff(base), nil
	default:
		return nil, fmt.Errorf("unknown backoff strategy: %q", name)
	}
}
