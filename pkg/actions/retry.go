package actions

import (
	"math"
	"time"
)

const (
	defaultRetryDelay    = time.Second
	defaultBackoffFactor = 2.0
)

// retrySettings is the decoded retryConfig of an action. A zero maxRetries
// means a single attempt with no retry.
type retrySettings struct {
	maxRetries    int
	retryDelay    time.Duration
	backoffFactor float64
}

// parseRetrySettings decodes config["retryConfig"]. Missing fields fall back
// to one second base delay and a doubling backoff.
func parseRetrySettings(value any) retrySettings {
	settings := retrySettings{
		retryDelay:    defaultRetryDelay,
		backoffFactor: defaultBackoffFactor,
	}

	config, ok := value.(map[string]any)
	if !ok {
		return settings
	}

	if maxRetries, ok := numberValue(config["maxRetries"]); ok && maxRetries > 0 {
		settings.maxRetries = int(maxRetries)
	}

	if delay, ok := numberValue(config["retryDelay"]); ok && delay > 0 {
		settings.retryDelay = time.Duration(delay) * time.Millisecond
	}

	if factor, ok := numberValue(config["backoffFactor"]); ok && factor > 0 {
		settings.backoffFactor = factor
	}

	return settings
}

// attempts returns the total number of handler calls, the first plus retries.
func (r retrySettings) attempts() int {
	return r.maxRetries + 1
}

// delayBefore returns the pause before the given retry (1-based):
// retryDelay * backoffFactor^(retry-1).
func (r retrySettings) delayBefore(retry int) time.Duration {
	scale := math.Pow(r.backoffFactor, float64(retry-1))

	return time.Duration(float64(r.retryDelay) * scale)
}
