package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timing values.
// These values can be customized via environment variables.
type Timeouts struct {
	RetryMaxAttempts int           // Maximum attempts per remote operation
	RetryDelay       time.Duration // Fixed delay between retry attempts
	AttemptTimeout   time.Duration // Per-attempt timeout for remote commands
	SettleDelay      time.Duration // Wait before the verification query
}

// LoadTimeouts loads timing configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - KUBESTRAP_RETRY_MAX_ATTEMPTS (default: 3)
//   - KUBESTRAP_RETRY_DELAY (default: 2s)
//   - KUBESTRAP_TIMEOUT_ATTEMPT (default: 5m)
//   - KUBESTRAP_SETTLE_DELAY (default: 30s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		RetryMaxAttempts: parseInt("KUBESTRAP_RETRY_MAX_ATTEMPTS", 3),
		RetryDelay:       parseDuration("KUBESTRAP_RETRY_DELAY", 2*time.Second),
		AttemptTimeout:   parseDuration("KUBESTRAP_TIMEOUT_ATTEMPT", 5*time.Minute),
		SettleDelay:      parseDuration("KUBESTRAP_SETTLE_DELAY", 30*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
