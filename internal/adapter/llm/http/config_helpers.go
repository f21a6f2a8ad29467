package http

import "time"

// ParseTimeout parses a timeout with fallback chain: override > default.
// Negative durations are rejected (would panic in http.Client.Timeout).
func ParseTimeout(override string, defaultVal time.Duration) time.Duration {
	if override != "" {
		if d, err := time.ParseDuration(override); err == nil && d >= 0 {
			return d
		}
	}

	if defaultVal < 0 {
		return 60 * time.Second
	}
	return defaultVal
}
