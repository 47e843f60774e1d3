package config

import "time"

// ProbeConfig defines configuration for candidate page probing.
type ProbeConfig struct {
	// Maximum number of fetch attempts for a single URL
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"omitempty,min=1,max=10"`
	// Base delay in seconds for exponential backoff between attempts
	BaseBackoffSeconds int `json:"base_backoff_seconds,omitempty" yaml:"base_backoff_seconds,omitempty" validate:"omitempty,min=1,max=300"`
	// Per-attempt HTTP timeout in seconds
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1"`
	// User agent presented to target sites
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	// Skip TLS certificate verification on target sites
	InsecureSkipVerify bool `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// NewDefaultProbeConfig creates default probe configuration
func NewDefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		MaxRetries:         DefaultProbeMaxRetries,
		BaseBackoffSeconds: DefaultProbeBaseBackoffSeconds,
		TimeoutSeconds:     DefaultProbeTimeoutSeconds,
		UserAgent:          DefaultProbeUserAgent,
		InsecureSkipVerify: true,
	}
}

// BaseBackoff returns the base backoff as a duration.
func (c ProbeConfig) BaseBackoff() time.Duration {
	return time.Duration(c.BaseBackoffSeconds) * time.Second
}

// Timeout returns the per-attempt timeout as a duration.
func (c ProbeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
