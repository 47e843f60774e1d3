package config

import "time"

// RelevanceConfig defines configuration for the relevance judgment collaborator.
type RelevanceConfig struct {
	APIKey         string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model          string `json:"model,omitempty" yaml:"model,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultRelevanceConfig creates default relevance configuration. The API
// key is read from the OPENAI_API_KEY environment variable when left empty.
func NewDefaultRelevanceConfig() RelevanceConfig {
	return RelevanceConfig{
		Model:          DefaultRelevanceModel,
		TimeoutSeconds: DefaultRelevanceTimeoutSec,
	}
}

// Timeout returns the relevance request timeout as a duration.
func (c RelevanceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IsConfigured reports whether the relevance collaborator has an API key.
func (c RelevanceConfig) IsConfigured() bool {
	return c.APIKey != ""
}
