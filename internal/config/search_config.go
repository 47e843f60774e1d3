package config

import "time"

// SearchConfig defines configuration for the keyword search collaborator.
type SearchConfig struct {
	APIKey         string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Endpoint       string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" validate:"omitempty,url"`
	Country        string `json:"country,omitempty" yaml:"country,omitempty"`
	Language       string `json:"language,omitempty" yaml:"language,omitempty"`
	NumResults     int    `json:"num_results,omitempty" yaml:"num_results,omitempty" validate:"omitempty,min=1,max=100"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultSearchConfig creates default search configuration. The API key is
// read from the SERPER_API_KEY environment variable when left empty.
func NewDefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Endpoint:       DefaultSearchEndpoint,
		Country:        DefaultSearchCountry,
		Language:       DefaultSearchLanguage,
		NumResults:     DefaultSearchNumResults,
		TimeoutSeconds: DefaultSearchTimeoutSec,
	}
}

// Timeout returns the search request timeout as a duration.
func (c SearchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IsConfigured reports whether the search collaborator has an API key.
func (c SearchConfig) IsConfigured() bool {
	return c.APIKey != ""
}
