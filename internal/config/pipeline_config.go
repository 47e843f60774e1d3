package config

import "time"

// PipelineConfig defines configuration for per-task pipeline execution.
type PipelineConfig struct {
	// Candidate cap for a task's first-ever run
	FirstRunCandidateCap int `json:"first_run_candidate_cap,omitempty" yaml:"first_run_candidate_cap,omitempty" validate:"omitempty,min=1"`
	// Tighter candidate cap for recurring checks to bound load
	RecurringCandidateCap int `json:"recurring_candidate_cap,omitempty" yaml:"recurring_candidate_cap,omitempty" validate:"omitempty,min=1"`
	// Delay between relevance calls in milliseconds
	RelevanceDelayMs int `json:"relevance_delay_ms,omitempty" yaml:"relevance_delay_ms,omitempty" validate:"omitempty,min=0"`
	// Delay between probe calls in milliseconds
	ProbeDelayMs int `json:"probe_delay_ms,omitempty" yaml:"probe_delay_ms,omitempty" validate:"omitempty,min=0"`
}

// NewDefaultPipelineConfig creates default pipeline configuration
func NewDefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		FirstRunCandidateCap:  DefaultPipelineFirstRunCandidateCap,
		RecurringCandidateCap: DefaultPipelineRecurringCandidateCap,
		RelevanceDelayMs:      DefaultPipelineRelevanceDelayMs,
		ProbeDelayMs:          DefaultPipelineProbeDelayMs,
	}
}

// RelevanceDelay returns the inter-relevance-call delay as a duration.
func (c PipelineConfig) RelevanceDelay() time.Duration {
	return time.Duration(c.RelevanceDelayMs) * time.Millisecond
}

// ProbeDelay returns the inter-probe-call delay as a duration.
func (c PipelineConfig) ProbeDelay() time.Duration {
	return time.Duration(c.ProbeDelayMs) * time.Millisecond
}
