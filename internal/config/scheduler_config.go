package config

import "time"

// SchedulerConfig defines configuration for the monitoring scheduler loop.
type SchedulerConfig struct {
	CheckIntervalSeconds int `json:"check_interval_seconds,omitempty" yaml:"check_interval_seconds,omitempty" validate:"omitempty,min=1"`
	CooldownSeconds      int `json:"cooldown_seconds,omitempty" yaml:"cooldown_seconds,omitempty" validate:"omitempty,min=1"`
	MaxWorkers           int `json:"max_workers,omitempty" yaml:"max_workers,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultSchedulerConfig creates default scheduler configuration
func NewDefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		CheckIntervalSeconds: DefaultSchedulerCheckIntervalSeconds,
		CooldownSeconds:      DefaultSchedulerCooldownSeconds,
		MaxWorkers:           DefaultSchedulerMaxWorkers,
	}
}

// CheckInterval returns the wake interval as a duration.
func (c SchedulerConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// Cooldown returns the loop-error cooldown as a duration.
func (c SchedulerConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}
