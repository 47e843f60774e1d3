package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"productwatch/internal/errorwrapper"

	"gopkg.in/yaml.v3"
)

const (
	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Scheduler Defaults
	DefaultSchedulerCheckIntervalSeconds = 300
	DefaultSchedulerCooldownSeconds      = 60
	DefaultSchedulerMaxWorkers           = 5

	// Probe Defaults
	DefaultProbeMaxRetries         = 3
	DefaultProbeBaseBackoffSeconds = 1
	DefaultProbeTimeoutSeconds     = 15
	DefaultProbeUserAgent          = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Pipeline Defaults
	DefaultPipelineFirstRunCandidateCap  = 10
	DefaultPipelineRecurringCandidateCap = 5
	DefaultPipelineRelevanceDelayMs      = 1000
	DefaultPipelineProbeDelayMs          = 1500

	// Search Defaults
	DefaultSearchEndpoint   = "https://google.serper.dev/search"
	DefaultSearchCountry    = "jp"
	DefaultSearchLanguage   = "ja"
	DefaultSearchNumResults = 20
	DefaultSearchTimeoutSec = 10

	// Relevance Defaults
	DefaultRelevanceModel      = "gpt-3.5-turbo"
	DefaultRelevanceTimeoutSec = 20

	// Storage Defaults
	DefaultStorageSQLiteDBPath = "data/productwatch.db"

	// Server Defaults
	DefaultServerListenAddr = ":8080"

	// Notification Defaults
	DefaultSMTPServer = "smtp.gmail.com"
	DefaultSMTPPort   = 587
	DefaultFromName   = "Product Watch"
)

// GlobalConfig aggregates the per-component configuration sections.
type GlobalConfig struct {
	LogConfig          LogConfig          `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	NotificationConfig NotificationConfig `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
	PipelineConfig     PipelineConfig     `json:"pipeline_config,omitempty" yaml:"pipeline_config,omitempty"`
	ProbeConfig        ProbeConfig        `json:"probe_config,omitempty" yaml:"probe_config,omitempty"`
	RelevanceConfig    RelevanceConfig    `json:"relevance_config,omitempty" yaml:"relevance_config,omitempty"`
	SchedulerConfig    SchedulerConfig    `json:"scheduler_config,omitempty" yaml:"scheduler_config,omitempty"`
	SearchConfig       SearchConfig       `json:"search_config,omitempty" yaml:"search_config,omitempty"`
	ServerConfig       ServerConfig       `json:"server_config,omitempty" yaml:"server_config,omitempty"`
	StorageConfig      StorageConfig      `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
}

// NewDefaultGlobalConfig creates a GlobalConfig populated with defaults.
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		LogConfig:          NewDefaultLogConfig(),
		NotificationConfig: NewDefaultNotificationConfig(),
		PipelineConfig:     NewDefaultPipelineConfig(),
		ProbeConfig:        NewDefaultProbeConfig(),
		RelevanceConfig:    NewDefaultRelevanceConfig(),
		SchedulerConfig:    NewDefaultSchedulerConfig(),
		SearchConfig:       NewDefaultSearchConfig(),
		ServerConfig:       NewDefaultServerConfig(),
		StorageConfig:      NewDefaultStorageConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath and supports both
// YAML and JSON formats. Missing file means defaults.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	defer applyEnvCredentials(cfg)

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read config file "+filePath)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to parse YAML config "+filePath)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to parse JSON config "+filePath)
		}
	default:
		return nil, errorwrapper.NewError("unsupported config file extension '%s'", ext)
	}

	return cfg, nil
}

// applyEnvCredentials fills credential fields left empty by the config file
// from the environment, so secrets can stay out of checked-in config.
func applyEnvCredentials(cfg *GlobalConfig) {
	if cfg.SearchConfig.APIKey == "" {
		cfg.SearchConfig.APIKey = os.Getenv("SERPER_API_KEY")
	}
	if cfg.RelevanceConfig.APIKey == "" {
		cfg.RelevanceConfig.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.NotificationConfig.EmailUser == "" {
		cfg.NotificationConfig.EmailUser = os.Getenv("EMAIL_USER")
	}
	if cfg.NotificationConfig.EmailPassword == "" {
		cfg.NotificationConfig.EmailPassword = os.Getenv("EMAIL_PASSWORD")
	}
}
