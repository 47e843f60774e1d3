package logger

import (
	"strings"

	"productwatch/internal/config"

	"github.com/rs/zerolog"
)

// LogFormat represents the output format of log records.
type LogFormat string

const (
	FormatJSON    LogFormat = "json"
	FormatConsole LogFormat = "console"
	FormatText    LogFormat = "text"
)

// LoggerConfig is the resolved logger configuration.
type LoggerConfig struct {
	Level         zerolog.Level
	Format        LogFormat
	EnableConsole bool
	EnableFile    bool
	FilePath      string
	MaxSizeMB     int
	MaxBackups    int
}

// DefaultLoggerConfig returns the default resolved configuration.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:         zerolog.InfoLevel,
		Format:        FormatConsole,
		EnableConsole: true,
		MaxSizeMB:     config.DefaultMaxLogSizeMB,
		MaxBackups:    config.DefaultMaxLogBackups,
	}
}

// ConvertConfig resolves a config.LogConfig into a LoggerConfig.
func ConvertConfig(cfg config.LogConfig) LoggerConfig {
	resolved := DefaultLoggerConfig()

	if cfg.LogLevel != "" {
		if level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err == nil {
			resolved.Level = level
		}
	}
	resolved.Format = ParseFormat(cfg.LogFormat)
	if cfg.LogFile != "" {
		resolved.EnableFile = true
		resolved.FilePath = cfg.LogFile
	}
	if cfg.MaxLogSizeMB > 0 {
		resolved.MaxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups > 0 {
		resolved.MaxBackups = cfg.MaxLogBackups
	}
	return resolved
}

// ParseFormat parses a string format to LogFormat.
func ParseFormat(formatStr string) LogFormat {
	switch strings.ToLower(formatStr) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatConsole
	}
}
