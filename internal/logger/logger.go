package logger

import (
	"io"
	stdlog "log" // Standard Go log package, aliased to avoid conflict with zerolog field
	"os"
	"path/filepath"

	"productwatch/internal/config"
	"productwatch/internal/errorwrapper"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a zerolog logger from configuration. Console and file writers
// are combined with a MultiLevelWriter; file output rotates via lumberjack.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	resolved := ConvertConfig(cfg)

	writers := createWriters(resolved)
	if len(writers) == 0 {
		return zerolog.Logger{}, errorwrapper.NewError("no output writers configured")
	}

	multiWriter := zerolog.MultiLevelWriter(writers...)
	instance := zerolog.New(multiWriter).
		Level(resolved.Level).
		With().
		Timestamp().
		Logger()

	zerolog.SetGlobalLevel(resolved.Level)
	stdlog.SetOutput(instance)
	stdlog.SetFlags(0)

	return instance, nil
}

func createWriters(cfg LoggerConfig) []io.Writer {
	var writers []io.Writer

	if cfg.EnableConsole {
		writers = append(writers, consoleWriter(cfg.Format, os.Stderr, false))
	}

	if cfg.EnableFile {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err == nil {
			rotated := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				LocalTime:  true,
			}
			writers = append(writers, consoleWriter(cfg.Format, rotated, true))
		}
	}

	return writers
}

func consoleWriter(format LogFormat, out io.Writer, noColor bool) io.Writer {
	switch format {
	case FormatJSON:
		return out
	case FormatText:
		return zerolog.ConsoleWriter{Out: out, NoColor: true}
	default:
		return zerolog.ConsoleWriter{Out: out, NoColor: noColor}
	}
}
