// Package logger builds the zap loggers used by the command line tools.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

const (
	JSONFormat    = "json"
	ConsoleFormat = "console"
)

// Config holds configuration for the logger.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func DefaultConfig() Config {
	return Config{
		Level:  InfoLevel,
		Format: JSONFormat,
	}
}

// New creates a logger writing to stderr, so that command output on stdout
// stays machine readable.
func New(cfg Config) (*zap.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(cfg Config, w io.Writer) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case DebugLevel:
		level = zapcore.DebugLevel
	case InfoLevel, "":
		level = zapcore.InfoLevel
	case WarnLevel:
		level = zapcore.WarnLevel
	case ErrorLevel:
		level = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("unknown log level '%s'", cfg.Level)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case JSONFormat, "":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case ConsoleFormat:
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unknown log format '%s'", cfg.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)

	return zap.New(core, zap.AddCaller()), nil
}
