// Package logger builds the zap loggers used across relicdb. One root
// logger is created per database instance; each subsystem (disk,
// buffer, heap, exec) gets a child logger carrying a component field so
// a log line can be traced back to the layer that emitted it.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the logging configuration of an instance.
type Config struct {
	// Level is the minimum level emitted ("debug", "info", "warn",
	// "error"). Empty means "info".
	Level string `yaml:"level"`
	// Format is "console" for human-readable output or "json" for
	// machine-shipped logs.
	Format string `yaml:"format"`
	// OutputFile is a file path, or "stdout"/"stderr". Empty means
	// stderr, which keeps logs out of any result stream on stdout.
	OutputFile string `yaml:"output_file"`
}

// New builds the root logger for a database instance. An unknown level
// or an unopenable sink is a configuration error, not something to
// paper over at startup.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	sink, err := openSink(cfg.OutputFile)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), sink, level)
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(sink)), nil
}

// For derives the child logger for one subsystem of the instance.
func For(base *zap.Logger, component string) *zap.Logger {
	return base.With(zap.String("component", component))
}

func newEncoder(format string) zapcore.Encoder {
	if strings.EqualFold(format, "console") {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func openSink(outputFile string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(outputFile) {
	case "stderr", "":
		return zapcore.AddSync(os.Stderr), nil
	case "stdout":
		return zapcore.AddSync(os.Stdout), nil
	default:
		file, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file %s: %w", outputFile, err)
		}
		return zapcore.AddSync(file), nil
	}
}
