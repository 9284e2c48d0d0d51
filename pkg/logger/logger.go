// Package logger wraps zerolog with the initialization knobs depthkeeper's
// processes need: text vs JSON output and a level parsed from configuration.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. It starts usable (info level, console
// writer) so packages that log during init before Init runs don't panic.
var Log zerolog.Logger = newConsoleLogger(zerolog.InfoLevel)

// Config controls Init.
type Config struct {
	Level  string `yaml:"level"`  // debug|info|warn|error|fatal, default info
	Format string `yaml:"format"` // text|json, default text
}

// Init replaces the global logger per cfg. Call once from main.
func Init(cfg Config) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	switch strings.ToLower(cfg.Format) {
	case "json":
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMicro
		Log = zerolog.New(os.Stdout).Level(level).With().Timestamp().Caller().Logger()
	case "text", "":
		Log = newConsoleLogger(level)
	default:
		return fmt.Errorf("logger: unsupported format %q", cfg.Format)
	}

	Log.Info().Str("level", level.String()).Str("format", cfg.Format).Msg("logger initialized")
	return nil
}

func newConsoleLogger(level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = "15:04:05.000000"
	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05.000000"}
	return zerolog.New(writer).Level(level).With().Timestamp().Caller().Logger()
}

func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "fatal":
		return zerolog.FatalLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("logger: unknown level %q", level)
	}
}

// Get returns the global logger. Useful for handing to libraries that want
// a *zerolog.Logger rather than importing this package.
func Get() *zerolog.Logger {
	return &Log
}
