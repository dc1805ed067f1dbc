package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // trace, debug, info, warn, error, fatal, panic
	Format     string // json, console
	TimeFormat string // RFC3339, Unix, or custom format
	Output     string // stdout, stderr, or file path
}

// DefaultConfig returns a sensible default logging configuration.
// Logs go to stderr so stdout stays free for command output.
func DefaultConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "console",
		TimeFormat: time.RFC3339,
		Output:     "stderr",
	}
}

// Setup initializes the global logger with the provided configuration
func Setup(config LogConfig) error {
	output, err := openOutput(config.Output)
	if err != nil {
		return err
	}
	return SetupWriter(config, output)
}

// SetupWriter initializes the global logger writing to w. The Output field
// of config is ignored.
func SetupWriter(config LogConfig, w io.Writer) error {
	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	output := w
	if strings.ToLower(config.Format) != "json" {
		// Console is also the fallback for unknown formats
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: config.TimeFormat,
			NoColor:    config.Output != "stdout" && config.Output != "stderr",
		}
	}

	log.Logger = zerolog.New(output).With().
		Timestamp().
		Caller().
		Logger()

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	return nil
}

func openOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		// Assume it's a file path
		return os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	}
}

// GetLogger returns a logger instance
func GetLogger() zerolog.Logger {
	return log.Logger
}

// WithComponent returns a logger with a component field
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// WithInvoice returns a component logger tagged with an invoice id.
func WithInvoice(component string, invoiceID int) zerolog.Logger {
	return log.Logger.With().
		Str("component", component).
		Int("invoice_id", invoiceID).
		Logger()
}
