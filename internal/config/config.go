package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"invoices/internal/logger"
	"invoices/pkg/models"
)

type Config struct {
	// Input and output
	SourcePath string
	Template   string // empty selects the embedded LaTeX template
	OutputDir  string
	OutputExt  string

	// Invoice defaults
	Currency          string
	DefaultUnit       string
	DefaultVATPercent decimal.Decimal
	DuePeriodDays     int

	// Customer reference policy
	StrictReferences bool

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		SourcePath:    getEnv("INVOICE_SOURCE", "./db.yaml"),
		Template:      getEnv("INVOICE_TEMPLATE", ""),
		OutputDir:     getEnv("INVOICE_OUTPUT_DIR", "."),
		OutputExt:     getEnv("INVOICE_OUTPUT_EXT", "tex"),
		Currency:      getEnv("INVOICE_CURRENCY", models.DefaultCurrency),
		DefaultUnit:   getEnv("INVOICE_DEFAULT_UNIT", models.DefaultUnit),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
	}

	vat, err := decimal.NewFromString(getEnv("INVOICE_DEFAULT_VAT_PERCENT", strconv.Itoa(models.DefaultVATPercent)))
	if err != nil {
		return nil, fmt.Errorf("INVOICE_DEFAULT_VAT_PERCENT must be a number: %w", err)
	}
	config.DefaultVATPercent = vat

	days, err := strconv.Atoi(getEnv("INVOICE_DUE_PERIOD_DAYS", strconv.Itoa(models.DefaultDuePeriodDays)))
	if err != nil {
		return nil, fmt.Errorf("INVOICE_DUE_PERIOD_DAYS must be an integer: %w", err)
	}
	config.DuePeriodDays = days

	strict, err := strconv.ParseBool(getEnv("INVOICE_STRICT_REFERENCES", "false"))
	if err != nil {
		return nil, fmt.Errorf("INVOICE_STRICT_REFERENCES must be a boolean: %w", err)
	}
	config.StrictReferences = strict

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		SourcePath:        "./db.yaml",
		OutputDir:         ".",
		OutputExt:         "tex",
		Currency:          models.DefaultCurrency,
		DefaultUnit:       models.DefaultUnit,
		DefaultVATPercent: decimal.NewFromInt(models.DefaultVATPercent),
		DuePeriodDays:     models.DefaultDuePeriodDays,
		LogLevel:          "info",
		LogFormat:         "console",
		LogTimeFormat:     "2006-01-02T15:04:05Z07:00",
		LogOutput:         "stderr",
	}
}

// Validate checks value ranges. It is called by Load and again after
// command line flags have been applied.
func (c *Config) Validate() error {
	if c.DefaultVATPercent.IsNegative() {
		return fmt.Errorf("default VAT percent must not be negative, got %s", c.DefaultVATPercent)
	}
	if c.DuePeriodDays < 0 {
		return fmt.Errorf("due period must not be negative, got %d", c.DuePeriodDays)
	}
	if strings.TrimSpace(c.Currency) == "" {
		return fmt.Errorf("INVOICE_CURRENCY must not be empty")
	}
	if strings.ContainsAny(c.OutputExt, `/\`) {
		return fmt.Errorf("output extension %q must not contain path separators", c.OutputExt)
	}
	return nil
}

// Defaults returns the invoice defaults table of the configuration.
func (c *Config) Defaults() models.Defaults {
	return models.Defaults{
		Unit:          c.DefaultUnit,
		VATPercent:    c.DefaultVATPercent,
		DuePeriodDays: c.DuePeriodDays,
		Currency:      c.Currency,
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
