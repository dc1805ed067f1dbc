package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invoices/pkg/models"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"INVOICE_SOURCE", "INVOICE_TEMPLATE", "INVOICE_OUTPUT_DIR", "INVOICE_OUTPUT_EXT",
		"INVOICE_CURRENCY", "INVOICE_DEFAULT_UNIT", "INVOICE_DEFAULT_VAT_PERCENT",
		"INVOICE_DUE_PERIOD_DAYS", "INVOICE_STRICT_REFERENCES",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_TIME_FORMAT", "LOG_OUTPUT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	want := Default()
	assert.True(t, want.DefaultVATPercent.Equal(cfg.DefaultVATPercent))
	want.DefaultVATPercent = cfg.DefaultVATPercent
	assert.Equal(t, want, cfg)

	defaults := cfg.Defaults()
	standard := models.StandardDefaults()
	assert.Equal(t, standard.Unit, defaults.Unit)
	assert.Equal(t, standard.Currency, defaults.Currency)
	assert.Equal(t, standard.DuePeriodDays, defaults.DuePeriodDays)
	assert.True(t, standard.VATPercent.Equal(defaults.VATPercent))
	assert.False(t, cfg.StrictReferences)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("INVOICE_SOURCE", "/data/records.yaml")
	t.Setenv("INVOICE_TEMPLATE", "/data/invoice.html")
	t.Setenv("INVOICE_OUTPUT_DIR", "/tmp/out")
	t.Setenv("INVOICE_OUTPUT_EXT", "html")
	t.Setenv("INVOICE_CURRENCY", "EUR")
	t.Setenv("INVOICE_DEFAULT_UNIT", "h")
	t.Setenv("INVOICE_DEFAULT_VAT_PERCENT", "19.5")
	t.Setenv("INVOICE_DUE_PERIOD_DAYS", "14")
	t.Setenv("INVOICE_STRICT_REFERENCES", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/records.yaml", cfg.SourcePath)
	assert.Equal(t, "/data/invoice.html", cfg.Template)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "html", cfg.OutputExt)
	assert.True(t, cfg.StrictReferences)

	defaults := cfg.Defaults()
	assert.Equal(t, "EUR", defaults.Currency)
	assert.Equal(t, "h", defaults.Unit)
	assert.True(t, defaults.VATPercent.Equal(decimal.RequireFromString("19.5")))
	assert.Equal(t, 14, defaults.DuePeriodDays)

	logCfg := cfg.GetLoggerConfig()
	assert.Equal(t, "debug", logCfg.Level)
	assert.Equal(t, "json", logCfg.Format)
	assert.Equal(t, "stderr", logCfg.Output)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"INVOICE_DEFAULT_VAT_PERCENT": "twenty",
		"INVOICE_DUE_PERIOD_DAYS":     "-1",
		"INVOICE_STRICT_REFERENCES":   "maybe",
		"INVOICE_OUTPUT_EXT":          "../tex",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}

	t.Run("non-integer due days", func(t *testing.T) {
		t.Setenv("INVOICE_DUE_PERIOD_DAYS", "1.5")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.DefaultVATPercent = decimal.NewFromInt(-1)
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Currency = "  "
	assert.Error(t, cfg.Validate())
}
