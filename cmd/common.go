package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"invoices/internal/config"
	"invoices/internal/db"
)

// addDefaultsFlags registers the flags that override the invoice defaults.
func addDefaultsFlags(cmd *cobra.Command) {
	cmd.Flags().String("currency", "", "Currency label for all invoices (default from INVOICE_CURRENCY or \"kr\")")
	cmd.Flags().String("unit", "", "Unit label for lines without one (default from INVOICE_DEFAULT_UNIT or \"tim\")")
	cmd.Flags().String("vat", "", "VAT percent for lines without one (default from INVOICE_DEFAULT_VAT_PERCENT or 25)")
	cmd.Flags().Int("due-days", -1, "Due period in days for invoices without one (default from INVOICE_DUE_PERIOD_DAYS or 30)")
	cmd.Flags().Bool("strict", false, "Fail the load when an invoice references an unknown customer")
}

// loadConfig reads the environment configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("currency"); v != "" {
		cfg.Currency = v
	}
	if v, _ := flags.GetString("unit"); v != "" {
		cfg.DefaultUnit = v
	}
	if v, _ := flags.GetString("vat"); v != "" {
		vat, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid --vat value %q: %w", v, err)
		}
		cfg.DefaultVATPercent = vat
	}
	if flags.Changed("due-days") {
		cfg.DuePeriodDays, _ = flags.GetInt("due-days")
	}
	if flags.Changed("strict") {
		cfg.StrictReferences, _ = flags.GetBool("strict")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadRecordSet loads the record set at path with the configured defaults.
func loadRecordSet(path string, cfg *config.Config, log zerolog.Logger) (*db.DB, error) {
	store := db.New(
		db.WithDefaults(cfg.Defaults()),
		db.WithStrictReferences(cfg.StrictReferences),
	)

	log.Info().
		Str("source", path).
		Bool("strict", cfg.StrictReferences).
		Msg("Loading record set")

	if err := store.LoadFile(path); err != nil {
		return nil, handleLoadError(err, path, log)
	}
	return store, nil
}

// handleLoadError provides user-friendly error messages for load failures
func handleLoadError(err error, path string, log zerolog.Logger) error {
	log.Error().Err(err).Str("source", path).Msg("Loading record set failed")

	var formatErr *db.DataFormatError
	var refErr *db.UnresolvedReferenceError

	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("record set not found: %s", path)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("permission denied reading record set: %s", path)
	case errors.As(err, &formatErr):
		return fmt.Errorf("%s is not a valid record set, nothing was rendered: %w", path, err)
	case errors.As(err, &refErr):
		return fmt.Errorf("invoice %d references unknown customer %q (strict mode): %w",
			refErr.InvoiceID, refErr.CustomerKey, err)
	default:
		return fmt.Errorf("failed to load record set: %w", err)
	}
}

// documentExtension returns the file extension for documents rendered from
// template: the template's own extension, ignoring a trailing .tmpl.
func documentExtension(template string) string {
	base := strings.TrimSuffix(filepath.Base(template), ".tmpl")
	return strings.TrimPrefix(filepath.Ext(base), ".")
}

func sourcePath(args []string, cfg *config.Config) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.SourcePath
}
