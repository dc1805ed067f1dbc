package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"invoices/internal/batch"
	"invoices/internal/logger"
	"invoices/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render [record-set.yaml]",
	Short: "Render one document per invoice of a YAML record set",
	Long: `Load customers and invoices from a YAML record set, compute totals, VAT
and due dates, and render one document per invoice.

Documents are named <invoice date>_<customer name>.<ext>, for example
20240301_Acme_Inc.tex, and written to the output directory. A document with
the same name is overwritten.

An invoice that cannot be rendered (unknown customer, template error, write
error) is reported and skipped; the command exits non-zero when any invoice
failed. A malformed record set aborts before anything is written.

Environment variables:
  INVOICE_SOURCE               - Record set path when no argument is given (default ./db.yaml)
  INVOICE_TEMPLATE             - Template path (default: built-in LaTeX template)
  INVOICE_OUTPUT_DIR           - Output directory (default .)
  INVOICE_OUTPUT_EXT           - Document extension (default tex, or the template's)
  INVOICE_CURRENCY             - Currency label (default kr)
  INVOICE_DEFAULT_UNIT         - Unit label for lines without one (default tim)
  INVOICE_DEFAULT_VAT_PERCENT  - VAT percent for lines without one (default 25)
  INVOICE_DUE_PERIOD_DAYS      - Due period in days (default 30)
  INVOICE_STRICT_REFERENCES    - Fail on unknown customer keys (default false)`,
	Example: `  # Render db.yaml with the built-in LaTeX template into the current directory
  invoices render db.yaml

  # Render HTML documents into ./out
  invoices render db.yaml --template invoice.html.tmpl --output-dir out

  # Check that every invoice renders without writing anything
  invoices render db.yaml --dry-run --strict`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("template", "t", "", "Template file (default: built-in LaTeX template)")
	renderCmd.Flags().StringP("output-dir", "o", "", "Directory to write documents to")
	renderCmd.Flags().String("ext", "", "Document file extension")
	renderCmd.Flags().Bool("stop-on-error", false, "Stop at the first invoice that fails")
	renderCmd.Flags().Bool("dry-run", false, "Render every invoice but write nothing")
	addDefaultsFlags(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("render")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("template"); v != "" {
		cfg.Template = v
	}
	if v, _ := flags.GetString("output-dir"); v != "" {
		cfg.OutputDir = v
	}
	ext := cfg.OutputExt
	if v, _ := flags.GetString("ext"); v != "" {
		ext = v
	} else if os.Getenv("INVOICE_OUTPUT_EXT") == "" && cfg.Template != "" {
		if templateExt := documentExtension(cfg.Template); templateExt != "" {
			ext = templateExt
		}
	}
	if strings.ContainsAny(ext, `/\`) {
		return fmt.Errorf("invalid extension %q", ext)
	}
	stopOnError, _ := flags.GetBool("stop-on-error")
	dryRun, _ := flags.GetBool("dry-run")

	source := sourcePath(args, cfg)

	log.Info().
		Str("source", source).
		Str("template", cfg.Template).
		Str("output_dir", cfg.OutputDir).
		Str("ext", ext).
		Bool("dry_run", dryRun).
		Msg("Starting invoice rendering")

	renderer, err := createRenderer(cfg.Template)
	if err != nil {
		log.Error().Err(err).Str("template", cfg.Template).Msg("Failed to load template")
		return fmt.Errorf("failed to load template: %w", err)
	}

	store, err := loadRecordSet(source, cfg, log)
	if err != nil {
		return err
	}

	runner := batch.New(renderer, batch.NewDirWriter(cfg.OutputDir),
		batch.WithExtension(ext),
		batch.WithStopOnError(stopOnError),
		batch.WithDryRun(dryRun),
	)
	summary := runner.Run(store.Invoices())

	printSummary(cmd, summary, dryRun)

	if err := summary.Err(); err != nil {
		return fmt.Errorf("%d of %d invoices failed: %w",
			summary.Count(batch.StatusError), len(store.Invoices()), err)
	}
	return nil
}

func createRenderer(template string) (*render.TemplateRenderer, error) {
	if template == "" {
		return render.NewDefaultRenderer()
	}
	return render.NewTemplateRenderer(template)
}

func printSummary(cmd *cobra.Command, summary batch.Summary, dryRun bool) {
	out := cmd.OutOrStdout()

	for _, res := range summary.Results {
		switch res.Status {
		case batch.StatusError:
			fmt.Fprintf(out, "FAIL  #%d  %s: %v\n", res.InvoiceID, res.Stage, res.Err)
		case batch.StatusWarning:
			target := res.Path
			if dryRun {
				target = res.FileName
			}
			fmt.Fprintf(out, "WARN  #%d  %s (overwrote an earlier document)\n", res.InvoiceID, target)
		default:
			target := res.Path
			if dryRun {
				target = res.FileName + " (dry run)"
			}
			fmt.Fprintf(out, "OK    #%d  %s\n", res.InvoiceID, target)
		}
	}

	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintf(out, "Rendered: %d\n", summary.Count(batch.StatusSuccess)+summary.Count(batch.StatusWarning))
	if n := summary.Count(batch.StatusError); n > 0 {
		fmt.Fprintf(out, "Failed:   %d\n", n)
	}
	if summary.Aborted {
		fmt.Fprintln(out, "Stopped after the first failure (--stop-on-error)")
	}
}
