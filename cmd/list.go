package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"invoices/internal/logger"
	"invoices/internal/render"
	"invoices/pkg/models"
)

var listCmd = &cobra.Command{
	Use:   "list [record-set.yaml]",
	Short: "Print the computed rendering context of every invoice as JSON",
	Long: `Load a YAML record set and print, for each invoice, the values a template
receives: dates, due date, customer, lines with amounts and VAT, and totals.

Invoices whose customer key matches no customer are listed separately under
"unresolved". The id of an invoice is its 1-based position in the record set,
not an invoice number.`,
	Example: `  # Inspect the computed totals
  invoices list db.yaml

  # Save them to a file
  invoices list db.yaml -o invoices.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

// ListOutput is the JSON document printed by the list command.
type ListOutput struct {
	Source     string              `json:"source"`
	Invoices   []render.Context    `json:"invoices"`
	Unresolved []UnresolvedInvoice `json:"unresolved,omitempty"`
}

// UnresolvedInvoice identifies an invoice without a customer.
type UnresolvedInvoice struct {
	ID          int    `json:"id"`
	CustomerKey string `json:"customer_key"`
	Date        string `json:"date"`
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	addDefaultsFlags(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("list")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	outputPath, _ := cmd.Flags().GetString("output")
	source := sourcePath(args, cfg)

	store, err := loadRecordSet(source, cfg, log)
	if err != nil {
		return err
	}

	output, err := buildListOutput(source, store.Invoices())
	if err != nil {
		return err
	}

	log.Info().
		Int("invoices", len(output.Invoices)).
		Int("unresolved", len(output.Unresolved)).
		Msg("Invoice contexts computed")

	return writeListOutput(cmd, output, outputPath, log)
}

func buildListOutput(source string, invoices []*models.Invoice) (ListOutput, error) {
	output := ListOutput{
		Source:   source,
		Invoices: make([]render.Context, 0, len(invoices)),
	}

	for _, inv := range invoices {
		ctx, err := render.NewContext(inv)
		if errors.Is(err, models.ErrMissingReference) {
			output.Unresolved = append(output.Unresolved, UnresolvedInvoice{
				ID:          inv.ID(),
				CustomerKey: inv.CustomerKey(),
				Date:        inv.Date().String(),
			})
			continue
		}
		if err != nil {
			return ListOutput{}, fmt.Errorf("invoice %d: %w", inv.ID(), err)
		}
		output.Invoices = append(output.Invoices, ctx)
	}
	return output, nil
}

// writeListOutput writes the contexts as indented JSON to a file or stdout
func writeListOutput(cmd *cobra.Command, output ListOutput, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal invoice contexts to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Invoice contexts written to file")
		return nil
	}

	out := cmd.OutOrStdout()
	if _, err := out.Write(jsonData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}
