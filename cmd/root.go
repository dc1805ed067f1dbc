package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"invoices/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Invoices - render billing documents from a YAML record set",
	Long: `Invoices reads a YAML record set of customers and invoices, computes
net, VAT and gross totals and due dates, and renders one document per invoice
from a Go template (LaTeX by default).

Settings are read from the environment and an optional .env file; command
line flags take precedence.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("Invoices CLI executed without command")

		_ = cmd.Help()
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
