package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invoices/internal/logger"
)

const recordSet = `customers:
  - key: acme
    address_lines: [Acme Inc, 123 Main St]
  - key: svensson
    address_lines: [Svensson & Co AB, Box 42]
invoices:
  - customer_key: acme
    invoice_date: 2024-03-01
    delivered_on: 2024-02-28
    content:
      - {item: Widget, quantity: 2, unit_price: 100}
  - customer_key: svensson
    invoice_date: 2024-12-16
    delivered_on: 2024-12-13
    content:
      - {item: Systemutveckling, quantity: 38, unit_price: 950}
`

const recordSetWithUnknown = `customers:
  - key: acme
    address_lines: [Acme Inc]
invoices:
  - customer_key: acme
    invoice_date: 2024-03-01
    delivered_on: 2024-02-28
    content:
      - {item: Widget, quantity: 2, unit_price: 100}
  - customer_key: ghost
    invoice_date: 2024-03-02
    delivered_on: 2024-03-01
    content: []
`

func writeRecordSet(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func resetFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	for _, key := range []string{
		"INVOICE_SOURCE", "INVOICE_TEMPLATE", "INVOICE_OUTPUT_DIR", "INVOICE_OUTPUT_EXT",
		"INVOICE_CURRENCY", "INVOICE_DEFAULT_UNIT", "INVOICE_DEFAULT_VAT_PERCENT",
		"INVOICE_DUE_PERIOD_DAYS", "INVOICE_STRICT_REFERENCES",
	} {
		t.Setenv(key, "")
	}
	require.NoError(t, logger.SetupWriter(logger.DefaultConfig(), io.Discard))

	resetFlags(rootCmd, renderCmd, listCmd)
	t.Cleanup(func() { resetFlags(rootCmd, renderCmd, listCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRenderWritesOneDocumentPerInvoice(t *testing.T) {
	source := writeRecordSet(t, recordSet)
	outDir := t.TempDir()

	out, err := executeCommand(t, "render", source, "--output-dir", outDir)
	require.NoError(t, err)

	assert.Contains(t, out, "Rendered: 2")
	assert.NotContains(t, out, "FAIL")

	data, err := os.ReadFile(filepath.Join(outDir, "20240301_Acme_Inc.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Acme Inc")
	assert.Contains(t, string(data), "250.00 kr")

	_, err = os.Stat(filepath.Join(outDir, "20241216_Svensson_Co_AB.tex"))
	assert.NoError(t, err)
}

func TestRenderCustomTemplate(t *testing.T) {
	source := writeRecordSet(t, recordSet)
	outDir := t.TempDir()
	tpl := filepath.Join(t.TempDir(), "invoice.txt.tmpl")
	require.NoError(t, os.WriteFile(tpl,
		[]byte("{{.Customer.Name}}: {{formatMoney .TotalWithVAT .Currency}}\n"), 0644))

	_, err := executeCommand(t, "render", source, "-o", outDir, "-t", tpl, "--currency", "SEK")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "20240301_Acme_Inc.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc: 250.00 SEK\n", string(data))
}

func TestRenderDryRunWritesNothing(t *testing.T) {
	source := writeRecordSet(t, recordSet)
	outDir := filepath.Join(t.TempDir(), "out")

	out, err := executeCommand(t, "render", source, "-o", outDir, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "20240301_Acme_Inc.tex (dry run)")
	_, err = os.Stat(outDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRenderDryRunWarnsOnNameCollision(t *testing.T) {
	source := writeRecordSet(t, `customers:
  - key: acme
    address_lines: [Acme Inc]
invoices:
  - customer_key: acme
    invoice_date: 2024-03-01
    delivered_on: 2024-03-01
    content: [{item: First, quantity: 1, unit_price: 10}]
  - customer_key: acme
    invoice_date: 2024-03-01
    delivered_on: 2024-03-01
    content: [{item: Second, quantity: 1, unit_price: 20}]
`)

	out, err := executeCommand(t, "render", source, "-o", t.TempDir(), "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "WARN  #2  20240301_Acme_Inc.tex (overwrote an earlier document)")
	assert.Contains(t, out, "Rendered: 2")
}

func TestRenderReportsUnresolvedCustomer(t *testing.T) {
	source := writeRecordSet(t, recordSetWithUnknown)
	outDir := t.TempDir()

	out, err := executeCommand(t, "render", source, "-o", outDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 invoices failed")
	assert.Contains(t, out, "FAIL  #2")
	assert.Contains(t, out, "Rendered: 1")

	_, err = os.Stat(filepath.Join(outDir, "20240301_Acme_Inc.tex"))
	assert.NoError(t, err)
}

func TestRenderStrictFailsBeforeWriting(t *testing.T) {
	source := writeRecordSet(t, recordSetWithUnknown)
	outDir := t.TempDir()

	_, err := executeCommand(t, "render", source, "-o", outDir, "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown customer "ghost"`)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRenderMalformedRecordSet(t *testing.T) {
	source := writeRecordSet(t, "customers: [\n")
	outDir := t.TempDir()

	_, err := executeCommand(t, "render", source, "-o", outDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a valid record set")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRenderMissingRecordSet(t *testing.T) {
	_, err := executeCommand(t, "render", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record set not found")
}

func TestRenderRejectsInvalidVAT(t *testing.T) {
	source := writeRecordSet(t, recordSet)

	_, err := executeCommand(t, "render", source, "--vat", "abc", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --vat value")
}

func TestListPrintsContexts(t *testing.T) {
	source := writeRecordSet(t, recordSetWithUnknown)

	out, err := executeCommand(t, "list", source, "--vat", "12")
	require.NoError(t, err)

	var got struct {
		Source   string `json:"source"`
		Invoices []struct {
			ID           int    `json:"id"`
			Date         string `json:"date"`
			DueDate      string `json:"due_date"`
			TotalWithVAT string `json:"total_with_vat"`
			Customer     struct {
				Name string `json:"name"`
			} `json:"customer"`
		} `json:"invoices"`
		Unresolved []UnresolvedInvoice `json:"unresolved"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, source, got.Source)
	require.Len(t, got.Invoices, 1)
	assert.Equal(t, 1, got.Invoices[0].ID)
	assert.Equal(t, "2024-03-01", got.Invoices[0].Date)
	assert.Equal(t, "2024-03-31", got.Invoices[0].DueDate)
	assert.Equal(t, "224", got.Invoices[0].TotalWithVAT)
	assert.Equal(t, "Acme Inc", got.Invoices[0].Customer.Name)
	assert.Equal(t, []UnresolvedInvoice{{ID: 2, CustomerKey: "ghost", Date: "2024-03-02"}}, got.Unresolved)
}

func TestListWritesOutputFile(t *testing.T) {
	source := writeRecordSet(t, recordSet)
	output := filepath.Join(t.TempDir(), "invoices.json")

	out, err := executeCommand(t, "list", source, "-o", output)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var got ListOutput
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got.Invoices, 2)
	assert.Empty(t, got.Unresolved)
}

func TestDocumentExtension(t *testing.T) {
	tests := []struct {
		template string
		want     string
	}{
		{"invoice.tex.tmpl", "tex"},
		{"templates/invoice.html.tmpl", "html"},
		{"invoice.html", "html"},
		{"invoice.tmpl", ""},
		{"invoice", ""},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			assert.Equal(t, tt.want, documentExtension(tt.template))
		})
	}
}
