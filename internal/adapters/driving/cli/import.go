package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var importReindex bool

var importCmd = &cobra.Command{
	Use:   "import [csv-file]",
	Short: "Import budget ledger rows from a CSV export",
	Long: `Loads expense rows from a portfolio budget statement CSV export.
Rows missing a portfolio, department or program are skipped. Blank,
"-" and "N/A" amounts are recorded as not published.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importReindex, "reindex", false, "refresh the document index after the import")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()

	rows, err := ingestService.ImportBudgetCSV(ctx, args[0])
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	cmd.Printf("Imported %d ledger rows.\n", rows)

	if importReindex {
		stats, err := ingestService.Reindex(ctx, false)
		if err != nil {
			return fmt.Errorf("reindex failed: %w", err)
		}
		outputIndexStats(cmd, stats)
	}
	return nil
}
