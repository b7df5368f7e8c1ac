package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a small demonstration dataset",
	Long: `Inserts sample ledger rows and operational records (finance, HR,
procurement) and indexes them, so queries can be tried without a
real budget export.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	stats, err := ingestService.Seed(context.Background())
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	cmd.Println("Sample data loaded.")
	outputIndexStats(cmd, stats)
	return nil
}
