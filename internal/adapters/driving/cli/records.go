package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// recordStore is wired separately from Services; only this command
// reads records directly rather than through the query core.
var recordStore driven.RecordStore

// SetRecordStore wires the record store into the records command.
func SetRecordStore(store driven.RecordStore) {
	recordStore = store
}

var recordsCmd = &cobra.Command{
	Use:       "records [table]",
	Short:     "List operational records of one source table",
	Long:      `Lists the records of an operational table: finance_records, hr_records or procurement_records.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: domain.SourceTables,
	RunE:      runRecords,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
}

func runRecords(cmd *cobra.Command, args []string) error {
	if recordStore == nil {
		return errors.New("record store not configured")
	}

	table := args[0]
	recs, err := recordStore.List(context.Background(), table)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", table, err)
	}

	if len(recs) == 0 {
		cmd.Printf("No records in %s.\n", table)
		return nil
	}

	for _, rec := range recs {
		cmd.Printf("  %-20s %s\n", rec.Key(), rec.Summary())
	}
	cmd.Printf("%d records.\n", len(recs))
	return nil
}
