package driven

import (
	"context"

	"github.com/openaudit/govquery/internal/core/domain"
)

// LedgerQuery describes one grouped aggregate read.
type LedgerQuery struct {
	// FiscalYear selects the amount column. Rows with no recorded
	// amount for this year are excluded from both sums and counts.
	FiscalYear string

	// GroupBy is the grouping dimension.
	GroupBy domain.GroupDim

	// Filter restricts the rows before grouping.
	Filter domain.LedgerFilter
}

// LedgerStore provides read-only aggregate access to the budget ledger.
// Reads are against a point-in-time snapshot; the import pipeline owns
// all writes.
type LedgerStore interface {
	// GroupTotals computes per-group sums and row counts. Group order
	// is unspecified; callers sort.
	GroupTotals(ctx context.Context, q LedgerQuery) ([]domain.GroupTotal, error)

	// SaveRows appends imported expense rows. Used by the CSV import
	// pipeline only, never by the query core.
	SaveRows(ctx context.Context, rows []domain.ExpenseRow) error
}
