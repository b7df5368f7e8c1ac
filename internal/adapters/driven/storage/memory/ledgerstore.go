package memory

import (
	"context"
	"sync"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// Ensure LedgerStore implements the interface.
var _ driven.LedgerStore = (*LedgerStore)(nil)

// LedgerStore is an in-memory implementation of driven.LedgerStore.
type LedgerStore struct {
	mu   sync.RWMutex
	rows []domain.ExpenseRow
}

// NewLedgerStore creates a new in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{}
}

// SaveRows appends imported expense rows.
func (s *LedgerStore) SaveRows(_ context.Context, rows []domain.ExpenseRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

// GroupTotals computes per-group sums and row counts. Rows with no
// recorded amount for the fiscal year are excluded.
func (s *LedgerStore) GroupTotals(_ context.Context, q driven.LedgerQuery) ([]domain.GroupTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]*domain.GroupTotal)
	var order []string

	for _, row := range s.rows {
		if !q.Filter.Matches(row) {
			continue
		}
		amount, ok := row.Amount(q.FiscalYear)
		if !ok {
			continue
		}
		label := row.GroupLabel(q.GroupBy)
		g, seen := totals[label]
		if !seen {
			g = &domain.GroupTotal{Group: label}
			totals[label] = g
			order = append(order, label)
		}
		g.Sum += amount
		g.Rows++
	}

	out := make([]domain.GroupTotal, 0, len(order))
	for _, label := range order {
		out = append(out, *totals[label])
	}
	return out, nil
}
