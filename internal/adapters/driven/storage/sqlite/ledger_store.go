package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// ledgerStore implements driven.LedgerStore.
type ledgerStore struct {
	store *Store
}

var _ driven.LedgerStore = (*ledgerStore)(nil)

// amountColumns maps fiscal-year labels to their ledger columns. Only
// these labels are queryable; anything else is rejected before it can
// reach SQL text.
var amountColumns = map[string]string{
	"2023-24": "amount_2023_24",
	"2024-25": "amount_2024_25",
	"2025-26": "amount_2025_26",
	"2026-27": "amount_2026_27",
	"2027-28": "amount_2027_28",
}

var groupColumns = map[domain.GroupDim]string{
	domain.GroupByPortfolio:   "portfolio",
	domain.GroupByDepartment:  "department",
	domain.GroupByProgram:     "program",
	domain.GroupByExpenseType: "expense_type",
}

// GroupTotals computes per-group sums and row counts. Rows with a NULL
// amount for the fiscal year contribute to neither.
func (s *ledgerStore) GroupTotals(ctx context.Context, q driven.LedgerQuery) ([]domain.GroupTotal, error) {
	amountCol, ok := amountColumns[q.FiscalYear]
	if !ok {
		return nil, fmt.Errorf("unknown fiscal year %q: %w", q.FiscalYear, domain.ErrInvalidInput)
	}
	groupCol, ok := groupColumns[q.GroupBy]
	if !ok {
		return nil, fmt.Errorf("unknown group dimension %q: %w", q.GroupBy, domain.ErrInvalidInput)
	}

	where, args := filterClauses(q.Filter)
	where = append(where, amountCol+" IS NOT NULL")

	query := fmt.Sprintf(`
		SELECT %s, SUM(%s), COUNT(*)
		FROM budget_expenses
		WHERE %s
		GROUP BY %s
	`, groupCol, amountCol, strings.Join(where, " AND "), groupCol)

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying group totals: %w", err)
	}
	defer rows.Close()

	var out []domain.GroupTotal
	for rows.Next() {
		var g domain.GroupTotal
		if err := rows.Scan(&g.Group, &g.Sum, &g.Rows); err != nil {
			return nil, fmt.Errorf("scanning group total: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating group totals: %w", err)
	}
	return out, nil
}

// SaveRows appends imported expense rows in one transaction.
func (s *ledgerStore) SaveRows(ctx context.Context, expenseRows []domain.ExpenseRow) error {
	if len(expenseRows) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO budget_expenses (
			id, portfolio, department, program, expense_type,
			amount_2023_24, amount_2024_25, amount_2025_26, amount_2026_27, amount_2027_28,
			import_batch, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range expenseRows {
		createdAt := row.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := stmt.ExecContext(ctx,
			row.ID, row.Portfolio, row.Department, row.Program, row.ExpenseType,
			nullAmount(row, "2023-24"), nullAmount(row, "2024-25"), nullAmount(row, "2025-26"),
			nullAmount(row, "2026-27"), nullAmount(row, "2027-28"),
			row.ImportBatch, createdAt,
		)
		if err != nil {
			return fmt.Errorf("inserting expense row %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing expense rows: %w", err)
	}
	return nil
}

func filterClauses(f domain.LedgerFilter) ([]string, []any) {
	where := []string{"1=1"}
	var args []any

	like := func(col, v string) {
		where = append(where, col+` LIKE ? ESCAPE '\' COLLATE NOCASE`)
		args = append(args, likePattern(v))
	}

	if f.Portfolio != "" {
		like("portfolio", f.Portfolio)
	}
	if f.Department != "" {
		like("department", f.Department)
	}
	if f.Program != "" {
		like("program", f.Program)
	}
	if f.Keyword != "" {
		where = append(where,
			`(portfolio LIKE ? ESCAPE '\' COLLATE NOCASE OR department LIKE ? ESCAPE '\' COLLATE NOCASE OR program LIKE ? ESCAPE '\' COLLATE NOCASE)`)
		kw := likePattern(f.Keyword)
		args = append(args, kw, kw, kw)
	}
	return where, args
}

// likePattern wraps v in a substring pattern, escaping LIKE
// metacharacters so user text never acts as a wildcard.
func likePattern(v string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return "%" + r.Replace(v) + "%"
}

func nullAmount(row domain.ExpenseRow, fiscalYear string) sql.NullFloat64 {
	v, ok := row.Amount(fiscalYear)
	return sql.NullFloat64{Float64: v, Valid: ok}
}
