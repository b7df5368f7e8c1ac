package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultFiscalYear is assumed when a query names no year.
const DefaultFiscalYear = "2024-25"

// FiscalYears lists the budget years the ledger carries, in order.
var FiscalYears = []string{"2023-24", "2024-25", "2025-26", "2026-27", "2027-28"}

// GroupDim is a ledger grouping dimension.
type GroupDim string

// Grouping dimensions, portfolio ⊃ department ⊃ program.
const (
	GroupByPortfolio   GroupDim = "portfolio"
	GroupByDepartment  GroupDim = "department"
	GroupByProgram     GroupDim = "program"
	GroupByExpenseType GroupDim = "expense_type"
)

// ExpenseRow is one budget expense line item. Read-only to the query
// core; the import pipeline owns writes.
type ExpenseRow struct {
	// ID is the row's unique identifier.
	ID string

	// Portfolio is the top-level organisational unit.
	Portfolio string

	// Department is the agency within the portfolio.
	Department string

	// Program is the funded program within the department.
	Program string

	// ExpenseType categorises the expense, e.g. "Departmental Expenses".
	ExpenseType string

	// Amounts maps fiscal-year label to amount in thousands of AUD.
	// A missing key means no amount is recorded for that year.
	// Present amounts are never negative.
	Amounts map[string]float64

	// ImportBatch identifies the CSV import that produced the row.
	ImportBatch string

	// CreatedAt is when the row was imported.
	CreatedAt time.Time
}

// Amount returns the row's amount for the fiscal year and whether one
// is recorded.
func (r ExpenseRow) Amount(fiscalYear string) (float64, bool) {
	v, ok := r.Amounts[fiscalYear]
	return v, ok
}

// GroupLabel returns the row's label for a grouping dimension.
func (r ExpenseRow) GroupLabel(dim GroupDim) string {
	switch dim {
	case GroupByPortfolio:
		return r.Portfolio
	case GroupByDepartment:
		return r.Department
	case GroupByProgram:
		return r.Program
	case GroupByExpenseType:
		return r.ExpenseType
	}
	return ""
}

// LedgerFilter restricts ledger rows by case-insensitive substring
// match. Empty fields match everything.
type LedgerFilter struct {
	Portfolio  string
	Department string
	Program    string

	// Keyword matches any of portfolio, department or program.
	Keyword string
}

// Matches reports whether the row passes the filter.
func (f LedgerFilter) Matches(row ExpenseRow) bool {
	if f.Portfolio != "" && !containsFold(row.Portfolio, f.Portfolio) {
		return false
	}
	if f.Department != "" && !containsFold(row.Department, f.Department) {
		return false
	}
	if f.Program != "" && !containsFold(row.Program, f.Program) {
		return false
	}
	if f.Keyword != "" {
		if !containsFold(row.Portfolio, f.Keyword) &&
			!containsFold(row.Department, f.Keyword) &&
			!containsFold(row.Program, f.Keyword) {
			return false
		}
	}
	return true
}

// Empty reports whether the filter matches all rows.
func (f LedgerFilter) Empty() bool {
	return f == LedgerFilter{}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// GroupTotal is one aggregated group as returned by the ledger store.
// Ordering is the core's responsibility, not the store's.
type GroupTotal struct {
	// Group is the grouping label.
	Group string

	// Sum is the total amount across the group's rows.
	Sum float64

	// Rows is the number of rows with a recorded amount for the
	// target fiscal year. Rows without one are excluded from both
	// Sum and Rows.
	Rows int
}

// Avg returns the mean amount per contributing row, 0 for empty groups.
func (g GroupTotal) Avg() float64 {
	if g.Rows == 0 {
		return 0
	}
	return g.Sum / float64(g.Rows)
}

// NormalizeFiscalYear maps a year mention to a "YYYY-YY" fiscal-year
// label. An explicit "YYYY-YY" token is taken verbatim; a bare 4-digit
// year between 2023 and 2099 becomes the budget year starting that
// July, e.g. "2025" -> "2025-26". Returns "" when the text is neither,
// so counts like "5000" never read as years.
func NormalizeFiscalYear(token string) string {
	token = strings.TrimSpace(token)
	if len(token) == 7 && token[4] == '-' {
		if _, err := strconv.Atoi(token[:4]); err == nil {
			if _, err := strconv.Atoi(token[5:]); err == nil {
				return token
			}
		}
	}
	if len(token) == 4 {
		year, err := strconv.Atoi(token)
		if err != nil || year < 2023 || year > 2099 {
			return ""
		}
		return fmt.Sprintf("%d-%02d", year, (year+1)%100)
	}
	return ""
}
