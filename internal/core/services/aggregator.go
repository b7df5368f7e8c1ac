package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
	"github.com/openaudit/govquery/internal/logger"
)

// TopNLimit caps top-N aggregation output.
const TopNLimit = 10

// ledgerSource names the store in data-source sets and evidence.
const ledgerSource = "budget_expenses"

// aggregateFunc selects the per-group figure reported.
type aggregateFunc string

const (
	aggSum aggregateFunc = "SUM"
	aggAvg aggregateFunc = "AVG"
)

// queryKind is one entry of the ordered dispatch table. The first kind
// whose match predicate accepts the query wins.
type queryKind struct {
	name    string
	match   func(lower string, cls domain.IntentClassification) bool
	groupBy func(lower string, cls domain.IntentClassification) domain.GroupDim
	agg     aggregateFunc
	limit   int // 0 = unlimited
}

// queryKinds is evaluated in priority order. Extending the engine means
// inserting a row here, not growing an if-chain.
var queryKinds = []queryKind{
	{
		name: "total_for_category",
		match: func(lower string, cls domain.IntentClassification) bool {
			if !strings.Contains(lower, "total") && !strings.Contains(lower, "budget") {
				return false
			}
			return hasCategoryEntity(cls)
		},
		groupBy: func(string, domain.IntentClassification) domain.GroupDim {
			return domain.GroupByDepartment
		},
		agg: aggSum,
	},
	{
		name: "top_n_by_amount",
		match: func(lower string, _ domain.IntentClassification) bool {
			return strings.Contains(lower, "top") ||
				strings.Contains(lower, "highest") ||
				strings.Contains(lower, "largest") ||
				strings.Contains(lower, "biggest")
		},
		groupBy: pickGroupDim,
		agg:     aggSum,
		limit:   TopNLimit,
	},
	{
		name: "grouped_comparison",
		match: func(lower string, _ domain.IntentClassification) bool {
			return strings.Contains(lower, "compare") ||
				strings.Contains(lower, "comparison") ||
				strings.Contains(lower, "versus") ||
				strings.Contains(lower, " vs ")
		},
		groupBy: pickGroupDim,
		agg:     aggSum,
	},
	{
		name: "average_by_group",
		match: func(lower string, _ domain.IntentClassification) bool {
			return strings.Contains(lower, "average") || strings.Contains(lower, "mean")
		},
		groupBy: pickGroupDim,
		agg:     aggAvg,
	},
	{
		name:    "general_summary",
		match:   func(string, domain.IntentClassification) bool { return true },
		groupBy: func(string, domain.IntentClassification) domain.GroupDim { return domain.GroupByPortfolio },
		agg:     aggSum,
	},
}

func hasCategoryEntity(cls domain.IntentClassification) bool {
	for _, k := range []string{"department", "portfolio", "program"} {
		if cls.Entities[k] != "" {
			return true
		}
	}
	return false
}

// pickGroupDim chooses the grouping dimension the query names, falling
// back to portfolio.
func pickGroupDim(lower string, _ domain.IntentClassification) domain.GroupDim {
	switch {
	case strings.Contains(lower, "program"):
		return domain.GroupByProgram
	case strings.Contains(lower, "department"):
		return domain.GroupByDepartment
	case strings.Contains(lower, "expense type"), strings.Contains(lower, "expense_type"):
		return domain.GroupByExpenseType
	}
	return domain.GroupByPortfolio
}

// Aggregator computes deterministic grouped sums, averages and top-N
// figures over the budget ledger.
type Aggregator struct {
	ledger driven.LedgerStore
}

// NewAggregator creates an aggregation engine over the given ledger.
func NewAggregator(ledger driven.LedgerStore) *Aggregator {
	return &Aggregator{ledger: ledger}
}

// Aggregate answers one SQL-routed query. It never fails: a ledger
// access error yields a zero-valued result with an error narrative.
func (a *Aggregator) Aggregate(ctx context.Context, queryText string, cls domain.IntentClassification) *domain.QueryResult {
	logger.Section("Aggregation")
	lower := strings.ToLower(queryText)

	kind := selectKind(lower, cls)
	fiscalYear := cls.FiscalYear(domain.DefaultFiscalYear)
	groupBy := kind.groupBy(lower, cls)
	filter := filterFromEntities(cls)

	logger.Debug("Kind: %s, group by %s, fiscal year %s", kind.name, groupBy, fiscalYear)

	descriptor := describeAggregate(kind, groupBy, fiscalYear, filter)

	groups, err := a.ledger.GroupTotals(ctx, driven.LedgerQuery{
		FiscalYear: fiscalYear,
		GroupBy:    groupBy,
		Filter:     filter,
	})
	if err != nil {
		logger.Warn("Ledger read failed: %v", err)
		return &domain.QueryResult{
			Method:         domain.MethodSQL,
			Answer:         fmt.Sprintf("The budget ledger could not be read: %v", err),
			AggregateQuery: descriptor,
			DataSources:    []string{ledgerSource},
			Err:            err.Error(),
		}
	}

	breakdown, total, rows := buildBreakdown(groups, kind.agg, kind.limit)
	logger.Info("Aggregated %d groups over %d rows, total %.2f", len(breakdown), rows, total)

	return &domain.QueryResult{
		Method:         domain.MethodSQL,
		Answer:         narrate(kind, groupBy, fiscalYear, filter, total, len(breakdown), rows),
		Breakdown:      breakdown,
		Total:          total,
		RowCount:       rows,
		AggregateQuery: descriptor,
		DataSources:    []string{ledgerSource},
	}
}

func selectKind(lower string, cls domain.IntentClassification) queryKind {
	for _, kind := range queryKinds {
		if kind.match(lower, cls) {
			return kind
		}
	}
	// general_summary matches everything; unreachable.
	return queryKinds[len(queryKinds)-1]
}

func filterFromEntities(cls domain.IntentClassification) domain.LedgerFilter {
	var f domain.LedgerFilter
	if p := cls.Entities["portfolio"]; p != "" {
		f.Portfolio = p
	}
	// A department mention may name either a department or its
	// portfolio, so it matches both via the keyword filter.
	if d := cls.Entities["department"]; d != "" {
		f.Keyword = d
	}
	if p := cls.Entities["program"]; p != "" {
		f.Program = p
	}
	return f
}

// buildBreakdown sorts groups by reported amount descending with an
// ascending group-label tie-break, computes shares of the total and
// truncates to limit after sorting.
func buildBreakdown(groups []domain.GroupTotal, agg aggregateFunc, limit int) ([]domain.BreakdownRow, float64, int) {
	rows := make([]domain.BreakdownRow, 0, len(groups))
	var total float64
	var rowCount int

	for _, g := range groups {
		amount := g.Sum
		if agg == aggAvg {
			amount = g.Avg()
		}
		rows = append(rows, domain.BreakdownRow{
			Group:  g.Group,
			Amount: amount,
			Rows:   g.Rows,
		})
		total += amount
		rowCount += g.Rows
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Amount != rows[j].Amount {
			return rows[i].Amount > rows[j].Amount
		}
		return rows[i].Group < rows[j].Group
	})

	for i := range rows {
		rows[i].Percentage = percentOf(rows[i].Amount, total)
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	return rows, total, rowCount
}

// percentOf returns amount/total*100 rounded to one decimal.
// A zero total yields 0, never a division by zero.
func percentOf(amount, total float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(amount/total*1000) / 10
}

// describeAggregate renders the human-readable aggregate descriptor
// recorded in results and evidence packages.
func describeAggregate(kind queryKind, groupBy domain.GroupDim, fiscalYear string, filter domain.LedgerFilter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(amount[%s])", kind.agg, fiscalYear)
	if !filter.Empty() {
		fmt.Fprintf(&b, " FILTER %s", describeFilter(filter))
	}
	fmt.Fprintf(&b, " GROUP BY %s ORDER BY amount DESC, %s ASC", groupBy, groupBy)
	if kind.limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", kind.limit)
	}
	b.WriteString(" EXCLUDING NULL amounts")
	return b.String()
}

func describeFilter(f domain.LedgerFilter) string {
	var parts []string
	if f.Portfolio != "" {
		parts = append(parts, "portfolio~"+f.Portfolio)
	}
	if f.Department != "" {
		parts = append(parts, "department~"+f.Department)
	}
	if f.Program != "" {
		parts = append(parts, "program~"+f.Program)
	}
	if f.Keyword != "" {
		parts = append(parts, "any~"+f.Keyword)
	}
	return strings.Join(parts, " AND ")
}

func narrate(kind queryKind, groupBy domain.GroupDim, fiscalYear string, filter domain.LedgerFilter, total float64, groups, rows int) string {
	scope := "all portfolios"
	if !filter.Empty() {
		scope = describeFilter(filter)
	}

	switch kind.name {
	case "total_for_category":
		return fmt.Sprintf("Total %s budget for %s: $%.1f thousand across %d ledger rows, broken down by %s.",
			scope, fiscalYear, total, rows, groupBy)
	case "top_n_by_amount":
		return fmt.Sprintf("Top %d %ss by %s amount (%d ledger rows considered).",
			kind.limit, groupBy, fiscalYear, rows)
	case "grouped_comparison":
		return fmt.Sprintf("Budget comparison by %s for %s: %d groups totalling $%.1f thousand.",
			groupBy, fiscalYear, groups, total)
	case "average_by_group":
		return fmt.Sprintf("Average %s budget per ledger row by %s across %d groups.",
			fiscalYear, groupBy, groups)
	default:
		return fmt.Sprintf("General budget summary for %s: $%.1f thousand across %d ledger rows in %d %ss.",
			fiscalYear, total, rows, groups, groupBy)
	}
}
