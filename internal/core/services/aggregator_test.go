package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaudit/govquery/internal/adapters/driven/storage/memory"
	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// failingLedger implements driven.LedgerStore for failure paths.
type failingLedger struct {
	err error
}

func (f *failingLedger) GroupTotals(_ context.Context, _ driven.LedgerQuery) ([]domain.GroupTotal, error) {
	return nil, f.err
}

func (f *failingLedger) SaveRows(_ context.Context, _ []domain.ExpenseRow) error {
	return f.err
}

func setupTestLedger(t *testing.T) *memory.LedgerStore {
	t.Helper()
	store := memory.NewLedgerStore()
	ctx := context.Background()

	rows := []domain.ExpenseRow{
		{ID: "r1", Portfolio: "Education", Department: "Department of Education", Program: "Schools Funding",
			ExpenseType: "Administered Expenses",
			Amounts:     map[string]float64{"2024-25": 300, "2025-26": 310}},
		{ID: "r2", Portfolio: "Education", Department: "Department of Education", Program: "Schools Funding",
			ExpenseType: "Departmental Expenses",
			Amounts:     map[string]float64{"2024-25": 100}},
		{ID: "r3", Portfolio: "Education", Department: "Australian Research Council", Program: "Discovery Grants",
			ExpenseType: "Administered Expenses",
			Amounts:     map[string]float64{"2024-25": 100}},
		{ID: "r4", Portfolio: "Health and Aged Care", Department: "Department of Health", Program: "Medicare Benefits",
			ExpenseType: "Administered Expenses",
			Amounts:     map[string]float64{"2024-25": 500}},
		// No amount recorded for 2024-25; excluded from that year.
		{ID: "r5", Portfolio: "Defence", Department: "Department of Defence", Program: "Force Structure",
			ExpenseType: "Departmental Expenses",
			Amounts:     map[string]float64{"2025-26": 900}},
	}
	require.NoError(t, store.SaveRows(ctx, rows))
	return store
}

func TestAggregator_TotalForCategory(t *testing.T) {
	agg := NewAggregator(setupTestLedger(t))

	cls := domain.IntentClassification{
		Method:   domain.MethodSQL,
		Entities: map[string]string{"department": "education"},
	}
	result := agg.Aggregate(context.Background(), "What is the total education budget?", cls)

	require.False(t, result.Failed())
	assert.Equal(t, domain.MethodSQL, result.Method)
	assert.InDelta(t, 500.0, result.Total, 0.001)
	assert.Equal(t, 3, result.RowCount)

	// Grouped by department, amount descending.
	require.Len(t, result.Breakdown, 2)
	assert.Equal(t, "Department of Education", result.Breakdown[0].Group)
	assert.InDelta(t, 400.0, result.Breakdown[0].Amount, 0.001)
	assert.InDelta(t, 80.0, result.Breakdown[0].Percentage, 0.001)
	assert.Equal(t, "Australian Research Council", result.Breakdown[1].Group)
	assert.InDelta(t, 20.0, result.Breakdown[1].Percentage, 0.001)
}

func TestAggregator_NullAmountsExcluded(t *testing.T) {
	agg := NewAggregator(setupTestLedger(t))

	cls := domain.IntentClassification{Method: domain.MethodSQL, Entities: map[string]string{}}
	result := agg.Aggregate(context.Background(), "budget statistics", cls)

	// r5 has no 2024-25 amount: four contributing rows, not five.
	assert.Equal(t, 4, result.RowCount)
	assert.InDelta(t, 1000.0, result.Total, 0.001)
	for _, row := range result.Breakdown {
		assert.NotEqual(t, "Defence", row.Group)
	}
}

func TestAggregator_FiscalYearEntitySelectsColumn(t *testing.T) {
	agg := NewAggregator(setupTestLedger(t))

	cls := domain.IntentClassification{
		Method:   domain.MethodSQL,
		Entities: map[string]string{"fiscal_year": "2025-26"},
	}
	result := agg.Aggregate(context.Background(), "budget statistics", cls)

	assert.Equal(t, 2, result.RowCount)
	assert.InDelta(t, 1210.0, result.Total, 0.001)
	assert.Contains(t, result.AggregateQuery, "amount[2025-26]")
}

func TestAggregator_TopNGroupsByNamedDimension(t *testing.T) {
	agg := NewAggregator(setupTestLedger(t))

	cls := domain.IntentClassification{Method: domain.MethodSQL, Entities: map[string]string{}}
	result := agg.Aggregate(context.Background(), "Top programs by spending", cls)

	require.False(t, result.Failed())
	require.NotEmpty(t, result.Breakdown)
	assert.Equal(t, "Medicare Benefits", result.Breakdown[0].Group)
	assert.Contains(t, result.AggregateQuery, "GROUP BY program")
	assert.Contains(t, result.AggregateQuery, "LIMIT 10")
}

func TestAggregator_AverageByGroup(t *testing.T) {
	agg := NewAggregator(setupTestLedger(t))

	cls := domain.IntentClassification{Method: domain.MethodSQL, Entities: map[string]string{}}
	result := agg.Aggregate(context.Background(), "Average budget by department", cls)

	require.False(t, result.Failed())
	assert.Contains(t, result.AggregateQuery, "AVG(")

	byGroup := make(map[string]float64)
	for _, row := range result.Breakdown {
		byGroup[row.Group] = row.Amount
	}
	// Department of Education: (300 + 100) / 2 rows.
	assert.InDelta(t, 200.0, byGroup["Department of Education"], 0.001)
}

func TestAggregator_TieBreakSortsLabelsAscending(t *testing.T) {
	store := memory.NewLedgerStore()
	ctx := context.Background()
	require.NoError(t, store.SaveRows(ctx, []domain.ExpenseRow{
		{ID: "a", Portfolio: "Zeta", Department: "Z", Program: "p", Amounts: map[string]float64{"2024-25": 100}},
		{ID: "b", Portfolio: "Alpha", Department: "A", Program: "p", Amounts: map[string]float64{"2024-25": 100}},
	}))
	agg := NewAggregator(store)

	cls := domain.IntentClassification{Method: domain.MethodSQL, Entities: map[string]string{}}
	result := agg.Aggregate(ctx, "budget summary", cls)

	require.Len(t, result.Breakdown, 2)
	assert.Equal(t, "Alpha", result.Breakdown[0].Group)
	assert.Equal(t, "Zeta", result.Breakdown[1].Group)
}

func TestAggregator_ZeroTotalZeroPercentages(t *testing.T) {
	store := memory.NewLedgerStore()
	ctx := context.Background()
	require.NoError(t, store.SaveRows(ctx, []domain.ExpenseRow{
		{ID: "a", Portfolio: "Alpha", Department: "A", Program: "p", Amounts: map[string]float64{"2024-25": 0}},
	}))
	agg := NewAggregator(store)

	cls := domain.IntentClassification{Method: domain.MethodSQL, Entities: map[string]string{}}
	result := agg.Aggregate(ctx, "budget summary", cls)

	require.Len(t, result.Breakdown, 1)
	assert.Zero(t, result.Breakdown[0].Percentage)
}

func TestAggregator_LedgerErrorDegrades(t *testing.T) {
	agg := NewAggregator(&failingLedger{err: errors.New("disk gone")})

	cls := domain.IntentClassification{Method: domain.MethodSQL, Entities: map[string]string{}}
	result := agg.Aggregate(context.Background(), "budget summary", cls)

	assert.True(t, result.Failed())
	assert.Zero(t, result.Total)
	assert.Empty(t, result.Breakdown)
	assert.NotEmpty(t, result.AggregateQuery)
	assert.Contains(t, result.Answer, "could not be read")
}
