package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestStore_CreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "govquery.db"), store.Path())
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func testExpenseRows() []domain.ExpenseRow {
	return []domain.ExpenseRow{
		{
			ID: "r1", Portfolio: "Education", Department: "Department of Education",
			Program: "Schools Funding", ExpenseType: "Administered Expenses",
			Amounts: map[string]float64{"2024-25": 300, "2025-26": 310},
		},
		{
			ID: "r2", Portfolio: "Education", Department: "Department of Education",
			Program: "Research Grants", ExpenseType: "Departmental Expenses",
			Amounts: map[string]float64{"2024-25": 100},
		},
		{
			ID: "r3", Portfolio: "Health", Department: "Department of Health",
			Program: "Medicare Benefits", ExpenseType: "Administered Expenses",
			Amounts: map[string]float64{"2024-25": 500},
		},
		{
			// No amount recorded for 2024-25 at all.
			ID: "r4", Portfolio: "Defence", Department: "Department of Defence",
			Program: "Force Structure", ExpenseType: "Administered Expenses",
			Amounts: map[string]float64{"2025-26": 900},
		},
	}
}

func TestLedgerStore_GroupTotals(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	ledger := store.LedgerStore()

	require.NoError(t, ledger.SaveRows(ctx, testExpenseRows()))

	totals, err := ledger.GroupTotals(ctx, driven.LedgerQuery{
		FiscalYear: "2024-25",
		GroupBy:    domain.GroupByDepartment,
	})
	require.NoError(t, err)

	byGroup := make(map[string]domain.GroupTotal, len(totals))
	for _, g := range totals {
		byGroup[g.Group] = g
	}

	// The NULL-amount Defence row contributes to neither sum nor count.
	require.Len(t, byGroup, 2)
	assert.InDelta(t, 400.0, byGroup["Department of Education"].Sum, 0.0001)
	assert.Equal(t, 2, byGroup["Department of Education"].Rows)
	assert.InDelta(t, 500.0, byGroup["Department of Health"].Sum, 0.0001)
}

func TestLedgerStore_GroupTotalsFiltered(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	ledger := store.LedgerStore()

	require.NoError(t, ledger.SaveRows(ctx, testExpenseRows()))

	totals, err := ledger.GroupTotals(ctx, driven.LedgerQuery{
		FiscalYear: "2024-25",
		GroupBy:    domain.GroupByProgram,
		Filter:     domain.LedgerFilter{Department: "education"},
	})
	require.NoError(t, err)

	// Case-insensitive substring match on department.
	require.Len(t, totals, 2)
	for _, g := range totals {
		assert.Contains(t, []string{"Schools Funding", "Research Grants"}, g.Group)
	}
}

func TestLedgerStore_FilterWildcardsAreLiteral(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	ledger := store.LedgerStore()

	require.NoError(t, ledger.SaveRows(ctx, testExpenseRows()))

	// A keyword of "%" is a literal percent sign, not match-everything.
	totals, err := ledger.GroupTotals(ctx, driven.LedgerQuery{
		FiscalYear: "2024-25",
		GroupBy:    domain.GroupByDepartment,
		Filter:     domain.LedgerFilter{Keyword: "%"},
	})
	require.NoError(t, err)
	assert.Empty(t, totals)

	// Same for "_": no single-character wildcard matching.
	totals, err = ledger.GroupTotals(ctx, driven.LedgerQuery{
		FiscalYear: "2024-25",
		GroupBy:    domain.GroupByDepartment,
		Filter:     domain.LedgerFilter{Department: "Hea_th"},
	})
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestLedgerStore_UnknownFiscalYearRejected(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.LedgerStore().GroupTotals(context.Background(), driven.LedgerQuery{
		FiscalYear: "2019-20; DROP TABLE budget_expenses",
		GroupBy:    domain.GroupByPortfolio,
	})

	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	records := store.RecordStore()

	saved := domain.FinanceRecord{
		ID: "fin-1", RecordType: "payment", Department: "Department of Health",
		Amount: 92000, Currency: "AUD",
		TransactionDate: time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
		Reference:       "FIN-PAYMENT-0001", Status: "completed",
	}
	require.NoError(t, records.Save(ctx, saved))

	got, err := records.Get(ctx, domain.TableFinance, "fin-1")
	require.NoError(t, err)

	fin, ok := got.(domain.FinanceRecord)
	require.True(t, ok)
	assert.Equal(t, saved, fin)
}

func TestRecordStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.RecordStore().Get(context.Background(), domain.TableFinance, "nope")

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStore_SaveIsUpsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	records := store.RecordStore()

	rec := domain.HRRecord{ID: "hr-1", RecordType: "leave_request", Department: "Finance"}
	require.NoError(t, records.Save(ctx, rec))

	rec.Status = "approved"
	require.NoError(t, records.Save(ctx, rec))

	list, err := records.List(ctx, domain.TableHR)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "approved", list[0].(domain.HRRecord).Status)
}

func TestDocumentIndex_SaveScanDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	index := store.DocumentIndex()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := []domain.IndexedDocument{
		{
			ID: "d1", ContentHash: "h1", SourceTable: domain.TableFinance, RecordID: "fin-1",
			Content: "Finance record type: payment | Department: Department of Health",
			Vector:  []float64{0.5, 0.5}, IndexedAt: base,
		},
		{
			ID: "d2", ContentHash: "h2", SourceTable: domain.TableHR, RecordID: "hr-1",
			Content: "HR record type: leave_request | Department: Finance",
			Vector:  []float64{1}, IndexedAt: base.Add(time.Hour),
		},
	}
	for _, doc := range docs {
		require.NoError(t, index.Save(ctx, doc))
	}

	has, err := index.HasHash(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = index.HasHash(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, has)

	// Both mention a department; newest first.
	found, err := index.ScanByTokens(ctx, []string{"department"}, "", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "d2", found[0].ID)
	assert.Equal(t, []float64{1}, found[0].Vector)

	// Table filter narrows the scan.
	found, err = index.ScanByTokens(ctx, []string{"department"}, domain.TableFinance, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "d1", found[0].ID)

	require.NoError(t, index.DeleteByTable(ctx, domain.TableFinance))
	n, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDocumentIndex_ScanTokensAreLiteral(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	index := store.DocumentIndex()

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, index.Save(ctx, domain.IndexedDocument{
		ID: "d1", ContentHash: "h1", SourceTable: domain.TableFinance, RecordID: "fin-1",
		Content: "Rebate of 100% applied", IndexedAt: at,
	}))
	require.NoError(t, index.Save(ctx, domain.IndexedDocument{
		ID: "d2", ContentHash: "h2", SourceTable: domain.TableFinance, RecordID: "fin-2",
		Content: "Standard payment record", IndexedAt: at,
	}))

	// "%" only matches content with a literal percent sign.
	found, err := index.ScanByTokens(ctx, []string{"%"}, "", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "d1", found[0].ID)

	// "_" is literal too, not a single-character wildcard.
	found, err = index.ScanByTokens(ctx, []string{"p_yment"}, "", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDocumentIndex_ScanOrderStableOnEqualTimestamps(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	index := store.DocumentIndex()

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"d3", "d1", "d2"} {
		require.NoError(t, index.Save(ctx, domain.IndexedDocument{
			ID: id, ContentHash: "h-" + id, SourceTable: domain.TableFinance,
			Content: "supplier payment", IndexedAt: at,
		}))
	}

	// Equal timestamps fall back to ID order, so repeated scans agree.
	for i := 0; i < 5; i++ {
		found, err := index.ScanByTokens(ctx, []string{"supplier"}, "", 10)
		require.NoError(t, err)
		require.Len(t, found, 3)
		assert.Equal(t, "d1", found[0].ID)
		assert.Equal(t, "d2", found[1].ID)
		assert.Equal(t, "d3", found[2].ID)
	}
}

func TestAuditStore_AppendListMetrics(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	audit := store.AuditStore()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []domain.AuditEntry{
		{
			AuditID: "SQL-20250301-aaaaaaaa", Query: "total education budget",
			Method: domain.MethodSQL, Confidence: 0.9,
			DataSources: []string{"budget_expenses"},
			Elapsed:     20 * time.Millisecond, CreatedAt: base,
		},
		{
			AuditID: "RAG-20250301-bbbbbbbb", Query: "latest payments",
			Method: domain.MethodRAG, Confidence: 0.3,
			DataSources: []string{"document_index"},
			Elapsed:     5 * time.Millisecond, CreatedAt: base.Add(time.Minute),
		},
	}
	for _, e := range entries {
		require.NoError(t, audit.Append(ctx, e))
	}

	listed, err := audit.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "RAG-20250301-bbbbbbbb", listed[0].AuditID)
	assert.Equal(t, []string{"document_index"}, listed[0].DataSources)
	assert.Equal(t, 5*time.Millisecond, listed[0].Elapsed)

	listed, err = audit.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	metrics, err := audit.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.TotalQueries)
	assert.InDelta(t, 0.6, metrics.AverageConfidence, 0.0001)
	assert.InDelta(t, 0.5, metrics.HighConfidenceShare, 0.0001)
	assert.Equal(t, 1, metrics.ByMethod[domain.MethodSQL])
	assert.Equal(t, 1, metrics.ByMethod[domain.MethodRAG])
}

func TestSessionStore_Flow(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	sessions := store.SessionStore()

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	session := domain.ChatSession{
		ID: "sess-1", Title: "What is the total education budget?",
		CreatedAt: base, UpdatedAt: base,
	}
	require.NoError(t, sessions.SaveSession(ctx, session))

	messages := []domain.ChatMessage{
		{
			ID: "m1", SessionID: "sess-1", Role: domain.RoleUser,
			Content: "What is the total education budget?", Timestamp: base,
		},
		{
			ID: "m2", SessionID: "sess-1", Role: domain.RoleAssistant,
			Content: "Total: 400.0 thousand AUD", Confidence: 0.9,
			AuditID: "SQL-20250401-cccccccc", Timestamp: base.Add(time.Second),
		},
	}
	for _, m := range messages {
		require.NoError(t, sessions.AppendMessage(ctx, m))
	}

	got, err := sessions.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.Title, got.Title)

	history, err := sessions.Messages(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, "SQL-20250401-cccccccc", history[1].AuditID)

	// Updating bumps the listing order.
	other := domain.ChatSession{ID: "sess-2", Title: "Other", CreatedAt: base, UpdatedAt: base.Add(time.Hour)}
	require.NoError(t, sessions.SaveSession(ctx, other))

	listed, err := sessions.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "sess-2", listed[0].ID)
}

func TestSessionStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.SessionStore().GetSession(context.Background(), "nope")

	require.ErrorIs(t, err, domain.ErrNotFound)
}
