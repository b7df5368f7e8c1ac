package services

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaudit/govquery/internal/adapters/driven/storage/memory"
	"github.com/openaudit/govquery/internal/core/domain"
)

func setupQueryService(t *testing.T) (*QueryService, *memory.AuditStore) {
	t.Helper()
	retriever, _, _ := setupTestIndex(t)
	aggregator := NewAggregator(setupTestLedger(t))
	audit := memory.NewAuditStore()
	service := NewQueryService(
		NewClassifier(nil, 0),
		aggregator,
		retriever,
		NewComposer(aggregator, retriever),
		audit,
	)
	return service, audit
}

func TestQueryService_BlankQueryRejected(t *testing.T) {
	service, audit := setupQueryService(t)

	for _, q := range []string{"", "   ", "\t\n"} {
		resp, err := service.Submit(context.Background(), domain.Query{Text: q})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Nil(t, resp)
	}

	// No engine ran, nothing was audited.
	entries, err := audit.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestQueryService_SQLQuery(t *testing.T) {
	service, _ := setupQueryService(t)

	resp, err := service.Submit(context.Background(),
		domain.Query{Text: "What is the total education budget for 2024-25?"})

	require.NoError(t, err)
	assert.Equal(t, domain.MethodSQL, resp.Method)
	assert.InDelta(t, 0.9, resp.Confidence, 0.0001)
	assert.NotEmpty(t, resp.Result.Breakdown)
	assert.Greater(t, resp.ProcessingTime.Nanoseconds(), int64(0))
}

func TestQueryService_RAGQuery(t *testing.T) {
	service, _ := setupQueryService(t)

	resp, err := service.Submit(context.Background(),
		domain.Query{Text: "Find the latest payment records for pathology"})

	require.NoError(t, err)
	assert.Equal(t, domain.MethodRAG, resp.Method)
	assert.NotEmpty(t, resp.Result.Hits)
}

func TestQueryService_MethodPreferenceOverrides(t *testing.T) {
	service, _ := setupQueryService(t)

	// The text classifies SQL; the preference forces retrieval.
	resp, err := service.Submit(context.Background(), domain.Query{
		Text:             "total education budget",
		MethodPreference: domain.MethodRAG,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.MethodRAG, resp.Method)
}

func TestQueryService_InvalidPreferenceIgnored(t *testing.T) {
	service, _ := setupQueryService(t)

	resp, err := service.Submit(context.Background(), domain.Query{
		Text:             "total education budget",
		MethodPreference: domain.QueryMethod("GRAPHQL"),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.MethodSQL, resp.Method)
}

func TestQueryService_EvidencePackage(t *testing.T) {
	service, _ := setupQueryService(t)

	resp, err := service.Submit(context.Background(),
		domain.Query{Text: "What is the total education budget for 2024-25?"})

	require.NoError(t, err)
	ev := resp.Evidence
	require.NotNil(t, ev)

	assert.Regexp(t, regexp.MustCompile(`^SQL-\d{8}-[0-9a-f]{8}$`), ev.AuditID)
	assert.Equal(t, domain.MethodSQL, ev.Method)
	require.NotEmpty(t, ev.Items)
	assert.Contains(t, ev.Items[0].AggregateQuery, "SUM(amount[2024-25])")
	assert.Equal(t, resp.Result.RowCount, ev.Items[0].RowCount)
}

func TestQueryService_AuditTrail(t *testing.T) {
	service, audit := setupQueryService(t)
	ctx := context.Background()

	resp, err := service.Submit(ctx, domain.Query{Text: "total education budget"})
	require.NoError(t, err)

	entries, err := audit.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, resp.Evidence.AuditID, entries[0].AuditID)
	assert.Equal(t, "total education budget", entries[0].Query)
	assert.InDelta(t, resp.Confidence, entries[0].Confidence, 0.0001)
}

func TestQueryService_HybridQuery(t *testing.T) {
	service, _ := setupQueryService(t)

	resp, err := service.Submit(context.Background(),
		domain.Query{Text: "How much does health spend and show me payment records"})

	require.NoError(t, err)
	assert.Equal(t, domain.MethodHybrid, resp.Method)
	assert.Len(t, resp.Result.Sub, 2)
	assert.InDelta(t, 1.0, resp.Confidence, 0.0001)
}

func TestPackager_PreviewTruncated(t *testing.T) {
	p := NewPackager()
	long := make([]byte, 0, 150)
	for i := 0; i < 150; i++ {
		long = append(long, 'x')
	}

	pkg := p.Pack("query", domain.IntentClassification{}, &domain.QueryResult{
		Method: domain.MethodRAG,
		Hits: []domain.RetrievalHit{
			{SourceTable: domain.TableFinance, RecordID: "fin-1", Content: string(long), Score: 0.5},
		},
	})

	require.Len(t, pkg.Items, 1)
	assert.Len(t, pkg.Items[0].ContentPreview, domain.EvidencePreviewLen+3)
	assert.Regexp(t, `\.\.\.$`, pkg.Items[0].ContentPreview)
}

func TestPackager_PreviewTruncatesOnRunes(t *testing.T) {
	p := NewPackager()
	long := strings.Repeat("é", domain.EvidencePreviewLen+50)

	pkg := p.Pack("query", domain.IntentClassification{}, &domain.QueryResult{
		Method: domain.MethodRAG,
		Hits: []domain.RetrievalHit{
			{SourceTable: domain.TableFinance, RecordID: "fin-1", Content: long, Score: 0.5},
		},
	})

	require.Len(t, pkg.Items, 1)
	preview := pkg.Items[0].ContentPreview
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, domain.EvidencePreviewLen+3, utf8.RuneCountInString(preview))
}

func TestPackager_ItemCapAndOrder(t *testing.T) {
	p := NewPackager()

	hits := make([]domain.RetrievalHit, 8)
	for i := range hits {
		hits[i] = domain.RetrievalHit{SourceTable: domain.TableHR, RecordID: "hr", Content: "short", Score: 0.5}
	}

	pkg := p.Pack("query", domain.IntentClassification{}, &domain.QueryResult{
		Method:         domain.MethodHybrid,
		AggregateQuery: "SUM(amount[2024-25]) GROUP BY portfolio",
		RowCount:       4,
		Hits:           hits,
	})

	// One aggregate descriptor plus at most five retrieval items.
	require.Len(t, pkg.Items, 1+domain.MaxEvidenceItems)
	assert.NotEmpty(t, pkg.Items[0].AggregateQuery)
	assert.Equal(t, 4, pkg.Items[0].RowCount)
}
