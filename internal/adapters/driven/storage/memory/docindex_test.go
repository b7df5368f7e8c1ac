package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaudit/govquery/internal/core/domain"
)

func TestDocumentIndex_SaveAndHasHash(t *testing.T) {
	index := NewDocumentIndex()
	ctx := context.Background()

	ok, err := index.HasHash(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, index.Save(ctx, domain.IndexedDocument{
		ID: "d1", ContentHash: "h1", Content: "Finance record type: payment",
		SourceTable: domain.TableFinance, RecordID: "fin-1", IndexedAt: time.Now(),
	}))

	ok, err = index.HasHash(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDocumentIndex_ScanByTokens(t *testing.T) {
	index := NewDocumentIndex()
	ctx := context.Background()
	base := time.Now()

	docs := []domain.IndexedDocument{
		{ID: "d1", ContentHash: "h1", Content: "payment to supplier", SourceTable: domain.TableFinance, IndexedAt: base},
		{ID: "d2", ContentHash: "h2", Content: "employee leave record", SourceTable: domain.TableHR, IndexedAt: base.Add(time.Second)},
		{ID: "d3", ContentHash: "h3", Content: "supplier contract", SourceTable: domain.TableProcurement, IndexedAt: base.Add(2 * time.Second)},
	}
	for _, d := range docs {
		require.NoError(t, index.Save(ctx, d))
	}

	// Most recently indexed first.
	got, err := index.ScanByTokens(ctx, []string{"supplier"}, "", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d3", got[0].ID)
	assert.Equal(t, "d1", got[1].ID)

	// Table filter.
	got, err = index.ScanByTokens(ctx, []string{"supplier"}, domain.TableFinance, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d1", got[0].ID)

	// Limit applies after recency ordering.
	got, err = index.ScanByTokens(ctx, []string{"supplier"}, "", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d3", got[0].ID)
}

func TestDocumentIndex_ScanOrderStableOnEqualTimestamps(t *testing.T) {
	index := NewDocumentIndex()
	ctx := context.Background()
	at := time.Now()

	for _, id := range []string{"d3", "d1", "d2"} {
		require.NoError(t, index.Save(ctx, domain.IndexedDocument{
			ID: id, ContentHash: "h-" + id, Content: "supplier payment",
			SourceTable: domain.TableFinance, IndexedAt: at,
		}))
	}

	// Equal timestamps fall back to ID order, so repeated scans agree.
	for i := 0; i < 5; i++ {
		got, err := index.ScanByTokens(ctx, []string{"supplier"}, "", 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "d1", got[0].ID)
		assert.Equal(t, "d2", got[1].ID)
		assert.Equal(t, "d3", got[2].ID)
	}
}

func TestDocumentIndex_DeleteByTable(t *testing.T) {
	index := NewDocumentIndex()
	ctx := context.Background()

	require.NoError(t, index.Save(ctx, domain.IndexedDocument{
		ID: "d1", ContentHash: "h1", Content: "payment", SourceTable: domain.TableFinance,
	}))
	require.NoError(t, index.Save(ctx, domain.IndexedDocument{
		ID: "d2", ContentHash: "h2", Content: "leave", SourceTable: domain.TableHR,
	}))

	require.NoError(t, index.DeleteByTable(ctx, domain.TableFinance))

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The hash is freed so the content can be re-indexed.
	ok, err := index.HasHash(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, ok)
}
