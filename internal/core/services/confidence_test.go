package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openaudit/govquery/internal/core/domain"
)

func TestConfidence(t *testing.T) {
	tests := []struct {
		name   string
		result *domain.QueryResult
		method domain.QueryMethod
		want   float64
	}{
		{
			name:   "nil result",
			result: nil,
			method: domain.MethodSQL,
			want:   0,
		},
		{
			name: "sql with data",
			result: &domain.QueryResult{
				Method:      domain.MethodSQL,
				Breakdown:   []domain.BreakdownRow{{Group: "Education", Amount: 10}},
				DataSources: []string{"budget_expenses"},
			},
			method: domain.MethodSQL,
			want:   0.9, // 0.5 + 0.3 + 0.1 data
		},
		{
			name: "sql without data",
			result: &domain.QueryResult{
				Method:      domain.MethodSQL,
				DataSources: []string{"budget_expenses"},
			},
			method: domain.MethodSQL,
			want:   0.8,
		},
		{
			name: "rag with data",
			result: &domain.QueryResult{
				Method:      domain.MethodRAG,
				Hits:        []domain.RetrievalHit{{RecordID: "fin-1"}},
				DataSources: []string{"document_index", "finance_records"},
			},
			method: domain.MethodRAG,
			want:   0.9, // 0.5 + 0.2 + 0.1 diverse + 0.1 data
		},
		{
			name: "hybrid clamps at one",
			result: &domain.QueryResult{
				Method:      domain.MethodHybrid,
				Breakdown:   []domain.BreakdownRow{{Group: "Education", Amount: 10}},
				DataSources: []string{"budget_expenses", "document_index"},
			},
			method: domain.MethodHybrid,
			want:   1.0, // 0.5 + 0.4 + 0.1 + 0.1 clamped
		},
		{
			name: "partial engine failure forced low",
			result: &domain.QueryResult{
				Method: domain.MethodSQL,
				Err:    "disk gone",
			},
			method: domain.MethodSQL,
			want:   degradedConfidence,
		},
		{
			name: "all engines failed",
			result: &domain.QueryResult{
				Method: domain.MethodHybrid,
				Err:    domain.ErrAllEnginesFailed.Error(),
			},
			method: domain.MethodHybrid,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Confidence(tt.result, tt.method), 0.0001)
		})
	}
}
