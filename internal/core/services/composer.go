package services

import (
	"context"
	"strings"
	"sync"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/logger"
)

// hybridFooter explains the two result kinds to the reader.
const hybridFooter = "The statistics above are computed from the budget ledger; " +
	"the records below were retrieved from operational data. " +
	"Figures and records may cover different time periods."

// Composer merges aggregation and retrieval outputs for hybrid queries.
type Composer struct {
	aggregator *Aggregator
	retriever  *Retriever
}

// NewComposer creates a composer over the two engines.
func NewComposer(aggregator *Aggregator, retriever *Retriever) *Composer {
	return &Composer{aggregator: aggregator, retriever: retriever}
}

// Compose runs both engines independently and synthesises a hybrid
// result. The sub-calls are isolated: a failure in one never prevents
// the other from completing or being reported. Only when both fail is
// the result itself a failure.
func (c *Composer) Compose(ctx context.Context, queryText string, cls domain.IntentClassification) *domain.QueryResult {
	logger.Section("Hybrid Composition")

	// The engines have no ordering dependency; run them concurrently
	// and wait for both outcomes before synthesising.
	var sqlResult, ragResult *domain.QueryResult
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		sqlResult = c.aggregator.Aggregate(ctx, queryText, cls)
	}()
	go func() {
		defer wg.Done()
		ragResult = c.retriever.Retrieve(ctx, queryText, cls)
	}()

	wg.Wait()

	sqlOK := !sqlResult.Failed()
	ragOK := !ragResult.Failed()
	logger.Debug("Sub-results: sql ok=%t, rag ok=%t", sqlOK, ragOK)

	switch {
	case sqlOK && ragOK:
		return c.merge(sqlResult, ragResult)
	case sqlOK:
		logger.Warn("Retrieval side failed; returning aggregation only")
		return c.partial(sqlResult, ragResult)
	case ragOK:
		logger.Warn("Aggregation side failed; returning retrieval only")
		return c.partial(ragResult, sqlResult)
	default:
		logger.Warn("Both engines failed")
		return &domain.QueryResult{
			Method:      domain.MethodHybrid,
			Answer:      "Neither the budget ledger nor the document index could answer this query.",
			DataSources: unionSources(sqlResult, ragResult),
			Sub:         []*domain.QueryResult{sqlResult, ragResult},
			Err:         domain.ErrAllEnginesFailed.Error(),
		}
	}
}

// merge combines two successful sub-results.
func (c *Composer) merge(sqlResult, ragResult *domain.QueryResult) *domain.QueryResult {
	var b strings.Builder
	b.WriteString("Statistics:\n")
	b.WriteString(sqlResult.Answer)
	b.WriteString("\n\nRetrieved records:\n")
	b.WriteString(ragResult.Answer)
	b.WriteString("\n\n")
	b.WriteString(hybridFooter)

	return &domain.QueryResult{
		Method:         domain.MethodHybrid,
		Answer:         b.String(),
		Breakdown:      sqlResult.Breakdown,
		Total:          sqlResult.Total,
		RowCount:       sqlResult.RowCount,
		AggregateQuery: sqlResult.AggregateQuery,
		Hits:           ragResult.Hits,
		DataSources:    unionSources(sqlResult, ragResult),
		Sub:            []*domain.QueryResult{sqlResult, ragResult},
	}
}

// partial returns the surviving sub-result tagged HYBRID. The failed
// side is simply absent, not an error.
func (c *Composer) partial(ok, _ *domain.QueryResult) *domain.QueryResult {
	out := *ok
	out.Method = domain.MethodHybrid
	out.Sub = []*domain.QueryResult{ok}
	return &out
}

func unionSources(results ...*domain.QueryResult) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, s := range r.DataSources {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
