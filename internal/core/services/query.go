package services

import (
	"context"
	"strings"
	"time"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
	"github.com/openaudit/govquery/internal/core/ports/driving"
	"github.com/openaudit/govquery/internal/logger"
)

// QueryService routes a natural-language query to the right engine and
// wraps the outcome with confidence scoring and an evidence package.
type QueryService struct {
	classifier *Classifier
	aggregator *Aggregator
	retriever  *Retriever
	composer   *Composer
	packager   *Packager
	audit      driven.AuditStore
}

var _ driving.QueryService = (*QueryService)(nil)

// NewQueryService wires the query pipeline. audit may be nil, in which
// case answered queries are not recorded.
func NewQueryService(classifier *Classifier, aggregator *Aggregator, retriever *Retriever, composer *Composer, audit driven.AuditStore) *QueryService {
	return &QueryService{
		classifier: classifier,
		aggregator: aggregator,
		retriever:  retriever,
		composer:   composer,
		packager:   NewPackager(),
		audit:      audit,
	}
}

// Submit answers one query end to end.
func (s *QueryService) Submit(ctx context.Context, query domain.Query) (*domain.Response, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, domain.ErrInvalidInput
	}

	start := time.Now()
	logger.Section("Query")
	logger.Debug("Text: %s", text)

	cls := s.classifier.Classify(ctx, text, query.Context)

	// A caller preference overrides the routing decision but keeps the
	// extracted entities, which the engines still need for filtering.
	if query.MethodPreference != "" && query.MethodPreference.Valid() {
		logger.Debug("Method preference %s overrides classified %s", query.MethodPreference, cls.Method)
		cls.Method = query.MethodPreference
	}

	var result *domain.QueryResult
	switch cls.Method {
	case domain.MethodSQL:
		result = s.aggregator.Aggregate(ctx, text, cls)
	case domain.MethodRAG:
		result = s.retriever.Retrieve(ctx, text, cls)
	default:
		result = s.composer.Compose(ctx, text, cls)
	}

	elapsed := time.Since(start)
	confidence := Confidence(result, cls.Method)
	evidence := s.packager.Pack(text, cls, result)

	logger.Info("Answered via %s in %s (confidence %.2f)", result.Method, elapsed, confidence)

	if s.audit != nil {
		entry := domain.AuditEntry{
			AuditID:     evidence.AuditID,
			Query:       text,
			Method:      result.Method,
			Confidence:  confidence,
			DataSources: result.DataSources,
			Elapsed:     elapsed,
			CreatedAt:   evidence.Timestamp,
		}
		if err := s.audit.Append(ctx, entry); err != nil {
			logger.Warn("Audit append failed: %v", err)
		}
	}

	return &domain.Response{
		Method:         result.Method,
		Result:         result,
		Evidence:       evidence,
		Confidence:     confidence,
		ProcessingTime: elapsed,
	}, nil
}
