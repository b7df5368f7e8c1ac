package memory

import (
	"context"
	"sync"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// Ensure AuditStore implements the interface.
var _ driven.AuditStore = (*AuditStore)(nil)

// highConfidenceThreshold marks entries counted as high confidence in
// the trust metrics.
const highConfidenceThreshold = 0.8

// AuditStore is an in-memory implementation of driven.AuditStore.
type AuditStore struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
}

// NewAuditStore creates a new in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Append records one audited response.
func (s *AuditStore) Append(_ context.Context, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// List returns the most recent entries, newest first.
func (s *AuditStore) List(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AuditEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		out = append(out, s.entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Metrics summarises the trail for the trust dashboard.
func (s *AuditStore) Metrics(_ context.Context) (*domain.TrustMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := &domain.TrustMetrics{
		TotalQueries: len(s.entries),
		ByMethod:     make(map[domain.QueryMethod]int),
	}
	if len(s.entries) == 0 {
		return m, nil
	}

	var sum float64
	high := 0
	for _, e := range s.entries {
		sum += e.Confidence
		if e.Confidence >= highConfidenceThreshold {
			high++
		}
		m.ByMethod[e.Method]++
	}
	m.AverageConfidence = sum / float64(len(s.entries))
	m.HighConfidenceShare = float64(high) / float64(len(s.entries))
	return m, nil
}
