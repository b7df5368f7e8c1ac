package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// auditStore implements driven.AuditStore.
type auditStore struct {
	store *Store
}

var _ driven.AuditStore = (*auditStore)(nil)

// highConfidenceThreshold marks entries counted as high confidence in
// the trust metrics.
const highConfidenceThreshold = 0.8

// Append records one audited response.
func (s *auditStore) Append(ctx context.Context, entry domain.AuditEntry) error {
	sourcesJSON, err := json.Marshal(entry.DataSources)
	if err != nil {
		return fmt.Errorf("marshalling data sources: %w", err)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO audit_logs (audit_id, query, method, confidence, data_sources, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.AuditID, entry.Query, string(entry.Method), entry.Confidence,
		string(sourcesJSON), entry.Elapsed.Milliseconds(), createdAt)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *auditStore) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	query := `
		SELECT audit_id, query, method, confidence, data_sources, elapsed_ms, created_at
		FROM audit_logs
		ORDER BY created_at DESC, audit_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var method, sourcesJSON string
		var elapsedMS int64
		if err := rows.Scan(&entry.AuditID, &entry.Query, &method, &entry.Confidence,
			&sourcesJSON, &elapsedMS, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		entry.Method = domain.QueryMethod(method)
		entry.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		if err := json.Unmarshal([]byte(sourcesJSON), &entry.DataSources); err != nil {
			return nil, fmt.Errorf("unmarshalling data sources for %s: %w", entry.AuditID, err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}
	return out, nil
}

// Metrics summarises the trail for the trust dashboard.
func (s *auditStore) Metrics(ctx context.Context) (*domain.TrustMetrics, error) {
	m := &domain.TrustMetrics{ByMethod: make(map[domain.QueryMethod]int)}

	row := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(confidence), 0),
		       COALESCE(AVG(CASE WHEN confidence >= ? THEN 1.0 ELSE 0.0 END), 0)
		FROM audit_logs
	`, highConfidenceThreshold)
	if err := row.Scan(&m.TotalQueries, &m.AverageConfidence, &m.HighConfidenceShare); err != nil {
		return nil, fmt.Errorf("computing trust metrics: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx,
		"SELECT method, COUNT(*) FROM audit_logs GROUP BY method")
	if err != nil {
		return nil, fmt.Errorf("counting methods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var method string
		var n int
		if err := rows.Scan(&method, &n); err != nil {
			return nil, fmt.Errorf("scanning method count: %w", err)
		}
		m.ByMethod[domain.QueryMethod(method)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating method counts: %w", err)
	}
	return m, nil
}
