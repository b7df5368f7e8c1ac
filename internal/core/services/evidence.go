package services

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/openaudit/govquery/internal/core/domain"
)

// Packager builds the reproducible audit artifact attached to every
// response.
type Packager struct {
	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewPackager creates an evidence packager.
func NewPackager() *Packager {
	return &Packager{now: func() time.Time { return time.Now().UTC() }}
}

// Pack assembles the evidence package for one answered query.
func (p *Packager) Pack(query string, cls domain.IntentClassification, result *domain.QueryResult) *domain.EvidencePackage {
	now := p.now()
	pkg := &domain.EvidencePackage{
		AuditID:     auditID(result.Method, now),
		Query:       query,
		Method:      result.Method,
		Timestamp:   now,
		DataSources: result.DataSources,
	}

	// Aggregate evidence: the descriptor plus the rows it covered.
	if result.AggregateQuery != "" {
		pkg.Items = append(pkg.Items, domain.EvidenceItem{
			SourceTable:    ledgerSource,
			AggregateQuery: result.AggregateQuery,
			RowCount:       result.RowCount,
		})
	}

	// Retrieval evidence: up to MaxEvidenceItems hits with a bounded
	// content preview.
	for i, hit := range result.Hits {
		if i >= domain.MaxEvidenceItems {
			break
		}
		pkg.Items = append(pkg.Items, domain.EvidenceItem{
			SourceTable:    hit.SourceTable,
			RecordID:       hit.RecordID,
			Relevance:      hit.Score,
			ContentPreview: preview(hit.Content, domain.EvidencePreviewLen),
		})
	}

	return pkg
}

// auditID builds an opaque identifier: method, date and a random
// suffix, e.g. "SQL-20250901-3fa2b4c1". The encoding carries no
// semantics beyond uniqueness.
func auditID(method domain.QueryMethod, now time.Time) string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return string(method) + "-" + now.Format("20060102") + "-" + hex.EncodeToString(suffix)
}

// preview truncates text to max runes with an ellipsis marker.
func preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
