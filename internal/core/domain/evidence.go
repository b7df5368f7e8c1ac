package domain

import "time"

// Evidence packaging limits.
const (
	// MaxEvidenceItems caps the retrieval items in a package.
	MaxEvidenceItems = 5

	// EvidencePreviewLen caps the content preview length.
	EvidencePreviewLen = 100
)

// EvidenceItem links a response to one of the sources behind it.
type EvidenceItem struct {
	// SourceTable is the store the evidence came from.
	SourceTable string `json:"source_table"`

	// RecordID identifies the record, empty for aggregate evidence.
	RecordID string `json:"record_id,omitempty"`

	// AggregateQuery describes the grouping/filter/order applied,
	// set for aggregation evidence only.
	AggregateQuery string `json:"aggregate_query,omitempty"`

	// RowCount is the number of ledger rows the aggregate covered.
	RowCount int `json:"row_count,omitempty"`

	// Relevance is the retrieval score, set for retrieval evidence.
	Relevance float64 `json:"relevance,omitempty"`

	// ContentPreview is the start of the document's canonical text,
	// truncated with an ellipsis marker.
	ContentPreview string `json:"content_preview,omitempty"`
}

// EvidencePackage is the reproducible audit artifact attached to every
// response.
type EvidencePackage struct {
	// AuditID is an opaque unique identifier for the response.
	AuditID string `json:"audit_id"`

	// Query is the original question.
	Query string `json:"query"`

	// Method records how the query was routed.
	Method QueryMethod `json:"method"`

	// Timestamp is when the package was built.
	Timestamp time.Time `json:"timestamp"`

	// DataSources is the distinct set of stores consulted.
	DataSources []string `json:"data_sources"`

	// Items are the individual pieces of evidence.
	Items []EvidenceItem `json:"evidence_items"`
}

// AuditEntry is one row of the persistent audit trail.
type AuditEntry struct {
	AuditID     string        `json:"audit_id"`
	Query       string        `json:"query"`
	Method      QueryMethod   `json:"method"`
	Confidence  float64       `json:"confidence"`
	DataSources []string      `json:"data_sources"`
	Elapsed     time.Duration `json:"elapsed"`
	CreatedAt   time.Time     `json:"created_at"`
}

// TrustMetrics summarises the audit trail for the trust dashboard.
type TrustMetrics struct {
	// TotalQueries is the number of audited responses.
	TotalQueries int `json:"total_queries"`

	// AverageConfidence is the mean confidence across responses.
	AverageConfidence float64 `json:"average_confidence"`

	// HighConfidenceShare is the fraction of responses with
	// confidence of 0.8 or more.
	HighConfidenceShare float64 `json:"high_confidence_share"`

	// ByMethod counts responses per routing method.
	ByMethod map[QueryMethod]int `json:"by_method"`
}
