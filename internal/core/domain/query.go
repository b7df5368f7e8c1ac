package domain

import "time"

// QueryMethod selects which engine (or engines) answer a query.
type QueryMethod string

// Query methods.
const (
	// MethodSQL routes to the aggregation engine for grouped numeric answers.
	MethodSQL QueryMethod = "SQL"

	// MethodRAG routes to the lexical retrieval engine for record lookups.
	MethodRAG QueryMethod = "RAG"

	// MethodHybrid runs both engines and composes the results.
	MethodHybrid QueryMethod = "HYBRID"
)

// Valid reports whether m is one of the three known methods.
func (m QueryMethod) Valid() bool {
	switch m {
	case MethodSQL, MethodRAG, MethodHybrid:
		return true
	}
	return false
}

// Query is a single natural-language question submitted to the system.
// Queries are ephemeral; nothing here is persisted.
type Query struct {
	// Text is the raw user question.
	Text string

	// Context carries optional caller-supplied hints (e.g. department).
	Context map[string]string

	// MethodPreference, when set, overrides the classifier's chosen
	// method. Extracted entities are never overridden.
	MethodPreference QueryMethod
}

// IntentClassification is the classifier's verdict for one query.
// It is produced once per query and never mutated afterwards.
type IntentClassification struct {
	// Method is the routing decision.
	Method QueryMethod

	// Intent is a short label describing what the user wants.
	Intent string

	// Entities maps entity kind to extracted value, e.g.
	// "department" -> "education", "fiscal_year" -> "2024-25".
	Entities map[string]string

	// QueryType categorises the question, e.g. "budget_summary".
	QueryType string

	// Reasoning is free text explaining the decision. Informational only.
	Reasoning string

	// FromModel is true when the external model produced this result,
	// false when the rule-based fallback did.
	FromModel bool
}

// FiscalYear returns the extracted fiscal-year entity, or the given
// default when the query did not mention one.
func (c IntentClassification) FiscalYear(def string) string {
	if fy, ok := c.Entities["fiscal_year"]; ok && fy != "" {
		return fy
	}
	return def
}

// BreakdownRow is one line of a grouped aggregation result.
type BreakdownRow struct {
	// Group is the grouping label (portfolio, department or program name).
	Group string `json:"group"`

	// Amount is the aggregated amount for the group, in thousands of AUD.
	Amount float64 `json:"amount"`

	// Percentage is the group's share of the grand total, one decimal.
	// Zero when the grand total is zero.
	Percentage float64 `json:"percentage"`

	// Rows is the number of ledger rows contributing to the group.
	Rows int `json:"rows"`
}

// RetrievalHit is a single document returned by the retrieval engine.
type RetrievalHit struct {
	// SourceTable names the operational table the document came from.
	SourceTable string `json:"source_table"`

	// RecordID identifies the underlying record within its table.
	RecordID string `json:"record_id"`

	// Content is the document's canonical text.
	Content string `json:"content"`

	// Score is the lexical relevance score in [0,1].
	Score float64 `json:"score"`

	// Record is the resolved underlying record summary.
	Record string `json:"record,omitempty"`
}

// QueryResult is the structured outcome of running a query through one
// or both engines.
type QueryResult struct {
	// Method records which engine(s) produced the result.
	Method QueryMethod `json:"method"`

	// Answer is the narrative answer text.
	Answer string `json:"answer"`

	// Breakdown holds grouped aggregation rows (SQL and HYBRID).
	Breakdown []BreakdownRow `json:"breakdown,omitempty"`

	// Total is the aggregate grand total (SQL and HYBRID).
	Total float64 `json:"total"`

	// RowCount is the number of ledger rows the aggregate covered.
	RowCount int `json:"row_count"`

	// AggregateQuery is a human-readable description of the grouping,
	// filter and ordering applied. Empty for pure RAG results.
	AggregateQuery string `json:"aggregate_query,omitempty"`

	// Hits holds retrieval results (RAG and HYBRID).
	Hits []RetrievalHit `json:"hits,omitempty"`

	// DataSources is the distinct set of stores touched.
	DataSources []string `json:"data_sources"`

	// Sub holds the per-engine sub-results of a HYBRID query.
	Sub []*QueryResult `json:"sub,omitempty"`

	// Err carries an engine-local failure narrative. A non-empty Err
	// means the result is degraded, not that the request failed.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the result carries an engine-local failure.
func (r *QueryResult) Failed() bool {
	return r == nil || r.Err != ""
}

// HasData reports whether the result contains a non-empty breakdown or
// hit list. Used by the confidence scorer.
func (r *QueryResult) HasData() bool {
	return r != nil && (len(r.Breakdown) > 0 || len(r.Hits) > 0)
}

// Response is the envelope returned to callers of Submit.
type Response struct {
	Method         QueryMethod      `json:"method"`
	Result         *QueryResult     `json:"result"`
	Evidence       *EvidencePackage `json:"evidence_package"`
	Confidence     float64          `json:"confidence_score"`
	ProcessingTime time.Duration    `json:"processing_time"`
}
