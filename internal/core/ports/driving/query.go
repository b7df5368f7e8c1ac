package driving

import (
	"context"

	"github.com/openaudit/govquery/internal/core/domain"
)

// QueryService answers natural-language questions about the ledger and
// the operational record index.
type QueryService interface {
	// Submit routes one query through classification, the selected
	// engine(s), confidence scoring and evidence packaging.
	// An empty or blank query is rejected with domain.ErrInvalidInput
	// before any engine is invoked.
	Submit(ctx context.Context, query domain.Query) (*domain.Response, error)
}

// ChatService wraps QueryService with persistent conversation history.
type ChatService interface {
	// Ask submits a query within a session, creating the session when
	// sessionID is empty. Both the user message and the trust-scored
	// assistant reply are persisted.
	Ask(ctx context.Context, sessionID, query string, queryContext map[string]string) (*domain.ChatMessage, *domain.Response, error)

	// Sessions lists sessions, most recently updated first.
	Sessions(ctx context.Context) ([]domain.ChatSession, error)

	// History returns a session's messages in chronological order.
	History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}

// IndexStats reports what a batch index run did.
type IndexStats struct {
	// Indexed counts newly written entries per source table.
	Indexed map[string]int

	// Skipped counts records whose canonical text was already indexed.
	Skipped int

	// Errors holds per-record failures; the run continues past them.
	Errors []string

	// Total is the index entry count after the run.
	Total int
}

// IngestService owns the batch pipelines that feed the query engines.
type IngestService interface {
	// Reindex flattens every operational record into the document
	// index. Idempotent: unchanged records are skipped by content
	// hash. With rebuild set, per-table entries are dropped first.
	Reindex(ctx context.Context, rebuild bool) (*IndexStats, error)

	// ImportBudgetCSV loads ledger rows from a budget CSV export and
	// returns the number of imported rows.
	ImportBudgetCSV(ctx context.Context, path string) (int, error)

	// Seed loads a small demonstration dataset into the ledger and
	// record stores and indexes it.
	Seed(ctx context.Context) (*IndexStats, error)
}
