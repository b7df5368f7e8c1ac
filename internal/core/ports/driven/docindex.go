package driven

import (
	"context"

	"github.com/openaudit/govquery/internal/core/domain"
)

// DocumentIndex is the lexical search store over flattened operational
// records. The batch indexer writes entries; the query core only reads.
type DocumentIndex interface {
	// HasHash reports whether an entry with the content hash exists.
	HasHash(ctx context.Context, contentHash string) (bool, error)

	// Save stores a new index entry.
	Save(ctx context.Context, doc domain.IndexedDocument) error

	// ScanByTokens returns entries whose canonical text contains at
	// least one of the tokens (case-insensitive substring match),
	// optionally restricted to one source table, ordered most recently
	// indexed first and capped at limit.
	ScanByTokens(ctx context.Context, tokens []string, tableFilter string, limit int) ([]domain.IndexedDocument, error)

	// DeleteByTable removes all entries for a source table. Used by
	// a forced index rebuild.
	DeleteByTable(ctx context.Context, table string) error

	// Count returns the number of index entries.
	Count(ctx context.Context) (int, error)
}

// RecordStore resolves and enumerates operational records.
type RecordStore interface {
	// Get returns one record by table and id. Returns
	// domain.ErrNotFound when the record has been deleted.
	Get(ctx context.Context, table, id string) (domain.Record, error)

	// List returns all records of a source table, for batch indexing.
	List(ctx context.Context, table string) ([]domain.Record, error)

	// Save stores a record. Used by seeding and tests.
	Save(ctx context.Context, rec domain.Record) error
}
