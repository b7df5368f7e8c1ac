package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// documentIndex implements driven.DocumentIndex.
type documentIndex struct {
	store *Store
}

var _ driven.DocumentIndex = (*documentIndex)(nil)

// HasHash reports whether an entry with the content hash exists.
func (s *documentIndex) HasHash(ctx context.Context, contentHash string) (bool, error) {
	var n int
	row := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM document_index WHERE content_hash = ?", contentHash)
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("checking content hash: %w", err)
	}
	return n > 0, nil
}

// Save stores a new index entry.
func (s *documentIndex) Save(ctx context.Context, doc domain.IndexedDocument) error {
	vectorJSON, err := json.Marshal(doc.Vector)
	if err != nil {
		return fmt.Errorf("marshalling vector: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO document_index (id, content_hash, content, source_table, record_id, vector, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.ContentHash, doc.Content, doc.SourceTable, doc.RecordID,
		string(vectorJSON), doc.IndexedAt)
	if err != nil {
		return fmt.Errorf("saving index entry: %w", err)
	}
	return nil
}

// ScanByTokens returns entries containing at least one token, most
// recently indexed first, capped at limit.
func (s *documentIndex) ScanByTokens(ctx context.Context, tokens []string, tableFilter string, limit int) ([]domain.IndexedDocument, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	var where []string
	var args []any

	var tokenClauses []string
	for _, tok := range tokens {
		tokenClauses = append(tokenClauses, `content LIKE ? ESCAPE '\' COLLATE NOCASE`)
		args = append(args, likePattern(tok))
	}
	where = append(where, "("+strings.Join(tokenClauses, " OR ")+")")

	if tableFilter != "" {
		where = append(where, "source_table = ?")
		args = append(args, tableFilter)
	}

	query := fmt.Sprintf(`
		SELECT id, content_hash, content, source_table, record_id, vector, indexed_at
		FROM document_index
		WHERE %s
		ORDER BY indexed_at DESC, id
	`, strings.Join(where, " AND "))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scanning index: %w", err)
	}
	defer rows.Close()

	var out []domain.IndexedDocument
	for rows.Next() {
		var doc domain.IndexedDocument
		var vectorJSON string
		if err := rows.Scan(&doc.ID, &doc.ContentHash, &doc.Content,
			&doc.SourceTable, &doc.RecordID, &vectorJSON, &doc.IndexedAt); err != nil {
			return nil, fmt.Errorf("scanning index entry: %w", err)
		}
		if err := json.Unmarshal([]byte(vectorJSON), &doc.Vector); err != nil {
			return nil, fmt.Errorf("unmarshalling vector for %s: %w", doc.ID, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index entries: %w", err)
	}
	return out, nil
}

// DeleteByTable removes all entries for a source table.
func (s *documentIndex) DeleteByTable(ctx context.Context, table string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM document_index WHERE source_table = ?", table)
	if err != nil {
		return fmt.Errorf("deleting index entries for %s: %w", table, err)
	}
	return nil
}

// Count returns the number of index entries.
func (s *documentIndex) Count(ctx context.Context) (int, error) {
	var n int
	row := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM document_index")
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting index entries: %w", err)
	}
	return n, nil
}
