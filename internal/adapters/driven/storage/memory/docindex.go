package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// Ensure DocumentIndex implements the interface.
var _ driven.DocumentIndex = (*DocumentIndex)(nil)

// DocumentIndex is an in-memory implementation of driven.DocumentIndex.
type DocumentIndex struct {
	mu     sync.RWMutex
	docs   map[string]domain.IndexedDocument
	hashes map[string]bool
}

// NewDocumentIndex creates a new in-memory document index.
func NewDocumentIndex() *DocumentIndex {
	return &DocumentIndex{
		docs:   make(map[string]domain.IndexedDocument),
		hashes: make(map[string]bool),
	}
}

// HasHash reports whether an entry with the content hash exists.
func (s *DocumentIndex) HasHash(_ context.Context, contentHash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hashes[contentHash], nil
}

// Save stores a new index entry.
func (s *DocumentIndex) Save(_ context.Context, doc domain.IndexedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	s.hashes[doc.ContentHash] = true
	return nil
}

// ScanByTokens returns entries containing at least one token, most
// recently indexed first, capped at limit.
func (s *DocumentIndex) ScanByTokens(_ context.Context, tokens []string, tableFilter string, limit int) ([]domain.IndexedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.IndexedDocument
	for _, doc := range s.docs {
		if tableFilter != "" && doc.SourceTable != tableFilter {
			continue
		}
		if containsAnyToken(doc.Content, tokens) {
			matched = append(matched, doc)
		}
	}

	// Tie-break on ID so equal timestamps order the same across runs.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].IndexedAt.Equal(matched[j].IndexedAt) {
			return matched[i].IndexedAt.After(matched[j].IndexedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// DeleteByTable removes all entries for a source table.
func (s *DocumentIndex) DeleteByTable(_ context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, doc := range s.docs {
		if doc.SourceTable == table {
			delete(s.docs, id)
			delete(s.hashes, doc.ContentHash)
		}
	}
	return nil
}

// Count returns the number of index entries.
func (s *DocumentIndex) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func containsAnyToken(content string, tokens []string) bool {
	lower := strings.ToLower(content)
	for _, tok := range tokens {
		if strings.Contains(lower, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}
