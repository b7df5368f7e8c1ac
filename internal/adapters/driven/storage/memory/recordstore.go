package memory

import (
	"context"
	"sync"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]map[string]domain.Record
	order   map[string][]string
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]map[string]domain.Record),
		order:   make(map[string][]string),
	}
}

// Save stores a record.
func (s *RecordStore) Save(_ context.Context, rec domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	table := rec.Table()
	if s.records[table] == nil {
		s.records[table] = make(map[string]domain.Record)
	}
	if _, exists := s.records[table][rec.Key()]; !exists {
		s.order[table] = append(s.order[table], rec.Key())
	}
	s.records[table][rec.Key()] = rec
	return nil
}

// Get returns one record by table and id.
func (s *RecordStore) Get(_ context.Context, table, id string) (domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[table][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// List returns all records of a source table in insertion order.
func (s *RecordStore) List(_ context.Context, table string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Record, 0, len(s.order[table]))
	for _, id := range s.order[table] {
		out = append(out, s.records[table][id])
	}
	return out, nil
}

// Delete removes a record. Indexed entries pointing at it become
// dangling and are dropped at search time.
func (s *RecordStore) Delete(_ context.Context, table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[table][id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records[table], id)
	ids := s.order[table]
	for i, v := range ids {
		if v == id {
			s.order[table] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
