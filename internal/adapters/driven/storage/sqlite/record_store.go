package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// recordStore implements driven.RecordStore. Records are stored as
// JSON payloads keyed by (source_table, id); the source table selects
// the concrete type on the way out.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// Save stores a record.
func (s *recordStore) Save(ctx context.Context, rec domain.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling record: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO operational_records (source_table, id, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_table, id) DO UPDATE SET payload = excluded.payload
	`, rec.Table(), rec.Key(), string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving record %s/%s: %w", rec.Table(), rec.Key(), err)
	}
	return nil
}

// Get returns one record by table and id.
func (s *recordStore) Get(ctx context.Context, table, id string) (domain.Record, error) {
	var payload string
	row := s.store.db.QueryRowContext(ctx,
		"SELECT payload FROM operational_records WHERE source_table = ? AND id = ?", table, id)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting record %s/%s: %w", table, id, err)
	}
	return unmarshalRecord(table, payload)
}

// List returns all records of a source table in insertion order.
func (s *recordStore) List(ctx context.Context, table string) ([]domain.Record, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT payload FROM operational_records WHERE source_table = ? ORDER BY created_at, id", table)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec, err := unmarshalRecord(table, payload)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return out, nil
}

func unmarshalRecord(table, payload string) (domain.Record, error) {
	switch table {
	case domain.TableFinance:
		var rec domain.FinanceRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("unmarshalling finance record: %w", err)
		}
		return rec, nil
	case domain.TableHR:
		var rec domain.HRRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("unmarshalling hr record: %w", err)
		}
		return rec, nil
	case domain.TableProcurement:
		var rec domain.ProcurementRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("unmarshalling procurement record: %w", err)
		}
		return rec, nil
	}
	return nil, fmt.Errorf("unknown source table %q: %w", table, domain.ErrInvalidInput)
}
