package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
	"github.com/openaudit/govquery/internal/core/ports/driving"
	"github.com/openaudit/govquery/internal/logger"
)

// csvBatchSize bounds how many parsed rows are held before a SaveRows
// call.
const csvBatchSize = 100

// requiredCSVColumns are the budget export columns the importer reads.
var requiredCSVColumns = []string{
	"Portfolio", "Department/Agency", "Program", "Expense type",
	"2023-24", "2024-25", "2025-26", "2026-27", "2027-28",
}

// IngestService owns the batch pipelines feeding the query engines:
// CSV import into the ledger and record flattening into the document
// index.
type IngestService struct {
	ledger    driven.LedgerStore
	records   driven.RecordStore
	index     driven.DocumentIndex
	retriever *Retriever
}

var _ driving.IngestService = (*IngestService)(nil)

// NewIngestService wires the ingest pipelines.
func NewIngestService(ledger driven.LedgerStore, records driven.RecordStore, index driven.DocumentIndex, retriever *Retriever) *IngestService {
	return &IngestService{ledger: ledger, records: records, index: index, retriever: retriever}
}

// Reindex flattens every operational record into the document index.
// Per-record failures are collected, not fatal; the run continues.
func (s *IngestService) Reindex(ctx context.Context, rebuild bool) (*driving.IndexStats, error) {
	logger.Section("Reindex")
	stats := &driving.IndexStats{Indexed: make(map[string]int)}

	for _, table := range domain.SourceTables {
		if rebuild {
			if err := s.index.DeleteByTable(ctx, table); err != nil {
				return nil, fmt.Errorf("drop index entries for %s: %w", table, err)
			}
			logger.Debug("Dropped index entries for %s", table)
		}

		recs, err := s.records.List(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", table, err)
		}

		for _, rec := range recs {
			indexed, err := s.retriever.Index(ctx, rec)
			if err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("%s/%s: %v", table, rec.Key(), err))
				continue
			}
			if indexed {
				stats.Indexed[table]++
			} else {
				stats.Skipped++
			}
		}
	}

	total, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count index entries: %w", err)
	}
	stats.Total = total

	logger.Info("Reindex done: %v indexed, %d skipped, %d errors, %d total",
		stats.Indexed, stats.Skipped, len(stats.Errors), stats.Total)
	return stats, nil
}

// ImportBudgetCSV loads ledger rows from a budget program expense
// export. Rows missing any of portfolio, department or program are
// skipped, as are unparseable amounts; negative amounts are treated
// as not recorded.
func (s *IngestService) ImportBudgetCSV(ctx context.Context, path string) (int, error) {
	logger.Section("Budget Import")

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open budget csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return 0, err
	}

	batchID := fmt.Sprintf("budget_import_%d", time.Now().Unix())
	logger.Debug("Import batch %s from %s", batchID, path)

	var batch []domain.ExpenseRow
	imported := 0
	skipped := 0
	now := time.Now().UTC()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		row, ok := parseExpenseRow(record, cols, batchID, now)
		if !ok {
			skipped++
			continue
		}
		batch = append(batch, row)

		if len(batch) >= csvBatchSize {
			if err := s.ledger.SaveRows(ctx, batch); err != nil {
				return imported, fmt.Errorf("save ledger rows: %w", err)
			}
			imported += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := s.ledger.SaveRows(ctx, batch); err != nil {
			return imported, fmt.Errorf("save ledger rows: %w", err)
		}
		imported += len(batch)
	}

	logger.Info("Imported %d rows (%d skipped) in batch %s", imported, skipped, batchID)
	return imported, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range requiredCSVColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("budget csv missing columns %v: %w", missing, domain.ErrInvalidInput)
	}
	return cols, nil
}

func parseExpenseRow(record []string, cols map[string]int, batchID string, now time.Time) (domain.ExpenseRow, bool) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := domain.ExpenseRow{
		ID:          uuid.NewString(),
		Portfolio:   field("Portfolio"),
		Department:  field("Department/Agency"),
		Program:     field("Program"),
		ExpenseType: field("Expense type"),
		Amounts:     make(map[string]float64),
		ImportBatch: batchID,
		CreatedAt:   now,
	}
	if row.Portfolio == "" || row.Department == "" || row.Program == "" {
		return domain.ExpenseRow{}, false
	}

	for _, year := range domain.FiscalYears {
		if amount, ok := parseAmount(field(year)); ok {
			row.Amounts[year] = amount
		}
	}
	return row, true
}

// parseAmount reads one budget cell. Blank, "-" and "N/A" cells mean no
// recorded amount, as do negative values such as "(1,234.5)".
func parseAmount(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "-", "n/a":
		return 0, false
	}
	negative := strings.HasPrefix(cell, "-") || strings.HasPrefix(cell, "(")
	cleaned := strings.NewReplacer("$", "", ",", "", "-", "", "(", "", ")", "").Replace(cell)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || negative {
		return 0, false
	}
	return amount, true
}
