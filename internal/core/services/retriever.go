package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
	"github.com/openaudit/govquery/internal/logger"
)

const (
	// DefaultTopK caps the candidate pool taken from the index,
	// most recently indexed first, BEFORE relevance ranking. A known
	// precision/recall trade-off carried over deliberately.
	DefaultTopK = 5

	// vectorDims is the length of the stored term-frequency vector.
	// The vector is a placeholder for a future embedding index and is
	// never used for ranking.
	vectorDims = 100

	// minTokenLen filters short tokens out of indexing and search.
	minTokenLen = 3

	indexSource = "document_index"
)

// Retriever indexes operational records and answers lexical searches
// over them.
type Retriever struct {
	index   driven.DocumentIndex
	records driven.RecordStore
	topK    int
}

// NewRetriever creates a retrieval engine. topK <= 0 uses the default
// candidate pool size.
func NewRetriever(index driven.DocumentIndex, records driven.RecordStore, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{index: index, records: records, topK: topK}
}

// Index flattens one record into the document index. Idempotent:
// a record whose canonical text is already indexed is skipped. The
// returned bool reports whether a new entry was written.
func (r *Retriever) Index(ctx context.Context, rec domain.Record) (bool, error) {
	text := rec.CanonicalText()
	hash := contentHash(text)

	exists, err := r.index.HasHash(ctx, hash)
	if err != nil {
		return false, fmt.Errorf("check content hash: %w", err)
	}
	if exists {
		logger.Debug("Skipping %s/%s: content already indexed", rec.Table(), rec.Key())
		return false, nil
	}

	doc := domain.IndexedDocument{
		ID:          uuid.NewString(),
		ContentHash: hash,
		Content:     text,
		SourceTable: rec.Table(),
		RecordID:    rec.Key(),
		Vector:      termFrequencyVector(text),
		IndexedAt:   time.Now().UTC(),
	}
	if err := r.index.Save(ctx, doc); err != nil {
		return false, fmt.Errorf("save index entry: %w", err)
	}
	return true, nil
}

// Search returns scored hits for a query, optionally restricted to one
// source table. Hits whose underlying record has been deleted are
// silently dropped.
func (r *Retriever) Search(ctx context.Context, queryText, tableFilter string) ([]domain.RetrievalHit, error) {
	tokens := tokenize(queryText)
	logger.Debug("Search tokens: %v (table filter %q)", tokens, tableFilter)
	if len(tokens) == 0 {
		return []domain.RetrievalHit{}, nil
	}

	candidates, err := r.index.ScanByTokens(ctx, tokens, tableFilter, r.topK)
	if err != nil {
		return nil, fmt.Errorf("scan index: %w", err)
	}
	logger.Debug("Candidate pool: %d documents", len(candidates))

	hits := make([]domain.RetrievalHit, 0, len(candidates))
	for _, doc := range candidates {
		summary := ""
		rec, err := r.records.Get(ctx, doc.SourceTable, doc.RecordID)
		switch {
		case err == nil:
			summary = rec.Summary()
		case errors.Is(err, domain.ErrNotFound):
			// Record deleted since indexing: drop the hit.
			logger.Debug("Dropping hit for deleted record %s/%s", doc.SourceTable, doc.RecordID)
			continue
		default:
			logger.Warn("Resolve record %s/%s: %v", doc.SourceTable, doc.RecordID, err)
			continue
		}

		hits = append(hits, domain.RetrievalHit{
			SourceTable: doc.SourceTable,
			RecordID:    doc.RecordID,
			Content:     doc.Content,
			Score:       relevance(tokens, doc.Content),
			Record:      summary,
		})
	}

	// Stable sort keeps the recency order of the candidate pool for
	// equal scores, so repeated searches rank identically.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	logger.Info("Search returned %d hits", len(hits))
	return hits, nil
}

// Retrieve answers one RAG-routed query. It never fails: an index
// access error yields an empty result with an error narrative.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, cls domain.IntentClassification) *domain.QueryResult {
	logger.Section("Retrieval")

	hits, err := r.Search(ctx, queryText, "")
	if err != nil {
		logger.Warn("Index read failed: %v", err)
		return &domain.QueryResult{
			Method:      domain.MethodRAG,
			Answer:      fmt.Sprintf("The document index could not be read: %v", err),
			Hits:        []domain.RetrievalHit{},
			DataSources: []string{indexSource},
			Err:         err.Error(),
		}
	}

	sources := []string{indexSource}
	seen := map[string]bool{indexSource: true}
	for _, h := range hits {
		if !seen[h.SourceTable] {
			seen[h.SourceTable] = true
			sources = append(sources, h.SourceTable)
		}
	}

	answer := fmt.Sprintf("No operational records matched %q.", queryText)
	if len(hits) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "Found %d matching operational records:\n", len(hits))
		for i, h := range hits {
			fmt.Fprintf(&b, "%d. [%s] %s (relevance %.2f)\n", i+1, h.SourceTable, h.Record, h.Score)
		}
		answer = strings.TrimRight(b.String(), "\n")
	}

	return &domain.QueryResult{
		Method:      domain.MethodRAG,
		Answer:      answer,
		Hits:        hits,
		RowCount:    len(hits),
		DataSources: sources,
	}
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// tokenize lower-cases and splits on whitespace, keeping words longer
// than two characters.
func tokenize(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) >= minTokenLen {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// termFrequencyVector builds the fixed-length placeholder vector:
// per-token frequency normalised by the document's word count, in
// first-seen token order, truncated at vectorDims.
func termFrequencyVector(text string) []float64 {
	words := strings.Fields(strings.ToLower(text))
	vector := make([]float64, vectorDims)
	if len(words) == 0 {
		return vector
	}

	freq := make(map[string]int)
	var order []string
	for _, w := range words {
		if len(w) < minTokenLen {
			continue
		}
		if _, ok := freq[w]; !ok {
			order = append(order, w)
		}
		freq[w]++
	}

	for i, w := range order {
		if i >= vectorDims {
			break
		}
		vector[i] = float64(freq[w]) / float64(len(words))
	}
	return vector
}

// relevance scores a document against query tokens:
// 0.6 * Jaccard + 0.4 * keyword density, clamped to [0,1].
// Empty token sets score 0.
func relevance(queryTokens []string, content string) float64 {
	docTokens := tokenize(content)
	if len(queryTokens) == 0 || len(docTokens) == 0 {
		return 0
	}

	querySet := toSet(queryTokens)
	docSet := toSet(docTokens)

	intersection := 0
	for t := range querySet {
		if docSet[t] {
			intersection++
		}
	}
	union := len(querySet) + len(docSet) - intersection
	if union == 0 {
		return 0
	}

	jaccard := float64(intersection) / float64(union)
	density := float64(intersection) / float64(len(docSet))

	score := 0.6*jaccard + 0.4*density
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
