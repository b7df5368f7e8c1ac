package services

import "github.com/openaudit/govquery/internal/core/domain"

// Confidence scoring weights. Baseline ordering before bonuses:
// HYBRID (0.9) >= SQL (0.8) >= RAG (0.7).
const (
	confidenceBase = 0.5

	bonusSQL    = 0.3
	bonusRAG    = 0.2
	bonusHybrid = 0.4

	bonusDiverseSources = 0.1 // two or more distinct data sources
	bonusHasData        = 0.1 // non-empty breakdown or hit list

	// degradedConfidence is reported for a result carrying an
	// engine-local failure: forced low, but not zero, because a
	// degraded answer still reaches the caller.
	degradedConfidence = 0.1
)

// Confidence computes the scalar trust score for a result. It is a
// pure, deterministic function of the result and its method: the chat
// flow and direct query flow score identically by construction.
//
// The score is a reliability estimate, not a calibrated probability.
func Confidence(result *domain.QueryResult, method domain.QueryMethod) float64 {
	if result == nil {
		return 0
	}
	if result.Failed() {
		if result.Err == domain.ErrAllEnginesFailed.Error() {
			return 0
		}
		return degradedConfidence
	}

	score := confidenceBase
	switch method {
	case domain.MethodSQL:
		score += bonusSQL
	case domain.MethodRAG:
		score += bonusRAG
	case domain.MethodHybrid:
		score += bonusHybrid
	}

	if len(result.DataSources) >= 2 {
		score += bonusDiverseSources
	}
	if result.HasData() {
		score += bonusHasData
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}
