package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/openaudit/govquery/internal/core/domain"
	"github.com/openaudit/govquery/internal/core/ports/driven"
	"github.com/openaudit/govquery/internal/logger"
)

// DefaultClassifyTimeout bounds the single external model call.
const DefaultClassifyTimeout = 15 * time.Second

// Keyword cues for the rule-based fallback. Membership is tested by
// substring against the lower-cased query.
var (
	sqlCues = []string{
		"total", "sum", "average", "top", "highest", "lowest",
		"compare", "comparison", "budget", "amount", "rate",
		"outlier", "ranking", "statistics", "count", "spend",
		"spending",
	}

	ragCues = []string{
		"details", "find", "who", "record", "latest", "payment",
		"contract", "employee", "supplier", "about", "information",
		"specific", "tell me",
	}

	hybridCues = []string{
		"how much", "what is", "show me", "analysis",
	}
)

// Fixed vocabularies for fallback entity extraction.
var (
	departmentVocab = []string{
		"health", "education", "defence", "defense", "treasury",
		"social services", "infrastructure", "agriculture",
		"environment", "home affairs", "finance", "foreign affairs",
		"industry", "communications", "attorney general", "immigration",
	}

	portfolioVocab = []string{
		"health and aged care", "education", "defence", "treasury",
		"social services", "infrastructure", "agriculture",
		"environment", "home affairs", "attorney general",
	}

	programVocab = []string{
		"medicare", "ndis", "jobseeker", "aged care", "childcare",
		"university", "hospital",
	}
)

var (
	fiscalYearRe = regexp.MustCompile(`\b(\d{4})-(\d{2})\b`)
	bareYearRe   = regexp.MustCompile(`\b(\d{4})\b`)
)

// Classifier maps free text to a routing method and extracted entities.
// The external intent model is optional; the rule-based fallback always
// produces a populated classification.
type Classifier struct {
	model   driven.IntentModel
	timeout time.Duration
}

// NewClassifier creates a classifier. model may be nil, in which case
// every query takes the fallback path. A timeout of 0 uses the default.
func NewClassifier(model driven.IntentModel, timeout time.Duration) *Classifier {
	if timeout <= 0 {
		timeout = DefaultClassifyTimeout
	}
	return &Classifier{model: model, timeout: timeout}
}

// Classify analyses one query. It never fails: any model error,
// timeout or schema violation falls back to keyword rules in-process
// with no retry, so end-to-end latency stays bounded.
func (c *Classifier) Classify(ctx context.Context, text string, queryContext map[string]string) domain.IntentClassification {
	logger.Section("Intent Classification")
	logger.Debug("Query: %q", text)

	if c.model != nil {
		if result := c.classifyWithModel(ctx, text, queryContext); result != nil {
			logger.Info("Model classification: method=%s intent=%q", result.Method, result.Intent)
			return *result
		}
		logger.Warn("Model classification failed, using rule-based fallback")
	}

	result := c.classifyByRules(text)
	logger.Info("Rule-based classification: method=%s", result.Method)
	return result
}

// classifyWithModel issues the single bounded call and validates the
// reply. Returns nil on any failure so the caller falls back.
func (c *Classifier) classifyWithModel(ctx context.Context, text string, queryContext map[string]string) *domain.IntentClassification {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.model.Classify(callCtx, driven.IntentRequest{
		Query:   text,
		Context: queryContext,
	})
	if err != nil {
		logger.Warn("Intent model call failed: %v", err)
		return nil
	}

	// A schema violation is treated identically to a network failure:
	// never trust unvalidated external structure.
	method := domain.QueryMethod(strings.ToUpper(strings.TrimSpace(result.Method)))
	if !method.Valid() {
		logger.Warn("Intent model returned invalid method %q", result.Method)
		return nil
	}
	if result.Intent == "" || result.QueryType == "" {
		logger.Warn("Intent model reply missing required fields")
		return nil
	}

	entities := make(map[string]string, len(result.Entities))
	for k, v := range result.Entities {
		entities[k] = v
	}
	if fy, ok := entities["fiscal_year"]; ok {
		if norm := domain.NormalizeFiscalYear(fy); norm != "" {
			entities["fiscal_year"] = norm
		}
	}

	return &domain.IntentClassification{
		Method:    method,
		Intent:    result.Intent,
		Entities:  entities,
		QueryType: result.QueryType,
		Reasoning: result.Reasoning,
		FromModel: true,
	}
}

// classifyByRules is the deterministic fallback. It is a pure function
// of the lower-cased query text.
func (c *Classifier) classifyByRules(text string) domain.IntentClassification {
	lower := strings.ToLower(text)

	sqlScore := countCues(lower, sqlCues)
	ragScore := countCues(lower, ragCues)
	hybridScore := countCues(lower, hybridCues)
	logger.Debug("Cue counts: sql=%d rag=%d hybrid=%d", sqlScore, ragScore, hybridScore)

	// Hybrid needs a hybrid cue plus signals for BOTH engines:
	// a numeric question with no retrieval cue stays SQL even when
	// phrased "what is ...".
	var method domain.QueryMethod
	switch {
	case hybridScore > 0 && sqlScore > 0 && ragScore > 0:
		method = domain.MethodHybrid
	case sqlScore >= ragScore:
		method = domain.MethodSQL
	default:
		method = domain.MethodRAG
	}

	queryType := "specific_lookup"
	if method == domain.MethodSQL {
		queryType = "budget_summary"
	} else if method == domain.MethodHybrid {
		queryType = "combined_analysis"
	}

	return domain.IntentClassification{
		Method:    method,
		Intent:    fmt.Sprintf("%s query about government data", method),
		Entities:  extractEntities(text),
		QueryType: queryType,
		Reasoning: fmt.Sprintf("keyword cues: sql=%d rag=%d hybrid=%d", sqlScore, ragScore, hybridScore),
	}
}

func countCues(lower string, cues []string) int {
	n := 0
	for _, cue := range cues {
		if strings.Contains(lower, cue) {
			n++
		}
	}
	return n
}

// extractEntities scans fixed vocabularies and year patterns.
func extractEntities(text string) map[string]string {
	lower := strings.ToLower(text)
	entities := make(map[string]string)

	// Portfolio first: it carries multi-word names ("health and aged
	// care") that would otherwise be shadowed by a department match.
	for _, p := range portfolioVocab {
		if strings.Contains(lower, p) {
			entities["portfolio"] = p
			break
		}
	}
	for _, d := range departmentVocab {
		if strings.Contains(lower, d) {
			entities["department"] = d
			break
		}
	}
	for _, p := range programVocab {
		if strings.Contains(lower, p) {
			entities["program"] = p
			break
		}
	}

	// An explicit "YYYY-YY" token is taken verbatim. Otherwise the
	// first bare number that normalises to a plausible budget year
	// wins; counts and limits like "top 5000" fall through.
	if m := fiscalYearRe.FindString(text); m != "" {
		entities["fiscal_year"] = m
	} else {
		for _, m := range bareYearRe.FindAllString(text, -1) {
			if fy := domain.NormalizeFiscalYear(m); fy != "" {
				entities["fiscal_year"] = fy
				break
			}
		}
	}

	return entities
}
