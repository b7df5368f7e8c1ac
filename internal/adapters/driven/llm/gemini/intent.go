// Package gemini provides an intent model adapter using the Google
// Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// Ensure IntentModel implements the interface.
var _ driven.IntentModel = (*IntentModel)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerMinute bounds calls to the hosted API.
	DefaultRequestsPerMinute = 30
)

// Config holds configuration for the Gemini intent model.
type Config struct {
	// APIKey is the Google AI API key. Required.
	APIKey string

	// BaseURL is the API base URL (default: the hosted endpoint).
	BaseURL string

	// Model is the model name (default: gemini-2.0-flash).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerMinute caps the request rate (default: 30).
	RequestsPerMinute int
}

// IntentModel classifies queries using Gemini.
type IntentModel struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	model   string
	apiKey  string
}

// generateContent request/response formats.
type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// systemInstruction fixes the classification contract. The model
// must answer with a single JSON object matching the reply schema.
const systemInstruction = `You are the query router for a government financial data system.
The system has two engines:
- SQL: deterministic aggregation over budget ledger rows (totals, averages, rankings, comparisons, statistics)
- RAG: lexical retrieval over operational records (finance, HR, procurement lookups)
- HYBRID: both, for questions that need figures and supporting records

Classify the user's query. Reply with ONLY a JSON object, no prose:
{
  "method": "SQL" | "RAG" | "HYBRID",
  "intent": "one-line description of what the user wants",
  "entities": {"department": "...", "portfolio": "...", "program": "...", "fiscal_year": "..."},
  "query_type": "budget_summary" | "specific_lookup" | "combined_analysis" | "comparison",
  "reasoning": "one line on why this routing"
}
Omit entity keys the query does not mention.`

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// NewIntentModel creates a Gemini-backed intent model.
func NewIntentModel(cfg Config) *IntentModel {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}

	return &IntentModel{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
	}
}

// Classify routes one query through the model.
func (m *IntentModel) Classify(ctx context.Context, req driven.IntentRequest) (*driven.IntentResult, error) {
	if m.apiKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	userText := "Query: " + req.Query
	if len(req.Context) > 0 {
		ctxJSON, err := json.Marshal(req.Context)
		if err == nil {
			userText += "\nContext: " + string(ctxJSON)
		}
	}

	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userText}}},
		},
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		GenerationConfig: &generationConfig{
			Temperature:     0.1,
			MaxOutputTokens: 500,
			TopP:            0.95,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", m.baseURL, m.model, m.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("gemini error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty gemini response")
	}

	return parseIntentReply(genResp.Candidates[0].Content.Parts[0].Text)
}

// ModelName returns the configured model name.
func (m *IntentModel) ModelName() string {
	return m.model
}

// parseIntentReply extracts the JSON object from the model's text.
// Models sometimes wrap JSON in code fences or prose.
func parseIntentReply(text string) (*driven.IntentResult, error) {
	match := jsonObjectRe.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	var result driven.IntentResult
	if err := json.Unmarshal([]byte(match), &result); err != nil {
		return nil, fmt.Errorf("unmarshal model reply: %w", err)
	}
	return &result, nil
}
