// Package ollama provides an intent model adapter using a local
// Ollama instance.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/openaudit/govquery/internal/core/ports/driven"
)

// Ensure IntentModel implements the interface.
var _ driven.IntentModel = (*IntentModel)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the Ollama intent model.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// IntentModel classifies queries using a local Ollama model.
type IntentModel struct {
	client  *http.Client
	baseURL string
	model   string
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	System  string   `json:"system,omitempty"`
	Format  string   `json:"format,omitempty"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

type options struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

const systemPrompt = `You route queries for a government financial data system.
SQL answers totals, averages, rankings and comparisons over budget ledger rows.
RAG retrieves specific operational records (finance, HR, procurement).
HYBRID runs both for questions needing figures plus supporting records.
Reply with ONLY a JSON object:
{"method":"SQL"|"RAG"|"HYBRID","intent":"...","entities":{"department":"...","portfolio":"...","program":"...","fiscal_year":"..."},"query_type":"budget_summary"|"specific_lookup"|"combined_analysis"|"comparison","reasoning":"..."}
Omit entity keys the query does not mention.`

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// NewIntentModel creates an Ollama-backed intent model.
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

	return &IntentModel{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Classify routes one query through the model.
func (m *IntentModel) Classify(ctx context.Context, req driven.IntentRequest) (*driven.IntentResult, error) {
	prompt := "Query: " + req.Query
	if len(req.Context) > 0 {
		if ctxJSON, err := json.Marshal(req.Context); err == nil {
			prompt += "\nContext: " + string(ctxJSON)
		}
	}

	reqBody := generateRequest{
		Model:  m.model,
		Prompt: prompt,
		System: systemPrompt,
		Format: "json",
		Stream: false,
		Options: &options{
			Temperature: 0.1,
			NumPredict:  500,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
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
			return nil, fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	match := jsonObjectRe.FindString(genResp.Response)
	if match == "" {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	var result driven.IntentResult
	if err := json.Unmarshal([]byte(match), &result); err != nil {
		return nil, fmt.Errorf("unmarshal model reply: %w", err)
	}
	return &result, nil
}

// ModelName returns the configured model name.
func (m *IntentModel) ModelName() string {
	return m.model
}
