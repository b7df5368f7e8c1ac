package driven

import "context"

// IntentRequest is the payload sent to the external intent model.
type IntentRequest struct {
	// Query is the user's question.
	Query string

	// Context carries optional caller-supplied hints.
	Context map[string]string
}

// IntentResult is the structured JSON object the model must return.
// The classifier validates it on receipt; any schema violation is
// treated identically to a network failure.
type IntentResult struct {
	Method    string            `json:"method"`
	Intent    string            `json:"intent"`
	Entities  map[string]string `json:"entities"`
	QueryType string            `json:"query_type"`
	SQLHint   string            `json:"sql_hint"`
	RAGHint   string            `json:"rag_hint"`
	Reasoning string            `json:"reasoning"`
}

// IntentModel is an external natural-language classifier.
// This is an optional service - when nil or failing, classification
// falls back to keyword rules in-process with a single attempt.
//
// Implementations may include:
//   - Google Gemini (generateContent API)
//   - Ollama (local models)
type IntentModel interface {
	// Classify issues one bounded-timeout call and parses the model's
	// JSON reply. Implementations must honour ctx cancellation.
	Classify(ctx context.Context, req IntentRequest) (*IntentResult, error)

	// ModelName returns the name of the model being used.
	ModelName() string
}
