package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input. An empty
	// query is rejected with this before any engine runs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrClassifierUnavailable indicates the external intent model
	// failed or timed out. Recovered silently by the rule-based
	// fallback; never surfaced to callers.
	ErrClassifierUnavailable = errors.New("intent model unavailable")

	// ErrLedgerUnavailable indicates the ledger store could not be
	// read. Surfaced as a zero-valued SQL result with an error
	// narrative, confidence forced low.
	ErrLedgerUnavailable = errors.New("ledger store unavailable")

	// ErrIndexUnavailable indicates the document index could not be
	// read. Surfaced as an empty RAG result, confidence forced low.
	ErrIndexUnavailable = errors.New("document index unavailable")

	// ErrAllEnginesFailed indicates both sub-engines of a hybrid
	// query failed. The response carries confidence 0.
	ErrAllEnginesFailed = errors.New("all engines failed")
)
