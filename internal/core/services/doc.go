// Package services implements the driving port interfaces.
// Services contain the core business logic: query classification,
// aggregation, retrieval, composition, confidence scoring, evidence
// packaging and the batch ingest pipelines. They orchestrate calls to
// driven ports (adapters) and hold no storage of their own.
package services
