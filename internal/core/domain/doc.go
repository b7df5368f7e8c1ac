// Package domain defines the core business entities for govquery.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Query / IntentClassification: A question and its routing verdict
//   - ExpenseRow: A budget ledger line item
//   - Record / IndexedDocument: Operational records and their flattened
//     index entries
//   - QueryResult / EvidencePackage: Engine output and its audit artifact
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
