// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - LedgerStore: Grouped aggregate reads over budget expense rows
//   - DocumentIndex: The lexical document index over operational records
//   - RecordStore: Resolution and enumeration of operational records
//   - AuditStore: Persistent audit trail of responses
//   - SessionStore: Chat session and message persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - IntentModel: External natural-language classifier. Without it, or
//     whenever it fails, classification falls back to keyword rules.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
