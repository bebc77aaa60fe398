// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - EvidenceStore: document and chunk persistence with idempotent upserts
//   - EvalQueryStore: labelled eval query persistence
//   - Chunker: deterministic text splitting
//   - NoteSource: filesystem traversal producing raw notes
//   - CommitSource: git traversal producing raw commits
//   - NoteNormaliser / CommitNormaliser: raw evidence to Documents
//   - SampleWorkspace: synthetic demo corpus materialisation
//   - ConfigStore: application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, source, or normaliser package
package driven
