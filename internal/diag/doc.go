// Package diag defines the diagnostic model shared by the loader, the mapping
// tree builder, the difference engine and the facade synthesizer.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced while
//     a run loads modules, aligns them and synthesizes facades.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not render anything and performs no IO. Rendering lives in
// internal/report; the CLI decides which severities fail a run.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary – the module and doc-id the finding is about.
//   - Notes – optional secondary locations with additional context.
//
// Notes should be used sparingly: each note must add new context (for example
// "candidate defined in Seed2") rather than repeating the message.
//
// # Emitting diagnostics
//
// Producers take a diag.Reporter. ReportBuilder (via ReportError/ReportWarning/
// ReportInfo) chains WithNote before Emit. BagReporter aggregates into a Bag,
// which supports sorting, deduplication and merging. DedupReporter suppresses
// repeats of the same code, severity, location and message.
//
// Every run owns exactly one sink. Reporters are not goroutine-safe unless
// wrapped with NewLockedReporter.
package diag
