// Package diag defines the core diagnostic model shared by all analysis phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the graph / propagation / usage-checking phases.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO, or CLI integration.
// Rendering responsibilities live in internal/diagfmt; orchestration and bag
// collection per dump file lives in the driver layer.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – secondary spans/messages; the usage checker uses them to cite
//     the declaration that introduced a must-use obligation.
//
// Notes should be used sparingly: each note must add new context (e.g. "marked
// must_use here") rather than repeating the diagnostic message.
//
// # Emitting diagnostics
//
// Phases should use a diag.Reporter to decouple emission from storage. The
// propagator, for example, constructs a ReportBuilder via ReportError and
// chains WithNote before calling Emit. diag.BagReporter aggregates
// diagnostics into a Bag, which supports sorting, deduplication and merging.
//
// Keep the data model deterministic: the whole engine promises byte-identical
// output for identical input, so any new fields must avoid side effects and
// nondeterministic ordering.
package diag
