// Package stage provides the transport layer between the orchestrator and
// the remote pipeline stages, plus the round-context merger that accumulates
// stage outputs for later stages.
//
// # Stage Client
//
// [Client] is the one interface the orchestrator calls. [HTTPClient] is the
// production implementation: it owns payload shaping (which stages receive
// the raw idea text, the accumulated round data, and the agent configs),
// enforces a per-call timeout, and decodes responses into typed [Output]
// values. Shape mismatches surface as VALIDATION-prefixed errors so the
// error categorizer can classify them without transport knowledge leaking
// upward.
//
// [RetryClient] optionally wraps any Client with transport-level retries of
// transient failures. The orchestrator itself never retries a failed stage.
//
// # Round Context
//
// [Context] is the growing per-round data object. [Merge] copies each
// stage's fields into it under fixed per-stage rules, normalizing absent
// collections to empty values so later stages never see nil.
package stage
