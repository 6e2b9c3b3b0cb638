// Package event defines the notification surface of the generation
// pipeline. The orchestrator publishes a typed event at every observable
// transition (stage start, stage success, stage failure, round completion,
// pause, resume, and terminal outcomes) and consumers (CLI printer, watch
// TUI, persistence hooks) subscribe without the orchestrator knowing they
// exist.
//
// The Bus is synchronous: Publish calls every matching handler inline before
// returning, so dialogue and notification ordering follows stage processing
// order exactly.
package event
