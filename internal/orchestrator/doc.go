// Package orchestrator implements the multi-stage generation state machine
// at the heart of specsmith.
//
// # Rounds
//
// One round runs the fixed stage sequence questions → research → challenge →
// synthesis → review → voting, feeding each stage's output through the
// round-context merger so later stages see everything that came before.
// After voting, the round-advance rule applies: the pipeline proceeds to
// final spec generation when at least 60% of the votes approve, or
// unconditionally after the third round. Otherwise another round runs with
// the same input. The round cap makes the loop finite; there is never a
// fourth round.
//
// # Pause and Resume
//
// Pause takes effect only at the round-advance decision point: the
// orchestrator finishes the current round, queues a [PendingResume] token,
// and stops with the machine still at its last stage. Resume picks up the
// queued round, optionally recording a user comment that is carried into
// the next round's context. A redundant resume never starts overlapping
// rounds.
//
// # Failure
//
// Any stage failure halts the round immediately: the error is categorized,
// a failure notice lands in the dialogue feed, a stage.failed event fires,
// and the machine transitions to the error state. Data merged before the
// failing stage stays intact and inspectable. The orchestrator never retries
// a failed stage; retry is the caller's decision.
//
// # Concurrency
//
// The orchestrator is the single writer of its session state, dialogue feed,
// and history log. Stages execute strictly sequentially. Accessors return
// deep copies, so concurrent readers observe immutable snapshots between
// writes.
package orchestrator
