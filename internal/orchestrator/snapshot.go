package orchestrator

import (
	"time"

	"github.com/specsmith/specsmith/internal/errors"
)

// Snapshot is the serializable form of a session, handed to the persistence
// collaborator. Hydrating from a snapshot reproduces the rounds, history,
// and dialogue sequences exactly, order and content preserved.
type Snapshot struct {
	GeneratedSpec   string          `json:"generatedSpec"`
	DialogueEntries []DialogueEntry `json:"dialogueEntries"`
	SessionState    SessionState    `json:"sessionState"`
	Timestamp       time.Time       `json:"timestamp"`
}

// Snapshot captures a deep copy of the current session.
func (o *Orchestrator) Snapshot() *Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return &Snapshot{
		GeneratedSpec:   o.state.GeneratedSpec,
		DialogueEntries: append([]DialogueEntry(nil), o.dialogue...),
		SessionState:    cloneState(o.state),
		Timestamp:       o.now(),
	}
}

// Hydrate replaces the orchestrator's in-memory state wholesale with the
// snapshot contents (used on reload). Staleness cutoffs are the persistence
// collaborator's concern, not checked here. The machine phase is derived
// from the restored state: complete when a spec exists, paused sessions
// land back at the voting decision point, anything else is idle.
func (o *Orchestrator) Hydrate(snap *Snapshot) error {
	if snap == nil {
		return errors.New("orchestrator: nil snapshot")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		return errors.ErrGenerationInFlight
	}

	o.state = cloneState(snap.SessionState)
	o.dialogue = append([]DialogueEntry(nil), snap.DialogueEntries...)
	// The spec text is duplicated at the snapshot's top level; when the two
	// copies disagree (hand-edited or migrated files) the top level wins.
	if snap.GeneratedSpec != "" {
		o.state.GeneratedSpec = snap.GeneratedSpec
	}
	o.lastError = nil
	o.refining = false
	o.refinementInput = ""

	switch {
	case o.state.GeneratedSpec != "":
		o.phase = PhaseComplete
	case o.state.PendingResume != nil:
		o.phase = PhaseVoting
	default:
		o.phase = PhaseIdle
	}
	return nil
}
