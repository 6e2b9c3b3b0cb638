package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/specsmith/specsmith/internal/errors"
	"github.com/specsmith/specsmith/internal/event"
	"github.com/specsmith/specsmith/internal/logging"
	"github.com/specsmith/specsmith/internal/persona"
	"github.com/specsmith/specsmith/internal/stage"
)

// Orchestrator drives the multi-stage generation pipeline. It is the single
// writer of its session state and dialogue feed; concurrent readers receive
// copies. Stages within a round run strictly sequentially because each
// depends on the previous stage's merged output.
type Orchestrator struct {
	client stage.Client
	panel  *persona.Panel
	bus    *event.Bus
	logger *logging.Logger
	now    func() time.Time

	mu              sync.Mutex
	phase           Phase
	state           SessionState
	dialogue        []DialogueEntry
	lastError       *errors.CategorizedError
	inFlight        bool
	refining        bool
	refinementInput string
}

// Config holds required dependencies for creating an Orchestrator.
type Config struct {
	Client stage.Client   // transport to the remote stages
	Panel  *persona.Panel // expert panel for fan-out stages
	Bus    *event.Bus     // notification bus for stage/round transitions
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a structured logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an Orchestrator with the given configuration.
func New(cfg Config, opts ...Option) (*Orchestrator, error) {
	if cfg.Client == nil {
		return nil, errors.New("orchestrator: Client is required")
	}
	if cfg.Panel == nil {
		return nil, errors.New("orchestrator: Panel is required")
	}
	if cfg.Bus == nil {
		return nil, errors.New("orchestrator: Bus is required")
	}
	o := &Orchestrator{
		client: cfg.Client,
		panel:  cfg.Panel,
		bus:    cfg.Bus,
		logger: logging.NopLogger(),
		now:    time.Now,
		phase:  PhaseIdle,
		state:  SessionState{CurrentRound: -1},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// StartGeneration resets all session state and runs the full pipeline for
// input, blocking until a spec is generated, a stage fails, or a pause takes
// effect at a round boundary.
func (o *Orchestrator) StartGeneration(ctx context.Context, input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.ErrEmptyInput
	}

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return errors.ErrGenerationInFlight
	}
	o.inFlight = true
	o.resetLocked(input)
	o.phase = PhaseQuestions
	o.mu.Unlock()
	defer o.clearInFlight()

	o.logger.Info("generation started", "input_len", len(input))
	return o.runRounds(ctx, input, 1, "")
}

// Pause requests a pause. It does not interrupt an in-flight stage call;
// it takes effect at the next round-advance decision point. Calling Pause
// repeatedly is equivalent to calling it once.
func (o *Orchestrator) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.IsPaused = true
}

// Resume clears the pause flag and, if a round was queued at a decision
// point, re-runs the pipeline from that round. A non-empty comment is
// recorded in the dialogue and history before resuming and overrides the
// comment captured at pause time. A redundant Resume while a run is already
// in flight is ignored.
func (o *Orchestrator) Resume(ctx context.Context, comment string) error {
	o.mu.Lock()
	o.state.IsPaused = false

	var entry *DialogueEntry
	if comment != "" {
		e := DialogueEntry{Agent: "user", Message: comment, Timestamp: o.now(), Type: DialogueUser}
		o.dialogue = append(o.dialogue, e)
		entry = &e
		o.state.History = append(o.state.History, HistoryEntry{
			Timestamp: o.now(),
			Type:      HistoryUserComment,
			Data:      map[string]string{"comment": comment},
		})
	}

	pending := o.state.PendingResume
	if pending == nil || o.inFlight {
		o.mu.Unlock()
		if entry != nil {
			o.bus.Publish(event.NewDialogueAppendedEvent(entry.Agent, entry.Message, string(entry.Type)))
		}
		return nil
	}

	o.state.PendingResume = nil
	o.inFlight = true
	effective := comment
	if effective == "" {
		effective = pending.UserComment
	}
	o.mu.Unlock()
	defer o.clearInFlight()

	if entry != nil {
		o.bus.Publish(event.NewDialogueAppendedEvent(entry.Agent, entry.Message, string(entry.Type)))
	}
	o.bus.Publish(event.NewGenerationResumedEvent(pending.NextRound, effective))
	o.logger.Info("generation resumed", "next_round", pending.NextRound)

	return o.runRounds(ctx, pending.Input, pending.NextRound, effective)
}

// StartRefinement resets session state and asks a single persona one
// clarifying question about the idea instead of running the full pipeline.
// The caller collects the user's replies via AddUserMessage and then calls
// ProceedToGeneration.
func (o *Orchestrator) StartRefinement(ctx context.Context, input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.ErrEmptyInput
	}

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return errors.ErrGenerationInFlight
	}
	o.inFlight = true
	o.resetLocked(input)
	o.phase = PhaseRefinement
	o.refinementInput = input
	o.mu.Unlock()
	defer o.clearInFlight()

	o.appendDialogue(DialogueEntry{Agent: "user", Message: input, Timestamp: o.now(), Type: DialogueUser})

	lead, ok := o.panel.Lead()
	if !ok {
		err := errors.New("orchestrator: no enabled personas")
		return o.failRun(0, stage.StageChat, err)
	}

	out, err := o.client.Invoke(ctx, stage.StageChat, stage.Request{
		UserInput: input,
		Context:   stage.NewContext(),
		Agents:    []persona.Agent{lead},
	})
	if err != nil {
		return o.failRun(0, stage.StageChat, err)
	}

	o.appendDialogue(DialogueEntry{Agent: lead.Name, Message: out.Reply, Timestamp: o.now(), Type: DialogueQuestion})

	o.mu.Lock()
	o.refining = true
	o.mu.Unlock()

	o.bus.Publish(event.NewRefinementQuestionEvent(lead.Name, out.Reply))
	return nil
}

// AddUserMessage appends a user turn to the dialogue feed. Used during
// refinement to record answers to the clarifying question.
func (o *Orchestrator) AddUserMessage(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	o.appendDialogue(DialogueEntry{Agent: "user", Message: text, Timestamp: o.now(), Type: DialogueUser})
}

// ProceedToGeneration funnels the refinement dialogue into the full
// pipeline: the effective input is the original idea plus every dialogue
// turn collected so far. Round-advance and error semantics are identical to
// StartGeneration.
func (o *Orchestrator) ProceedToGeneration(ctx context.Context) error {
	o.mu.Lock()
	if !o.refining {
		o.mu.Unlock()
		return errors.ErrNoRefinement
	}
	if o.inFlight {
		o.mu.Unlock()
		return errors.ErrGenerationInFlight
	}
	o.inFlight = true
	o.refining = false

	var sb strings.Builder
	sb.WriteString(o.refinementInput)
	for _, e := range o.dialogue {
		sb.WriteString("\n\n")
		sb.WriteString(e.Agent)
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	input := sb.String()
	o.phase = PhaseQuestions
	o.mu.Unlock()
	defer o.clearInFlight()

	return o.runRounds(ctx, input, 1, "")
}

// runRounds is the iterative round driver: it executes rounds until the
// advance rule routes to spec generation, a stage fails, or a pause takes
// effect at the decision point. The same input text is reused across
// rounds.
func (o *Orchestrator) runRounds(ctx context.Context, input string, startRound int, comment string) error {
	for n := startRound; ; n++ {
		rc, err := o.runRound(ctx, input, n, comment)
		if err != nil {
			return err
		}

		approval := approvalRate(rc.Votes)
		advance := approval >= approvalThreshold || n >= maxRounds
		o.bus.Publish(event.NewRoundCompletedEvent(n, approval, advance))
		o.logger.Info("round completed", "round", n, "approval", approval, "advancing", advance)

		if advance {
			if err := o.generateSpec(ctx, rc, n); err != nil {
				return err
			}
			o.completeRound(n)
			o.setPhase(PhaseComplete)

			o.mu.Lock()
			specLen := len(o.state.GeneratedSpec)
			o.mu.Unlock()
			o.bus.Publish(event.NewGenerationCompletedEvent(n, specLen))
			return nil
		}

		// Decision point: a pause requested during this round takes effect
		// here, queueing the next round instead of starting it.
		if o.deferNextRound(input, n, comment) {
			return nil
		}
		o.completeRound(n)
	}
}

// runRound executes the fixed stage sequence for one round, merging each
// stage's output into the shared round context. On any stage failure the
// round halts immediately and the categorized error is returned.
func (o *Orchestrator) runRound(ctx context.Context, input string, n int, comment string) (*stage.Context, error) {
	o.mu.Lock()
	o.state.Rounds = append(o.state.Rounds, Round{
		RoundNumber: n,
		Stage:       stage.StageQuestions.String(),
		Status:      RoundInProgress,
		UserComment: comment,
	})
	o.state.CurrentRound = len(o.state.Rounds) - 1
	o.mu.Unlock()

	rc := stage.NewContext()
	rc.UserComment = comment
	agents := o.panel.Enabled()

	for _, name := range stage.RoundStages {
		o.setPhase(Phase(name.String()))
		o.setRoundStage(name)
		o.bus.Publish(event.NewStageStartedEvent(n, name.String()))

		start := time.Now()
		out, err := o.client.Invoke(ctx, name, stage.Request{
			UserInput: input,
			Context:   rc,
			Agents:    agents,
		})
		if err != nil {
			return nil, o.failRun(n, name, err)
		}

		stage.Merge(rc, name, out)
		items := o.recordStage(n, name, rc, out)
		o.bus.Publish(event.NewStageCompletedEvent(n, name.String(), time.Since(start), items))
	}

	return rc, nil
}

// generateSpec invokes the spec stage over the accumulated round context and
// stores the result as session-level fields.
func (o *Orchestrator) generateSpec(ctx context.Context, rc *stage.Context, n int) error {
	o.setPhase(PhaseSpec)
	o.bus.Publish(event.NewStageStartedEvent(n, stage.StageSpec.String()))

	start := time.Now()
	out, err := o.client.Invoke(ctx, stage.StageSpec, stage.Request{Context: rc})
	if err != nil {
		return o.failRun(n, stage.StageSpec, err)
	}

	entry := DialogueEntry{
		Agent:     "system",
		Message:   "Specification generated (" + itoa(len(out.Spec)) + " characters).",
		Timestamp: o.now(),
		Type:      DialogueSpec,
	}

	o.mu.Lock()
	o.state.GeneratedSpec = out.Spec
	o.state.TechStack = append([]string(nil), out.TechStack...)
	o.state.History = append(o.state.History, HistoryEntry{
		Timestamp: o.now(),
		Type:      HistorySpec,
		Data: map[string]string{
			"round":  itoa(n),
			"length": itoa(len(out.Spec)),
		},
	})
	o.dialogue = append(o.dialogue, entry)
	o.mu.Unlock()

	o.bus.Publish(event.NewDialogueAppendedEvent(entry.Agent, entry.Message, string(entry.Type)))
	o.bus.Publish(event.NewStageCompletedEvent(n, stage.StageSpec.String(), time.Since(start), 1))
	return nil
}

// deferNextRound stores a pending-resume token instead of starting the next
// round when a pause has taken effect. Returns true when the run should
// stop. The machine stays at its last stage: not complete, not error.
func (o *Orchestrator) deferNextRound(input string, n int, comment string) bool {
	o.mu.Lock()
	if !o.state.IsPaused {
		o.mu.Unlock()
		return false
	}
	o.state.PendingResume = &PendingResume{
		Input:       input,
		NextRound:   n + 1,
		UserComment: comment,
	}
	o.completeRoundLocked(n)
	o.mu.Unlock()

	o.bus.Publish(event.NewGenerationPausedEvent(n + 1))
	o.logger.Info("generation paused", "next_round", n+1)
	return true
}

// failRun categorizes a stage failure, appends the failure notice, and
// transitions the machine to the error state. Data merged before the
// failing stage stays intact.
func (o *Orchestrator) failRun(n int, name stage.Name, err error) error {
	cerr := errors.Categorize(err)
	entry := DialogueEntry{
		Agent:     "system",
		Message:   cerr.Title + " — " + cerr.Message,
		Timestamp: o.now(),
		Type:      DialogueDiscussion,
	}

	o.mu.Lock()
	o.lastError = cerr
	o.phase = PhaseError
	o.completeRoundLocked(n)
	o.dialogue = append(o.dialogue, entry)
	o.mu.Unlock()

	o.bus.Publish(event.NewDialogueAppendedEvent(entry.Agent, entry.Message, string(entry.Type)))
	o.bus.Publish(event.NewStageFailedEvent(
		n, name.String(), cerr.Category.String(), cerr.Title, cerr.Message, cerr.Retryable,
	))
	o.logger.Error("stage failed", "round", n, "stage", name.String(), "category", cerr.Category.String(), "error", err)
	return cerr
}

// setPhase transitions the state machine.
func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

// setRoundStage records the current stage position on the active round.
func (o *Orchestrator) setRoundStage(name stage.Name) {
	o.mu.Lock()
	if i := len(o.state.Rounds) - 1; i >= 0 {
		o.state.Rounds[i].Stage = name.String()
	}
	o.mu.Unlock()
}

// completeRound marks round n complete.
func (o *Orchestrator) completeRound(n int) {
	o.mu.Lock()
	o.completeRoundLocked(n)
	o.mu.Unlock()
}

func (o *Orchestrator) completeRoundLocked(n int) {
	for i := range o.state.Rounds {
		if o.state.Rounds[i].RoundNumber == n {
			o.state.Rounds[i].Status = RoundComplete
		}
	}
}

// appendDialogue appends one entry and mirrors it onto the bus.
func (o *Orchestrator) appendDialogue(e DialogueEntry) {
	o.mu.Lock()
	o.dialogue = append(o.dialogue, e)
	o.mu.Unlock()
	o.bus.Publish(event.NewDialogueAppendedEvent(e.Agent, e.Message, string(e.Type)))
}

// resetLocked wipes session state, dialogue, and any pending resume.
// Callers must hold the mutex.
func (o *Orchestrator) resetLocked(input string) {
	o.state = SessionState{
		ID:           uuid.NewString(),
		Input:        input,
		Rounds:       []Round{},
		CurrentRound: -1,
		History:      []HistoryEntry{},
	}
	o.dialogue = nil
	o.lastError = nil
	o.refining = false
	o.refinementInput = ""
}

func (o *Orchestrator) clearInFlight() {
	o.mu.Lock()
	o.inFlight = false
	o.mu.Unlock()
}

// Phase returns the current state-machine phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// State returns a deep copy of the session state.
func (o *Orchestrator) State() SessionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return cloneState(o.state)
}

// Dialogue returns a copy of the dialogue feed.
func (o *Orchestrator) Dialogue() []DialogueEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]DialogueEntry(nil), o.dialogue...)
}

// LastError returns the categorized error from the most recent failure, or
// nil if the last run succeeded.
func (o *Orchestrator) LastError() *errors.CategorizedError {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastError
}

// GeneratedSpec returns the stored specification text and tech stack.
func (o *Orchestrator) GeneratedSpec() (string, []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.GeneratedSpec, append([]string(nil), o.state.TechStack...)
}

// IsPaused reports whether a pause has been requested.
func (o *Orchestrator) IsPaused() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.IsPaused
}
