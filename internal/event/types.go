package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g. "stage.completed").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// StageStartedEvent is emitted when a pipeline stage begins.
type StageStartedEvent struct {
	baseEvent
	Round int    // 1-based round number
	Stage string // stage name
}

// NewStageStartedEvent creates a StageStartedEvent.
func NewStageStartedEvent(round int, stage string) StageStartedEvent {
	return StageStartedEvent{
		baseEvent: newBaseEvent("stage.started"),
		Round:     round,
		Stage:     stage,
	}
}

// StageCompletedEvent is emitted when a pipeline stage succeeds.
type StageCompletedEvent struct {
	baseEvent
	Round    int
	Stage    string
	Duration time.Duration // wall time of the remote call
	Items    int           // number of sub-results in the stage output
}

// NewStageCompletedEvent creates a StageCompletedEvent.
func NewStageCompletedEvent(round int, stage string, duration time.Duration, items int) StageCompletedEvent {
	return StageCompletedEvent{
		baseEvent: newBaseEvent("stage.completed"),
		Round:     round,
		Stage:     stage,
		Duration:  duration,
		Items:     items,
	}
}

// StageFailedEvent is emitted for every stage failure, carrying the
// categorized user-facing copy.
type StageFailedEvent struct {
	baseEvent
	Round     int
	Stage     string
	Category  string
	Title     string
	Message   string
	Retryable bool
}

// NewStageFailedEvent creates a StageFailedEvent.
func NewStageFailedEvent(round int, stage, category, title, message string, retryable bool) StageFailedEvent {
	return StageFailedEvent{
		baseEvent: newBaseEvent("stage.failed"),
		Round:     round,
		Stage:     stage,
		Category:  category,
		Title:     title,
		Message:   message,
		Retryable: retryable,
	}
}

// RoundCompletedEvent is emitted after the voting stage resolves a round.
type RoundCompletedEvent struct {
	baseEvent
	Round        int
	ApprovalRate float64 // fraction of votes approved, 0 when no votes
	Advancing    bool    // true when the pipeline proceeds to spec generation
}

// NewRoundCompletedEvent creates a RoundCompletedEvent.
func NewRoundCompletedEvent(round int, approvalRate float64, advancing bool) RoundCompletedEvent {
	return RoundCompletedEvent{
		baseEvent:    newBaseEvent("round.completed"),
		Round:        round,
		ApprovalRate: approvalRate,
		Advancing:    advancing,
	}
}

// GenerationCompletedEvent is emitted once the final spec is stored.
type GenerationCompletedEvent struct {
	baseEvent
	Rounds     int
	SpecLength int
}

// NewGenerationCompletedEvent creates a GenerationCompletedEvent.
func NewGenerationCompletedEvent(rounds, specLength int) GenerationCompletedEvent {
	return GenerationCompletedEvent{
		baseEvent:  newBaseEvent("generation.completed"),
		Rounds:     rounds,
		SpecLength: specLength,
	}
}

// GenerationPausedEvent is emitted when a pause takes effect at the
// round-advance decision point and a resume token is queued.
type GenerationPausedEvent struct {
	baseEvent
	NextRound int
}

// NewGenerationPausedEvent creates a GenerationPausedEvent.
func NewGenerationPausedEvent(nextRound int) GenerationPausedEvent {
	return GenerationPausedEvent{
		baseEvent: newBaseEvent("generation.paused"),
		NextRound: nextRound,
	}
}

// GenerationResumedEvent is emitted when a queued round resumes.
type GenerationResumedEvent struct {
	baseEvent
	NextRound int
	Comment   string
}

// NewGenerationResumedEvent creates a GenerationResumedEvent.
func NewGenerationResumedEvent(nextRound int, comment string) GenerationResumedEvent {
	return GenerationResumedEvent{
		baseEvent: newBaseEvent("generation.resumed"),
		NextRound: nextRound,
		Comment:   comment,
	}
}

// RefinementQuestionEvent is emitted when the refinement front door returns
// its clarifying question.
type RefinementQuestionEvent struct {
	baseEvent
	Agent    string
	Question string
}

// NewRefinementQuestionEvent creates a RefinementQuestionEvent.
func NewRefinementQuestionEvent(agent, question string) RefinementQuestionEvent {
	return RefinementQuestionEvent{
		baseEvent: newBaseEvent("refinement.question"),
		Agent:     agent,
		Question:  question,
	}
}

// DialogueAppendedEvent mirrors every dialogue entry onto the bus so live
// views can render the feed without polling the orchestrator.
type DialogueAppendedEvent struct {
	baseEvent
	Agent     string
	Message   string
	EntryType string
}

// NewDialogueAppendedEvent creates a DialogueAppendedEvent.
func NewDialogueAppendedEvent(agent, message, entryType string) DialogueAppendedEvent {
	return DialogueAppendedEvent{
		baseEvent: newBaseEvent("dialogue.appended"),
		Agent:     agent,
		Message:   message,
		EntryType: entryType,
	}
}
