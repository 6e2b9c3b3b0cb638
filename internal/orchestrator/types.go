package orchestrator

import (
	"time"

	"github.com/specsmith/specsmith/internal/stage"
)

// Round-advance rule constants. These values are fixed product behavior:
// a round advances to spec generation when at least 60% of votes approve,
// and the third round always advances regardless of approval.
const (
	approvalThreshold = 0.6
	maxRounds         = 3
)

// Phase is the orchestrator state-machine label. Exactly one phase is
// current at a time; transitions are driven solely by the orchestrator.
type Phase string

const (
	// PhaseIdle means no generation has started or state was reset.
	PhaseIdle Phase = "idle"
	// PhaseQuestions through PhaseVoting track the in-round stage sequence.
	PhaseQuestions Phase = "questions"
	PhaseResearch  Phase = "research"
	PhaseChallenge Phase = "challenge"
	PhaseSynthesis Phase = "synthesis"
	PhaseReview    Phase = "review"
	PhaseVoting    Phase = "voting"
	// PhaseSpec means the final specification call is in flight.
	PhaseSpec Phase = "spec"
	// PhaseRefinement is the alternate entry: a clarifying dialogue that
	// later funnels back into the questions stage.
	PhaseRefinement Phase = "refinement"
	// PhaseComplete means a specification was generated and stored.
	PhaseComplete Phase = "complete"
	// PhaseError means a stage failed and the run halted.
	PhaseError Phase = "error"
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// IsTerminal reports whether the phase is a final state.
func (p Phase) IsTerminal() bool {
	return p == PhaseComplete || p == PhaseError
}

// RoundStatus tracks a round's lifecycle.
type RoundStatus string

const (
	// RoundInProgress marks the one round currently being executed.
	RoundInProgress RoundStatus = "in-progress"
	// RoundComplete marks a round whose advance decision has been made.
	RoundComplete RoundStatus = "complete"
)

// Round is one attempt at producing a specification from a fixed input.
// It is mutated stage by stage while in progress; once its advance decision
// resolves it is complete and never touched again.
type Round struct {
	RoundNumber        int                       `json:"roundNumber"`
	Stage              string                    `json:"stage"`
	Questions          []stage.Question          `json:"questions"`
	Research           []stage.ResearchResult    `json:"research"`
	Challenges         []stage.Challenge         `json:"challenges"`
	ChallengeResponses []stage.ChallengeResponse `json:"challengeResponses"`
	DebateResolutions  []stage.DebateResolution  `json:"debateResolutions"`
	Answers            []stage.Synthesis         `json:"answers"`
	Votes              []stage.Vote              `json:"votes"`
	Status             RoundStatus               `json:"status"`
	UserComment        string                    `json:"userComment,omitempty"`
}

// PendingResume is the continuation token captured when the orchestrator is
// paused exactly at a round-advance decision point.
type PendingResume struct {
	Input       string `json:"input"`
	NextRound   int    `json:"nextRound"`
	UserComment string `json:"userComment,omitempty"`
}

// HistoryType tags one audit-log entry.
type HistoryType string

const (
	HistoryVote        HistoryType = "vote"
	HistoryOutput      HistoryType = "output"
	HistorySpec        HistoryType = "spec"
	HistoryUserComment HistoryType = "user-comment"
)

// HistoryEntry is one structured audit record. History is append-only: the
// orchestrator never reorders or truncates it.
type HistoryEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      HistoryType       `json:"type"`
	Data      map[string]string `json:"data"`
}

// DialogueType tags one human-readable narration entry.
type DialogueType string

const (
	DialogueQuestion   DialogueType = "question"
	DialogueAnswer     DialogueType = "answer"
	DialogueVote       DialogueType = "vote"
	DialogueDiscussion DialogueType = "discussion"
	DialogueSpec       DialogueType = "spec"
	DialogueUser       DialogueType = "user"
)

// DialogueEntry is one narration unit in the dialogue feed.
type DialogueEntry struct {
	Agent     string       `json:"agent"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
	Type      DialogueType `json:"type"`
}

// SessionState is the externally observable state of one full specification
// attempt, possibly spanning multiple rounds.
type SessionState struct {
	ID            string         `json:"id"`
	Input         string         `json:"input"`
	Rounds        []Round        `json:"rounds"`
	CurrentRound  int            `json:"currentRound"`
	IsPaused      bool           `json:"isPaused"`
	PendingResume *PendingResume `json:"pendingResume"`
	History       []HistoryEntry `json:"history"`
	GeneratedSpec string         `json:"generatedSpec"`
	TechStack     []string       `json:"techStack"`
}

// approvalRate computes the fraction of approved votes. An empty vote set
// is 0, never a division by zero.
func approvalRate(votes []stage.Vote) float64 {
	if len(votes) == 0 {
		return 0
	}
	approved := 0
	for _, v := range votes {
		if v.Approved {
			approved++
		}
	}
	return float64(approved) / float64(len(votes))
}

// cloneRound deep-copies a round so external readers never alias the
// orchestrator's mutable slices.
func cloneRound(r Round) Round {
	out := r
	out.Questions = append([]stage.Question(nil), r.Questions...)
	out.Research = append([]stage.ResearchResult(nil), r.Research...)
	out.Challenges = append([]stage.Challenge(nil), r.Challenges...)
	out.ChallengeResponses = append([]stage.ChallengeResponse(nil), r.ChallengeResponses...)
	out.DebateResolutions = append([]stage.DebateResolution(nil), r.DebateResolutions...)
	out.Answers = append([]stage.Synthesis(nil), r.Answers...)
	out.Votes = append([]stage.Vote(nil), r.Votes...)
	return out
}

// cloneState deep-copies the session state.
func cloneState(s SessionState) SessionState {
	out := s
	out.Rounds = make([]Round, len(s.Rounds))
	for i, r := range s.Rounds {
		out.Rounds[i] = cloneRound(r)
	}
	out.History = make([]HistoryEntry, len(s.History))
	for i, h := range s.History {
		entry := h
		entry.Data = make(map[string]string, len(h.Data))
		for k, v := range h.Data {
			entry.Data[k] = v
		}
		out.History[i] = entry
	}
	out.TechStack = append([]string(nil), s.TechStack...)
	if s.PendingResume != nil {
		pr := *s.PendingResume
		out.PendingResume = &pr
	}
	return out
}
