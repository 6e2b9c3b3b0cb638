package orchestrator

import (
	"testing"

	"github.com/specsmith/specsmith/internal/stage"
)

func TestApprovalRate(t *testing.T) {
	tests := []struct {
		name  string
		votes []stage.Vote
		want  float64
	}{
		{"no votes", nil, 0},
		{"empty slice", []stage.Vote{}, 0},
		{"all approve", votes(4, 4), 1},
		{"none approve", votes(0, 4), 0},
		{"three of five", votes(3, 5), 0.6},
		{"one of three", votes(1, 3), 1.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := approvalRate(tt.votes); got != tt.want {
				t.Errorf("approvalRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPhaseIsTerminal(t *testing.T) {
	terminal := map[Phase]bool{
		PhaseComplete: true,
		PhaseError:    true,
	}
	all := []Phase{
		PhaseIdle, PhaseQuestions, PhaseResearch, PhaseChallenge,
		PhaseSynthesis, PhaseReview, PhaseVoting, PhaseSpec,
		PhaseRefinement, PhaseComplete, PhaseError,
	}
	for _, p := range all {
		if got := p.IsTerminal(); got != terminal[p] {
			t.Errorf("%s.IsTerminal() = %v, want %v", p, got, terminal[p])
		}
	}
}

func TestCloneStateDoesNotAlias(t *testing.T) {
	src := SessionState{
		ID: "s1",
		Rounds: []Round{{
			RoundNumber: 1,
			Questions:   []stage.Question{{Agent: "a", Question: "q"}},
		}},
		History: []HistoryEntry{{
			Type: HistoryOutput,
			Data: map[string]string{"stage": "questions"},
		}},
		TechStack:     []string{"go"},
		PendingResume: &PendingResume{Input: "idea", NextRound: 2},
	}

	dst := cloneState(src)
	dst.Rounds[0].Questions[0].Agent = "mutated"
	dst.History[0].Data["stage"] = "mutated"
	dst.TechStack[0] = "mutated"
	dst.PendingResume.NextRound = 99

	if src.Rounds[0].Questions[0].Agent != "a" {
		t.Error("round slice aliased")
	}
	if src.History[0].Data["stage"] != "questions" {
		t.Error("history map aliased")
	}
	if src.TechStack[0] != "go" {
		t.Error("tech stack aliased")
	}
	if src.PendingResume.NextRound != 2 {
		t.Error("pending resume aliased")
	}
}
