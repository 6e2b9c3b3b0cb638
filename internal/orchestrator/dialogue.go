package orchestrator

import (
	"fmt"
	"strconv"

	"github.com/specsmith/specsmith/internal/event"
	"github.com/specsmith/specsmith/internal/stage"
)

// recordStage writes a completed stage's results onto the active round,
// narrates them into the dialogue feed (one entry per sub-result, in output
// order), and appends the structured history records. Returns the number of
// sub-results for the stage-completed notification.
//
// Dialogue and history ordering is deterministic given deterministic stage
// output: everything here runs after the full stage response is received.
func (o *Orchestrator) recordStage(n int, name stage.Name, rc *stage.Context, out *stage.Output) int {
	entries, items := o.narrate(name, rc, out)

	o.mu.Lock()
	if i := len(o.state.Rounds) - 1; i >= 0 {
		round := &o.state.Rounds[i]
		switch name {
		case stage.StageQuestions:
			round.Questions = rc.Questions
		case stage.StageResearch:
			round.Research = rc.ResearchResults
		case stage.StageChallenge:
			round.Challenges = rc.Challenges
			round.ChallengeResponses = rc.ChallengeResponses
			round.DebateResolutions = rc.DebateResolutions
		case stage.StageSynthesis:
			round.Answers = rc.Syntheses
		case stage.StageVoting:
			round.Votes = rc.Votes
		}
	}

	o.dialogue = append(o.dialogue, entries...)

	o.state.History = append(o.state.History, HistoryEntry{
		Timestamp: o.now(),
		Type:      HistoryOutput,
		Data: map[string]string{
			"round": itoa(n),
			"stage": name.String(),
			"items": itoa(items),
		},
	})
	if name == stage.StageVoting {
		for _, v := range rc.Votes {
			o.state.History = append(o.state.History, HistoryEntry{
				Timestamp: o.now(),
				Type:      HistoryVote,
				Data: map[string]string{
					"round":    itoa(n),
					"agent":    v.Agent,
					"approved": strconv.FormatBool(v.Approved),
				},
			})
		}
	}
	o.mu.Unlock()

	for _, e := range entries {
		o.bus.Publish(event.NewDialogueAppendedEvent(e.Agent, e.Message, string(e.Type)))
	}
	return items
}

// narrate converts one stage's output into dialogue entries.
func (o *Orchestrator) narrate(name stage.Name, rc *stage.Context, out *stage.Output) ([]DialogueEntry, int) {
	var entries []DialogueEntry
	add := func(agent, message string, t DialogueType) {
		entries = append(entries, DialogueEntry{
			Agent:     agent,
			Message:   message,
			Timestamp: o.now(),
			Type:      t,
		})
	}

	items := 0
	switch name {
	case stage.StageQuestions:
		items = len(rc.Questions)
		for _, q := range rc.Questions {
			add(q.Agent, q.Question, DialogueQuestion)
		}
	case stage.StageResearch:
		items = len(rc.ResearchResults)
		for _, r := range rc.ResearchResults {
			add(r.Agent, fmt.Sprintf("[%s] %s", r.Topic, r.Findings), DialogueDiscussion)
		}
	case stage.StageChallenge:
		items = len(rc.Challenges)
		for _, c := range rc.Challenges {
			add(c.Agent, fmt.Sprintf("challenges %s: %s", c.Target, c.Text), DialogueDiscussion)
		}
		for _, r := range rc.ChallengeResponses {
			add(r.Agent, r.Response, DialogueDiscussion)
		}
		for _, d := range rc.DebateResolutions {
			add("system", fmt.Sprintf("Resolved %q: %s", d.Topic, d.Resolution), DialogueDiscussion)
		}
	case stage.StageSynthesis:
		items = len(rc.Syntheses)
		for _, s := range rc.Syntheses {
			add(s.Agent, s.Answer, DialogueAnswer)
		}
	case stage.StageReview:
		items = 1
		msg := "Review passed with no findings."
		if out.Review != nil {
			msg = out.Review.Summary
			if len(out.Review.Issues) > 0 {
				msg = fmt.Sprintf("%s (%d issues flagged)", out.Review.Summary, len(out.Review.Issues))
			}
		}
		add("system", msg, DialogueDiscussion)
	case stage.StageVoting:
		items = len(rc.Votes)
		for _, v := range rc.Votes {
			verdict := "REJECT"
			if v.Approved {
				verdict = "APPROVE"
			}
			add(v.Agent, fmt.Sprintf("%s — %s", verdict, v.Reasoning), DialogueVote)
		}
	}
	return entries, items
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
