package stage

import "encoding/json"

// Name identifies one remote pipeline stage.
type Name string

const (
	// StageQuestions asks the panel for clarifying questions about the idea.
	StageQuestions Name = "questions"
	// StageResearch fans the idea out to the panel for domain research.
	StageResearch Name = "research"
	// StageChallenge has the panel challenge each other's research.
	StageChallenge Name = "challenge"
	// StageSynthesis merges research and debate into candidate answers.
	StageSynthesis Name = "synthesis"
	// StageReview quality-gates the synthesis output.
	StageReview Name = "review"
	// StageVoting collects per-persona approval votes.
	StageVoting Name = "voting"
	// StageSpec produces the final long-form specification.
	StageSpec Name = "spec"
	// StageChat is the single-persona clarifying call used by refinement.
	StageChat Name = "chat"
)

// String returns the string representation of the stage name.
func (n Name) String() string {
	return string(n)
}

// RoundStages is the fixed per-round stage order. StageSpec and StageChat
// sit outside the round loop and are invoked separately.
var RoundStages = []Name{
	StageQuestions,
	StageResearch,
	StageChallenge,
	StageSynthesis,
	StageReview,
	StageVoting,
}

// needsUserInput reports whether the stage payload carries the raw idea text.
func needsUserInput(n Name) bool {
	switch n {
	case StageQuestions, StageResearch, StageChallenge, StageChat:
		return true
	}
	return false
}

// fansOut reports whether the stage payload carries the agent configs.
func fansOut(n Name) bool {
	switch n {
	case StageResearch, StageChallenge, StageVoting, StageChat:
		return true
	}
	return false
}

// Question is one clarifying question raised during the questions stage.
type Question struct {
	Agent    string `json:"agent"`
	Question string `json:"question"`
}

// Assignment maps a research topic to the agent covering it.
type Assignment struct {
	Agent string `json:"agent"`
	Topic string `json:"topic"`
}

// ResearchResult is one agent's research finding on its assigned topic.
type ResearchResult struct {
	Agent    string `json:"agent"`
	Topic    string `json:"topic"`
	Findings string `json:"findings"`
}

// Challenge is one agent's objection to another agent's research.
type Challenge struct {
	Agent  string `json:"agent"`
	Target string `json:"target"`
	Text   string `json:"challenge"`
}

// ChallengeResponse is the challenged agent's defense.
type ChallengeResponse struct {
	Agent    string `json:"agent"`
	Response string `json:"response"`
}

// DebateResolution records how one challenge thread was settled.
type DebateResolution struct {
	Topic      string `json:"topic"`
	Resolution string `json:"resolution"`
}

// Synthesis is one agent's synthesized answer over the round's context.
type Synthesis struct {
	Agent  string `json:"agent"`
	Answer string `json:"answer"`
}

// ReviewSummary is the quality-gate verdict over the synthesis output.
type ReviewSummary struct {
	Summary string   `json:"summary"`
	Issues  []string `json:"issues"`
}

// Vote is one persona's approval vote on the round's syntheses.
type Vote struct {
	Agent     string `json:"agent"`
	Approved  bool   `json:"approved"`
	Reasoning string `json:"reasoning"`
}

// Output is the decoded result of one stage invocation. Only the fields for
// the invoked stage are populated; the rest stay at their zero values.
type Output struct {
	Stage Name

	// questions
	Questions []Question

	// research
	ResearchResults []ResearchResult
	Assignments     []Assignment

	// challenge
	Challenges         []Challenge
	ChallengeResponses []ChallengeResponse
	DebateResolutions  []DebateResolution

	// synthesis
	Syntheses []Synthesis

	// review
	Review *ReviewSummary

	// voting
	Votes []Vote

	// spec
	Spec      string
	TechStack []string

	// chat
	Reply string

	// Metadata carries stage-specific extras (model, token counts, timing).
	Metadata map[string]any
}

// wireOutput is the on-the-wire superset shape returned by stage endpoints.
type wireOutput struct {
	Questions          []Question          `json:"questions"`
	ResearchResults    []ResearchResult    `json:"researchResults"`
	Assignments        []Assignment        `json:"assignments"`
	Challenges         []Challenge         `json:"challenges"`
	ChallengeResponses []ChallengeResponse `json:"challengeResponses"`
	DebateResolutions  []DebateResolution  `json:"debateResolutions"`
	Syntheses          []Synthesis         `json:"syntheses"`
	Review             *ReviewSummary      `json:"review"`
	Votes              []Vote              `json:"votes"`
	Spec               string              `json:"spec"`
	TechStack          []string            `json:"techStack"`
	Reply              string              `json:"reply"`
	Metadata           map[string]any      `json:"metadata"`
}

// decodeOutput parses a stage response body into a typed Output.
func decodeOutput(name Name, data []byte) (*Output, error) {
	var wire wireOutput
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return &Output{
		Stage:              name,
		Questions:          wire.Questions,
		ResearchResults:    wire.ResearchResults,
		Assignments:        wire.Assignments,
		Challenges:         wire.Challenges,
		ChallengeResponses: wire.ChallengeResponses,
		DebateResolutions:  wire.DebateResolutions,
		Syntheses:          wire.Syntheses,
		Review:             wire.Review,
		Votes:              wire.Votes,
		Spec:               wire.Spec,
		TechStack:          wire.TechStack,
		Reply:              wire.Reply,
		Metadata:           wire.Metadata,
	}, nil
}
