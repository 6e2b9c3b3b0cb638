package stage

// Context is the accumulated round data: every completed stage merges its
// output in here, and later stages receive it as roundData in their payload.
// One Context lives for the duration of one round.
type Context struct {
	Questions []Question `json:"questions"`

	ResearchResults  []ResearchResult `json:"researchResults"`
	Assignments      []Assignment     `json:"assignments"`
	ResearchMetadata map[string]any   `json:"researchMetadata"`

	Challenges         []Challenge         `json:"challenges"`
	ChallengeResponses []ChallengeResponse `json:"challengeResponses"`
	DebateResolutions  []DebateResolution  `json:"debateResolutions"`
	ChallengeMetadata  map[string]any      `json:"challengeMetadata"`

	Syntheses         []Synthesis    `json:"syntheses"`
	SynthesisMetadata map[string]any `json:"synthesisMetadata"`

	Votes []Vote `json:"votes"`

	// UserComment is the free text supplied when resuming after a pause.
	UserComment string `json:"userComment,omitempty"`
}

// NewContext returns an empty round context.
func NewContext() *Context {
	return &Context{}
}

// Merge copies stageName's fields from out into the context. Every copied
// field defaults to an empty slice or empty map when absent on the output,
// never nil metadata, so later stages can read it safely. Stages without a
// merge rule (review, spec, chat) are no-ops.
func Merge(ctx *Context, stageName Name, out *Output) {
	if ctx == nil || out == nil {
		return
	}
	switch stageName {
	case StageQuestions:
		ctx.Questions = orEmpty(out.Questions)
	case StageResearch:
		ctx.ResearchResults = orEmpty(out.ResearchResults)
		ctx.Assignments = orEmpty(out.Assignments)
		ctx.ResearchMetadata = orEmptyMap(out.Metadata)
	case StageChallenge:
		ctx.Challenges = orEmpty(out.Challenges)
		ctx.ChallengeResponses = orEmpty(out.ChallengeResponses)
		ctx.DebateResolutions = orEmpty(out.DebateResolutions)
		ctx.ChallengeMetadata = orEmptyMap(out.Metadata)
	case StageSynthesis:
		ctx.Syntheses = orEmpty(out.Syntheses)
		ctx.SynthesisMetadata = orEmptyMap(out.Metadata)
	case StageVoting:
		ctx.Votes = orEmpty(out.Votes)
	}
}

// orEmpty normalizes a nil slice to an empty one.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// orEmptyMap normalizes a nil map to an empty one.
func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
