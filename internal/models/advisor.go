package models

// ChatMessage is one turn of an advisor conversation. The full history is
// re-sent on every request; nothing is retained server-side between calls.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// BehaviorSnapshot is the slice of a user's profile used as prompt context.
type BehaviorSnapshot struct {
	BehaviorTags   []string `json:"behaviorTags"`
	EmotionalScore int      `json:"emotionalScore"`
}

// DebateTurn is a single persona statement in a generated debate.
type DebateTurn struct {
	Agent   string `json:"agent"`
	Message string `json:"message"`
}

// DebateResult is the schema-constrained output of the debate generator.
// Verdict is one of PROCEED, CAUTION, WAIT.
type DebateResult struct {
	Turns      []DebateTurn `json:"turns"`
	Conclusion string       `json:"conclusion"`
	Verdict    string       `json:"verdict"`
}
