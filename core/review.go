package core

// DecisionType enumerates the verdicts a reviewer may return for one pending
// action request.
type DecisionType string

const (
	// DecisionApprove executes the tool call exactly as proposed.
	DecisionApprove DecisionType = "approve"
	// DecisionReject skips execution and synthesizes a refusal result.
	DecisionReject DecisionType = "reject"
	// DecisionEdit executes the tool with reviewer-supplied arguments.
	DecisionEdit DecisionType = "edit"
)

// ActionRequest is a tool invocation paused for human review.
type ActionRequest struct {
	Name        string         `json:"name"`
	Args        map[string]any `json:"args"`
	Description string         `json:"description,omitempty"`
}

// ReviewConfig declares which decisions a reviewer may take for the
// positionally matching ActionRequest.
type ReviewConfig struct {
	ActionName       string         `json:"action_name"`
	AllowedDecisions []DecisionType `json:"allowed_decisions"`
}

// Allows reports whether the config permits the given decision.
func (c ReviewConfig) Allows(d DecisionType) bool {
	for _, a := range c.AllowedDecisions {
		if a == d {
			return true
		}
	}
	return false
}

// EditedAction carries the replacement invocation supplied with an edit
// decision.
type EditedAction struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Decision is one reviewer verdict. EditedAction is only set for edit.
type Decision struct {
	Type         DecisionType  `json:"type"`
	EditedAction *EditedAction `json:"edited_action,omitempty"`
}

// ResumePayload continues a suspended thread. Decisions are matched to the
// outstanding action requests by position.
type ResumePayload struct {
	Decisions []Decision `json:"decisions"`
}
