package agent

import (
	"context"

	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/hitl"
)

// HITLAgent runs the tool-calling loop with human review. Turns suspend when
// a reviewed tool is called and continue through Resume.
type HITLAgent struct {
	BaseAgent
	broker *hitl.Broker
}

// NewHITLAgent wraps a broker under the given agent id.
func NewHITLAgent(id string, b *hitl.Broker) *HITLAgent {
	a := &HITLAgent{BaseAgent: NewBaseAgent(id), broker: b}
	a.SetDescription("Executes tools with human approval for sensitive operations.")
	return a
}

// Run executes the tool loop for one turn.
func (a *HITLAgent) Run(ctx context.Context, cp *core.Checkpoint, emit chan<- core.Event) error {
	return a.broker.Run(ctx, cp, emit)
}

// Resume applies review decisions and continues the suspended turn.
func (a *HITLAgent) Resume(ctx context.Context, cp *core.Checkpoint, payload core.ResumePayload, emit chan<- core.Event) error {
	return a.broker.Resume(ctx, cp, payload, emit)
}
