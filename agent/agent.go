package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/agenthub/agenthub/core"
)

// ErrNotSuspendable is returned by Resume on agents that never suspend.
var ErrNotSuspendable = errors.New("agent does not support resume")

// Agent executes conversation turns for the hub. Run starts a fresh turn from
// the checkpoint; Resume continues a suspended one. Both emit events while
// they advance state and persist progress through the checkpoint store they
// were constructed with.
type Agent interface {
	// ID returns the unique identifier this agent is registered under.
	ID() string

	// Description returns a human-readable summary of the agent's purpose.
	Description() string

	// Run executes one turn. On return the checkpoint is either idle or
	// suspended awaiting review decisions.
	Run(ctx context.Context, cp *core.Checkpoint, emit chan<- core.Event) error

	// Resume continues a suspended turn with the given decisions. Agents
	// that never suspend return ErrNotSuspendable.
	Resume(ctx context.Context, cp *core.Checkpoint, payload core.ResumePayload, emit chan<- core.Event) error
}

// BaseAgent bundles identity helpers. Embed it in concrete agent
// implementations and supply Run (and Resume where supported).
type BaseAgent struct {
	id          string
	description string
}

// NewBaseAgent constructs a BaseAgent with a generated description
// (customizable via SetDescription).
func NewBaseAgent(id string) BaseAgent {
	return BaseAgent{id: id, description: fmt.Sprintf("Agent %s", id)}
}

// ID returns the agent's registered identifier.
func (b *BaseAgent) ID() string { return b.id }

// Description returns the agent's purpose summary.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }

// Resume is the default implementation for agents that never suspend.
func (b *BaseAgent) Resume(context.Context, *core.Checkpoint, core.ResumePayload, chan<- core.Event) error {
	return ErrNotSuspendable
}
