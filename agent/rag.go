package agent

import (
	"context"

	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/graph"
)

// RAGAgent runs the retrieval-augmented control loop. It never suspends: the
// loop has no reviewed tools.
type RAGAgent struct {
	BaseAgent
	graph *graph.Graph
}

// NewRAGAgent wraps a graph under the given agent id.
func NewRAGAgent(id string, g *graph.Graph) *RAGAgent {
	a := &RAGAgent{BaseAgent: NewBaseAgent(id), graph: g}
	a.SetDescription("Answers questions from the indexed knowledge base, with web search fallback and self-critique.")
	return a
}

// Run executes the control loop for one turn.
func (a *RAGAgent) Run(ctx context.Context, cp *core.Checkpoint, emit chan<- core.Event) error {
	return a.graph.Run(ctx, cp, emit)
}
