package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/oracle"
)

// ChatOptions configures a ChatAgent.
type ChatOptions struct {
	// Instructions is the system prompt sent with every turn.
	Instructions string
}

// ChatAgent is the plain conversational agent: one streamed oracle completion
// per turn, no retrieval, no tools. It never suspends.
type ChatAgent struct {
	BaseAgent
	oracle      oracle.Oracle
	checkpoints core.CheckpointStore
	opts        ChatOptions
}

// NewChatAgent creates a ChatAgent registered under the given id.
func NewChatAgent(id string, o oracle.Oracle, checkpoints core.CheckpointStore, optFns ...func(o *ChatOptions)) *ChatAgent {
	opts := ChatOptions{
		Instructions: "You are a helpful assistant.",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	a := &ChatAgent{
		BaseAgent:   NewBaseAgent(id),
		oracle:      o,
		checkpoints: checkpoints,
		opts:        opts,
	}
	a.SetDescription("A simple chatbot for general conversation.")
	return a
}

// Run streams one completion over the thread history and appends the reply.
func (a *ChatAgent) Run(ctx context.Context, cp *core.Checkpoint, emit chan<- core.Event) error {
	res, err := oracle.CollectWith(ctx, a.oracle, oracle.Request{
		Instructions: a.opts.Instructions,
		Messages:     cp.State.Messages,
		Stream:       true,
	}, func(text string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case emit <- core.NewTokenEvent(text):
			return nil
		}
	})
	if err != nil {
		return fmt.Errorf("oracle call: %w", err)
	}

	msg := core.NewAIMessage(res.Text)
	msg.ResponseMetadata = res.Metadata
	cp.State.Messages = append(cp.State.Messages, msg)
	cp.Updated = time.Now().UTC()
	if err := a.checkpoints.Save(ctx, cp); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case emit <- core.NewMessageEvent(msg):
	}
	return nil
}
