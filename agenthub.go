// Package agenthub provides a high-level façade over the hub and service
// abstractions (checkpoints, agents, logging) enabling rapid construction
// of conversational agent backends. Most applications interact with this
// package by:
//  1. Creating an AgentHub via New() (optionally overriding the default
//     in-memory checkpoint store)
//  2. Registering one or more agents (chat, RAG, human-in-the-loop, custom)
//  3. Submitting turns asynchronously (Submit) or synchronously (Invoke)
//
// The façade delegates orchestration to hub.Hub while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply durable checkpoint
// stores and a structured logger.
package agenthub

import (
	"context"

	"github.com/agenthub/agenthub/agent"
	"github.com/agenthub/agenthub/checkpoint"
	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/hub"
	"github.com/agenthub/agenthub/logging"
)

// Options configures the AgentHub instance.
type Options struct {
	// Checkpoints persists per-thread state. Defaults to an in-memory
	// store when nil.
	Checkpoints core.CheckpointStore

	// DefaultAgent handles submissions that name no agent.
	DefaultAgent string

	// EventBufferSize sets the channel buffer size for turn events.
	EventBufferSize int

	// Logger defaults to a NoOp logger if nil.
	Logger logging.Logger
}

// AgentHub is the high-level façade aggregating the hub and its services.
type AgentHub struct {
	opts Options
	hub  *hub.Hub
}

// New creates an AgentHub with optional overrides. Any unset service is
// initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *AgentHub {
	opts := Options{
		Checkpoints: checkpoint.NewInMemoryStore(),
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	h := hub.New(opts.Checkpoints, func(o *hub.Options) {
		if opts.DefaultAgent != "" {
			o.DefaultAgent = opts.DefaultAgent
		}
		if opts.EventBufferSize > 0 {
			o.EventBufferSize = opts.EventBufferSize
		}
		o.Logger = opts.Logger
	})
	return &AgentHub{opts: opts, hub: h}
}

// Hub exposes the underlying hub for server wiring.
func (m *AgentHub) Hub() *hub.Hub { return m.hub }

// RegisterAgent adds an agent to the underlying hub.
func (m *AgentHub) RegisterAgent(a agent.Agent) { m.hub.Register(a) }

// Submit starts an asynchronous turn returning the thread ID plus event and
// error channels.
func (m *AgentHub) Submit(ctx context.Context, in hub.Input) (string, <-chan core.Event, <-chan error, error) {
	return m.hub.Submit(ctx, in)
}

// Invoke is a synchronous helper that drains the async channels and returns
// the collected events.
func (m *AgentHub) Invoke(ctx context.Context, in hub.Input) (string, []core.Event, error) {
	return m.hub.Invoke(ctx, in)
}

// History returns a thread's full message history.
func (m *AgentHub) History(ctx context.Context, threadID string) ([]core.Message, error) {
	return m.hub.History(ctx, threadID)
}
