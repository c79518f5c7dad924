package hub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agenthub/agenthub/agent"
	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/logging"
)

// DefaultAgentID is used when a submission names no agent.
const DefaultAgentID = "chatbot"

// Input is one turn submission. ThreadID absent means a new thread. Resume
// present means this call continues a suspended thread instead of submitting
// new human input.
type Input struct {
	Content  string
	ThreadID string
	AgentID  string
	Resume   *core.ResumePayload
}

// AgentInfo describes one registered agent for discovery endpoints.
type AgentInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Options configures a Hub.
type Options struct {
	// DefaultAgent handles submissions that name no agent.
	DefaultAgent string

	// EventBufferSize sizes the event channel handed to callers.
	EventBufferSize int

	// Logger receives submission and failure logs.
	Logger logging.Logger
}

// Hub routes turn submissions to agents. Safe for concurrent use; each
// thread runs at most one turn at a time.
type Hub struct {
	checkpoints core.CheckpointStore
	opts        Options
	logger      logging.Logger

	mu       sync.RWMutex
	agents   map[string]agent.Agent
	order    []string
	inFlight map[string]bool
}

// New creates a Hub over the given checkpoint store. Register agents before
// submitting turns.
func New(checkpoints core.CheckpointStore, optFns ...func(o *Options)) *Hub {
	opts := Options{
		DefaultAgent:    DefaultAgentID,
		EventBufferSize: 64,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.EventBufferSize <= 0 {
		opts.EventBufferSize = 64
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Hub{
		checkpoints: checkpoints,
		opts:        opts,
		logger:      opts.Logger,
		agents:      make(map[string]agent.Agent),
		inFlight:    make(map[string]bool),
	}
}

// Register adds an agent under its ID. A duplicate ID replaces the earlier
// registration.
func (h *Hub) Register(a agent.Agent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.agents[a.ID()]; !exists {
		h.order = append(h.order, a.ID())
	}
	h.agents[a.ID()] = a
}

// GetAgent retrieves a registered agent by ID.
func (h *Hub) GetAgent(id string) (agent.Agent, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, ok := h.agents[id]
	return a, ok
}

// Agents lists registered agents in registration order.
func (h *Hub) Agents() []AgentInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	infos := make([]AgentInfo, 0, len(h.order))
	for _, id := range h.order {
		infos = append(infos, AgentInfo{ID: id, Description: h.agents[id].Description()})
	}
	return infos
}

// Submit starts one turn asynchronously and returns the thread ID plus the
// live event stream. The event channel closes when the turn completes or
// suspends; the error channel carries at most one terminal error.
func (h *Hub) Submit(ctx context.Context, in Input) (string, <-chan core.Event, <-chan error, error) {
	threadID := in.ThreadID
	if threadID == "" {
		if in.Resume != nil {
			return "", nil, nil, fmt.Errorf("resume requires a thread_id")
		}
		threadID = core.NewID()
	}

	cp, ag, err := h.prepare(ctx, threadID, in)
	if err != nil {
		return "", nil, nil, err
	}

	if !h.acquire(threadID) {
		return "", nil, nil, fmt.Errorf("thread %s already has a turn in flight", threadID)
	}

	events := make(chan core.Event, h.opts.EventBufferSize)
	errs := make(chan error, 1)

	go func() {
		defer func() {
			close(events)
			close(errs)
			h.release(threadID)
		}()

		start := time.Now()
		var runErr error
		if in.Resume != nil {
			runErr = ag.Resume(ctx, cp, *in.Resume, events)
		} else {
			runErr = ag.Run(ctx, cp, events)
		}
		if runErr != nil {
			h.logger.Error("turn failed", "thread_id", threadID, "agent", ag.ID(), "error", runErr)
			errs <- runErr
			return
		}
		h.logger.Debug("turn finished", "thread_id", threadID, "agent", ag.ID(),
			"suspended", cp.Suspended(), "duration", time.Since(start))
	}()

	return threadID, events, errs, nil
}

// Invoke runs one turn synchronously, collecting every event.
func (h *Hub) Invoke(ctx context.Context, in Input) (string, []core.Event, error) {
	threadID, events, errs, err := h.Submit(ctx, in)
	if err != nil {
		return "", nil, err
	}

	var collected []core.Event
	for {
		select {
		case <-ctx.Done():
			return threadID, collected, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				select {
				case err := <-errs:
					return threadID, collected, err
				default:
					return threadID, collected, nil
				}
			}
			collected = append(collected, ev)
		case err := <-errs:
			if err != nil {
				return threadID, collected, err
			}
		}
	}
}

// History returns the message history for a thread.
func (h *Hub) History(ctx context.Context, threadID string) ([]core.Message, error) {
	cp, err := h.checkpoints.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return cp.State.Messages, nil
}

// Cancel voids a thread's pending interrupt so fresh input can start a new
// turn on the same thread identity. The abandoned turn's history stays.
func (h *Hub) Cancel(ctx context.Context, threadID string) error {
	cp, err := h.checkpoints.Load(ctx, threadID)
	if err != nil {
		return err
	}
	cp.ClearPending()
	cp.ResumeDigest = ""
	cp.Updated = time.Now().UTC()
	if err := h.checkpoints.Save(ctx, cp); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	h.logger.Info("thread interrupt cancelled", "thread_id", threadID)
	return nil
}

// prepare loads or creates the checkpoint and resolves the agent for a
// submission.
func (h *Hub) prepare(ctx context.Context, threadID string, in Input) (*core.Checkpoint, agent.Agent, error) {
	cp, err := h.checkpoints.Load(ctx, threadID)
	switch {
	case errors.Is(err, core.ErrCheckpointNotFound):
		if in.Resume != nil {
			return nil, nil, fmt.Errorf("cannot resume unknown thread %s", threadID)
		}
		cp = core.NewCheckpoint(threadID, "")
	case err != nil:
		return nil, nil, fmt.Errorf("load checkpoint: %w", err)
	}

	if in.Resume != nil {
		ag, ok := h.GetAgent(cp.AgentID)
		if !ok {
			return nil, nil, fmt.Errorf("thread %s references unknown agent %q", threadID, cp.AgentID)
		}
		return cp, ag, nil
	}

	if cp.Suspended() {
		return nil, nil, fmt.Errorf("thread %s is suspended; resume or cancel it first", threadID)
	}

	agentID := in.AgentID
	if agentID == "" {
		agentID = cp.AgentID
	}
	if agentID == "" {
		agentID = h.opts.DefaultAgent
	}
	ag, ok := h.GetAgent(agentID)
	if !ok {
		return nil, nil, fmt.Errorf("agent %q not found", agentID)
	}

	cp.AgentID = agentID
	cp.State.Messages = append(cp.State.Messages, core.NewHumanMessage(in.Content))
	cp.Updated = time.Now().UTC()
	if err := h.checkpoints.Save(ctx, cp); err != nil {
		return nil, nil, fmt.Errorf("save checkpoint: %w", err)
	}
	return cp, ag, nil
}

func (h *Hub) acquire(threadID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inFlight[threadID] {
		return false
	}
	h.inFlight[threadID] = true
	return true
}

func (h *Hub) release(threadID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.inFlight, threadID)
}
