package hitl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/logging"
	"github.com/agenthub/agenthub/oracle"
	"github.com/agenthub/agenthub/tool"
)

// Options configures broker execution.
type Options struct {
	// Instructions is the system prompt for the tool-calling oracle.
	Instructions string

	// DescriptionPrefix opens every pending-approval description, combined
	// with the tool name and arguments.
	DescriptionPrefix string

	// MaxIterations bounds oracle round trips per turn so a misbehaving
	// oracle cannot loop forever.
	MaxIterations int

	// Logger receives broker transition and failure logs.
	Logger logging.Logger
}

// Broker drives a tool-calling turn with per-tool human review. It is
// stateless across calls; all per-thread memory lives in the checkpoint.
type Broker struct {
	oracle      oracle.Oracle
	tools       *tool.Registry
	policy      Policy
	checkpoints core.CheckpointStore
	opts        Options
	logger      logging.Logger
}

// New creates a Broker over the given oracle, tool registry and policy.
func New(
	o oracle.Oracle,
	tools *tool.Registry,
	policy Policy,
	checkpoints core.CheckpointStore,
	optFns ...func(o *Options),
) *Broker {
	opts := Options{
		Instructions:      "You are a helpful assistant. Use the available tools when they help answer the request.",
		DescriptionPrefix: "Tool execution pending approval",
		MaxIterations:     10,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 10
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Broker{
		oracle:      o,
		tools:       tools,
		policy:      policy,
		checkpoints: checkpoints,
		opts:        opts,
		logger:      opts.Logger,
	}
}

// Run executes one turn of the tool loop. It returns with the checkpoint
// either idle (turn complete) or suspended (decisions outstanding).
func (b *Broker) Run(ctx context.Context, cp *core.Checkpoint, emit chan<- core.Event) error {
	if cp.Suspended() {
		return fmt.Errorf("thread %s is suspended awaiting review", cp.ThreadID)
	}
	return b.loop(ctx, cp, emit)
}

// Resume validates and applies a decision set to a suspended thread, then
// continues the tool loop from the suspension point. Validation failures
// leave the thread suspended and unchanged.
func (b *Broker) Resume(ctx context.Context, cp *core.Checkpoint, payload core.ResumePayload, emit chan<- core.Event) error {
	digest, err := decisionDigest(payload.Decisions)
	if err != nil {
		return fmt.Errorf("encode decisions: %w", err)
	}

	if !cp.Suspended() {
		if digest == cp.ResumeDigest && cp.ResumeDigest != "" {
			// Replay of an already-applied decision set: the approved side
			// effects must not run again.
			b.logger.Info("ignoring replayed resume", "thread_id", cp.ThreadID)
			return nil
		}
		return fmt.Errorf("thread %s is not suspended", cp.ThreadID)
	}

	if err := validateDecisions(payload.Decisions, cp.PendingActions, cp.PendingConfigs); err != nil {
		return err
	}
	pending, err := outstandingCalls(cp)
	if err != nil {
		return err
	}

	msgs := make([]core.Message, 0, len(payload.Decisions))
	for i, d := range payload.Decisions {
		call := pending[i]
		var content string
		switch d.Type {
		case core.DecisionApprove:
			content = b.execute(ctx, call)
		case core.DecisionEdit:
			edited := core.ToolCall{ID: call.ID, Name: d.EditedAction.Name, Args: d.EditedAction.Args}
			content = b.execute(ctx, edited)
		case core.DecisionReject:
			content = fmt.Sprintf("Tool call %q was rejected by the reviewer and was not executed.", call.Name)
		}
		msgs = append(msgs, core.NewToolMessage(content, call.ID))
	}

	cp.ClearPending()
	cp.ResumeDigest = digest
	if err := b.appendAndSave(ctx, cp, emit, msgs...); err != nil {
		return err
	}
	return b.loop(ctx, cp, emit)
}

// loop alternates oracle calls and tool execution until the oracle answers
// without tool calls or a reviewed call suspends the turn.
func (b *Broker) loop(ctx context.Context, cp *core.Checkpoint, emit chan<- core.Event) error {
	for i := 0; i < b.opts.MaxIterations; i++ {
		res, err := oracle.CollectWith(ctx, b.oracle, oracle.Request{
			Instructions: b.opts.Instructions,
			Messages:     cp.State.Messages,
			Tools:        b.tools.Definitions(),
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

		ai := core.NewAIMessage(res.Text)
		ai.ToolCalls = res.ToolCalls
		ai.ResponseMetadata = res.Metadata
		if err := b.appendAndSave(ctx, cp, emit, ai); err != nil {
			return err
		}
		if len(res.ToolCalls) == 0 {
			return nil
		}

		var (
			requests []core.ActionRequest
			configs  []core.ReviewConfig
		)
		for _, call := range res.ToolCalls {
			if !b.policy.Requires(call.Name) {
				msg := core.NewToolMessage(b.execute(ctx, call), call.ID)
				if err := b.appendAndSave(ctx, cp, emit, msg); err != nil {
					return err
				}
				continue
			}
			rule := b.policy[call.Name]
			requests = append(requests, core.ActionRequest{
				Name:        call.Name,
				Args:        call.Args,
				Description: describeAction(b.opts.DescriptionPrefix, call.Name, call.Args),
			})
			configs = append(configs, core.ReviewConfig{
				ActionName:       call.Name,
				AllowedDecisions: rule.Decisions(),
			})
		}

		if len(requests) > 0 {
			descriptions := make([]string, 0, len(requests))
			for _, r := range requests {
				descriptions = append(descriptions, r.Description)
			}
			interrupt := core.NewInterruptMessage(strings.Join(descriptions, "\n"), requests, configs)
			cp.Suspend(requests, configs)
			if err := b.appendAndSave(ctx, cp, emit, interrupt); err != nil {
				return err
			}
			b.logger.Info("thread suspended for review",
				"thread_id", cp.ThreadID, "pending", len(requests))
			return nil
		}
	}
	return fmt.Errorf("tool loop exceeded %d iterations", b.opts.MaxIterations)
}

// execute dispatches one tool call. Failures are captured into the result
// text so a broken tool does not abort the turn.
func (b *Broker) execute(ctx context.Context, call core.ToolCall) string {
	start := time.Now()
	result, err := b.tools.Dispatch(ctx, call)
	if err != nil {
		b.logger.Error("tool call failed", "tool", call.Name, "error", err)
		return fmt.Sprintf("Error: %v", err)
	}
	b.logger.Debug("tool call succeeded", "tool", call.Name, "duration", time.Since(start))
	return renderResult(result)
}

// appendAndSave applies messages to state, persists the checkpoint, then
// emits them. The save-before-emit order means consumers never see a message
// that could be lost by a crash.
func (b *Broker) appendAndSave(ctx context.Context, cp *core.Checkpoint, emit chan<- core.Event, msgs ...core.Message) error {
	cp.State.Messages = append(cp.State.Messages, msgs...)
	cp.Updated = time.Now().UTC()
	if err := b.checkpoints.Save(ctx, cp); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	for _, m := range msgs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case emit <- core.NewMessageEvent(m):
		}
	}
	return nil
}

// validateDecisions rejects any payload that does not match the outstanding
// requests one-to-one, in order, within the allowed decision sets.
func validateDecisions(decisions []core.Decision, actions []core.ActionRequest, configs []core.ReviewConfig) error {
	if len(decisions) != len(actions) {
		return fmt.Errorf("expected %d decisions, got %d", len(actions), len(decisions))
	}
	for i, d := range decisions {
		cfg := configs[i]
		if !cfg.Allows(d.Type) {
			return fmt.Errorf("decision %d: %q is not allowed for tool %q", i, d.Type, cfg.ActionName)
		}
		if d.Type == core.DecisionEdit && d.EditedAction == nil {
			return fmt.Errorf("decision %d: edit requires an edited_action", i)
		}
	}
	return nil
}

// outstandingCalls recovers the suspended tool calls: the unanswered calls of
// the newest AI message, positionally matched against the pending actions.
func outstandingCalls(cp *core.Checkpoint) ([]core.ToolCall, error) {
	msgs := cp.State.Messages
	aiIdx := -1
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == core.MessageTypeAI {
			aiIdx = i
			break
		}
	}
	if aiIdx == -1 {
		return nil, fmt.Errorf("suspended thread %s has no AI message", cp.ThreadID)
	}

	answered := make(map[string]bool)
	for _, m := range msgs[aiIdx+1:] {
		if m.Type == core.MessageTypeTool {
			answered[m.ToolCallID] = true
		}
	}

	var pending []core.ToolCall
	for _, call := range msgs[aiIdx].ToolCalls {
		if !answered[call.ID] {
			pending = append(pending, call)
		}
	}
	if len(pending) != len(cp.PendingActions) {
		return nil, fmt.Errorf("thread %s has %d unanswered tool calls but %d pending actions",
			cp.ThreadID, len(pending), len(cp.PendingActions))
	}
	for i, call := range pending {
		if call.Name != cp.PendingActions[i].Name {
			return nil, fmt.Errorf("thread %s pending action %d names %q but tool call is %q",
				cp.ThreadID, i, cp.PendingActions[i].Name, call.Name)
		}
	}
	return pending, nil
}

// decisionDigest fingerprints a decision set for replay detection.
func decisionDigest(decisions []core.Decision) (string, error) {
	raw, err := json.Marshal(decisions)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// renderResult turns a tool result into tool-message text. Strings pass
// through; everything else is JSON encoded.
func renderResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}
