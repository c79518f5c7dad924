package hitl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthub/agenthub/checkpoint"
	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/oracle"
	"github.com/agenthub/agenthub/tool"
)

// countingTool records invocations so tests can prove execution (or its
// absence) per decision.
func countingTool(name string, count *int, lastArgs *map[string]any) *tool.FunctionTool {
	return tool.NewFunctionTool(
		name, "test tool",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, args map[string]any) (any, error) {
			*count++
			if lastArgs != nil {
				*lastArgs = args
			}
			return "executed " + name, nil
		},
	)
}

func collectEvents(t *testing.T, run func(emit chan<- core.Event) error) ([]core.Event, error) {
	t.Helper()
	emit := make(chan core.Event)
	done := make(chan struct{})
	var events []core.Event
	go func() {
		defer close(done)
		for ev := range emit {
			events = append(events, ev)
		}
	}()
	err := run(emit)
	close(emit)
	<-done
	return events, err
}

func messagesOf(events []core.Event) []core.Message {
	var msgs []core.Message
	for _, ev := range events {
		if ev.Kind == core.EventMessage {
			msgs = append(msgs, *ev.Message)
		}
	}
	return msgs
}

func toolCall(id, name string, args map[string]any) core.ToolCall {
	return core.ToolCall{ID: id, Name: name, Args: args}
}

func TestRun_UnreviewedToolExecutesImmediately(t *testing.T) {
	var reads int
	o := oracle.NewScripted(
		oracle.Reply{ToolCalls: []core.ToolCall{toolCall("c1", "read_data", map[string]any{"table_name": "users"})}},
		oracle.Reply{Text: "Here is the data."},
	)
	b := New(o, tool.NewRegistry(countingTool("read_data", &reads, nil)),
		Policy{"read_data": NoReview()}, checkpoint.NewInMemoryStore())

	cp := core.NewCheckpoint("t1", "hitl-agent")
	cp.State.Messages = append(cp.State.Messages, core.NewHumanMessage("show me the users"))

	events, err := collectEvents(t, func(emit chan<- core.Event) error {
		return b.Run(context.Background(), cp, emit)
	})
	require.NoError(t, err)

	assert.Equal(t, 1, reads)
	assert.False(t, cp.Suspended())

	msgs := messagesOf(events)
	require.Len(t, msgs, 3) // AI w/ tool call, tool result, final AI
	assert.Equal(t, core.MessageTypeTool, msgs[1].Type)
	assert.Equal(t, "executed read_data", msgs[1].Content)
	assert.Equal(t, "c1", msgs[1].ToolCallID)
	assert.Equal(t, "Here is the data.", msgs[2].Content)
}

func TestRun_ReviewedToolSuspends(t *testing.T) {
	var writes int
	o := oracle.NewScripted(
		oracle.Reply{ToolCalls: []core.ToolCall{
			toolCall("c1", "write_file", map[string]any{"filename": "a.txt", "content": "hi"}),
		}},
	)
	cps := checkpoint.NewInMemoryStore()
	b := New(o, tool.NewRegistry(countingTool("write_file", &writes, nil)),
		Policy{"write_file": ReviewAll()}, cps)

	cp := core.NewCheckpoint("t1", "hitl-agent")
	cp.State.Messages = append(cp.State.Messages, core.NewHumanMessage("write a file"))

	events, err := collectEvents(t, func(emit chan<- core.Event) error {
		return b.Run(context.Background(), cp, emit)
	})
	require.NoError(t, err)

	assert.Zero(t, writes, "reviewed tools must not run before a decision")
	require.True(t, cp.Suspended())
	require.Len(t, cp.PendingActions, 1)
	assert.Equal(t, "write_file", cp.PendingActions[0].Name)
	assert.Contains(t, cp.PendingActions[0].Description, "Tool execution pending approval: write_file")
	assert.ElementsMatch(t,
		[]core.DecisionType{core.DecisionApprove, core.DecisionReject, core.DecisionEdit},
		cp.PendingConfigs[0].AllowedDecisions)

	msgs := messagesOf(events)
	require.Len(t, msgs, 2)
	assert.Equal(t, core.MessageTypeInterrupt, msgs[1].Type)
	require.NoError(t, msgs[1].Validate())

	// Suspension must be durable.
	saved, err := cps.Load(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, saved.Suspended())
}

func suspendedBroker(t *testing.T, writes *int, lastArgs *map[string]any, extraReplies ...oracle.Reply) (*Broker, *core.Checkpoint) {
	t.Helper()
	o := oracle.NewScripted(
		oracle.Reply{ToolCalls: []core.ToolCall{
			toolCall("c1", "write_file", map[string]any{"filename": "a.txt", "content": "hi"}),
		}},
	)
	o.Append(extraReplies...)
	cps := checkpoint.NewInMemoryStore()
	b := New(o, tool.NewRegistry(countingTool("write_file", writes, lastArgs)),
		Policy{"write_file": ReviewAll()}, cps)

	cp := core.NewCheckpoint("t1", "hitl-agent")
	cp.State.Messages = append(cp.State.Messages, core.NewHumanMessage("write a file"))
	_, err := collectEvents(t, func(emit chan<- core.Event) error {
		return b.Run(context.Background(), cp, emit)
	})
	require.NoError(t, err)
	require.True(t, cp.Suspended())
	return b, cp
}

func TestResume_Approve(t *testing.T) {
	var writes int
	b, cp := suspendedBroker(t, &writes, nil, oracle.Reply{Text: "File written."})

	payload := core.ResumePayload{Decisions: []core.Decision{{Type: core.DecisionApprove}}}
	events, err := collectEvents(t, func(emit chan<- core.Event) error {
		return b.Resume(context.Background(), cp, payload, emit)
	})
	require.NoError(t, err)

	assert.Equal(t, 1, writes)
	assert.False(t, cp.Suspended())
	assert.NotEmpty(t, cp.ResumeDigest)

	msgs := messagesOf(events)
	require.Len(t, msgs, 2)
	assert.Equal(t, core.MessageTypeTool, msgs[0].Type)
	assert.Equal(t, "executed write_file", msgs[0].Content)
	assert.Equal(t, "c1", msgs[0].ToolCallID)
	assert.Equal(t, "File written.", msgs[1].Content)
}

func TestResume_RejectSkipsExecution(t *testing.T) {
	var writes int
	b, cp := suspendedBroker(t, &writes, nil, oracle.Reply{Text: "Understood."})

	payload := core.ResumePayload{Decisions: []core.Decision{{Type: core.DecisionReject}}}
	events, err := collectEvents(t, func(emit chan<- core.Event) error {
		return b.Resume(context.Background(), cp, payload, emit)
	})
	require.NoError(t, err)

	assert.Zero(t, writes, "rejected calls never execute")
	msgs := messagesOf(events)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0].Content, "rejected")
	assert.Equal(t, "c1", msgs[0].ToolCallID)
}

func TestResume_EditUsesReplacementArgs(t *testing.T) {
	var writes int
	var lastArgs map[string]any
	b, cp := suspendedBroker(t, &writes, &lastArgs, oracle.Reply{Text: "Done."})

	payload := core.ResumePayload{Decisions: []core.Decision{{
		Type: core.DecisionEdit,
		EditedAction: &core.EditedAction{
			Name: "write_file",
			Args: map[string]any{"filename": "b.txt", "content": "edited"},
		},
	}}}
	_, err := collectEvents(t, func(emit chan<- core.Event) error {
		return b.Resume(context.Background(), cp, payload, emit)
	})
	require.NoError(t, err)

	assert.Equal(t, 1, writes)
	assert.Equal(t, "b.txt", lastArgs["filename"])
	assert.Equal(t, "edited", lastArgs["content"])
}

func TestResume_DecisionCountMismatchKeepsSuspension(t *testing.T) {
	var writes int
	b, cp := suspendedBroker(t, &writes, nil)

	payload := core.ResumePayload{Decisions: []core.Decision{
		{Type: core.DecisionApprove}, {Type: core.DecisionApprove},
	}}
	_, err := collectEvents(t, func(emit chan<- core.Event) error {
		return b.Resume(context.Background(), cp, payload, emit)
	})
	require.Error(t, err)
	assert.Zero(t, writes)
	assert.True(t, cp.Suspended(), "invalid input leaves the thread suspended")
}

func TestResume_DisallowedDecisionRejected(t *testing.T) {
	var runs int
	o := oracle.NewScripted(
		oracle.Reply{ToolCalls: []core.ToolCall{
			toolCall("c1", "execute_sql", map[string]any{"query": "SELECT 1"}),
		}},
	)
	b := New(o, tool.NewRegistry(countingTool("execute_sql", &runs, nil)),
		Policy{"execute_sql": ReviewOnly(core.DecisionApprove, core.DecisionReject)},
		checkpoint.NewInMemoryStore())

	cp := core.NewCheckpoint("t1", "hitl-agent")
	cp.State.Messages = append(cp.State.Messages, core.NewHumanMessage("run a query"))
	_, err := collectEvents(t, func(emit chan<- core.Event) error {
		return b.Run(context.Background(), cp, emit)
	})
	require.NoError(t, err)
	require.True(t, cp.Suspended())

	payload := core.ResumePayload{Decisions: []core.Decision{{
		Type:         core.DecisionEdit,
		EditedAction: &core.EditedAction{Name: "execute_sql", Args: map[string]any{"query": "SELECT 2"}},
	}}}
	_, err = collectEvents(t, func(emit chan<- core.Event) error {
		return b.Resume(context.Background(), cp, payload, emit)
	})
	require.Error(t, err)
	assert.Zero(t, runs)
	assert.True(t, cp.Suspended())
}

func TestResume_ReplayDoesNotReExecute(t *testing.T) {
	var writes int
	b, cp := suspendedBroker(t, &writes, nil, oracle.Reply{Text: "File written."})

	payload := core.ResumePayload{Decisions: []core.Decision{{Type: core.DecisionApprove}}}
	_, err := collectEvents(t, func(emit chan<- core.Event) error {
		return b.Resume(context.Background(), cp, payload, emit)
	})
	require.NoError(t, err)
	require.Equal(t, 1, writes)

	events, err := collectEvents(t, func(emit chan<- core.Event) error {
		return b.Resume(context.Background(), cp, payload, emit)
	})
	require.NoError(t, err, "replaying the same decisions is an idempotent no-op")
	assert.Equal(t, 1, writes, "approved side effects must not run twice")
	assert.Empty(t, events)
}

func TestResume_MultipleDecisionsInOrder(t *testing.T) {
	var writes, queries int
	o := oracle.NewScripted(
		oracle.Reply{ToolCalls: []core.ToolCall{
			toolCall("c1", "write_file", map[string]any{"filename": "a.txt", "content": "x"}),
			toolCall("c2", "execute_sql", map[string]any{"query": "SELECT 1"}),
		}},
		oracle.Reply{Text: "All handled."},
	)
	b := New(o, tool.NewRegistry(
		countingTool("write_file", &writes, nil),
		countingTool("execute_sql", &queries, nil),
	), Policy{
		"write_file":  ReviewAll(),
		"execute_sql": ReviewOnly(core.DecisionApprove, core.DecisionReject),
	}, checkpoint.NewInMemoryStore())

	cp := core.NewCheckpoint("t1", "hitl-agent")
	cp.State.Messages = append(cp.State.Messages, core.NewHumanMessage("do both"))
	_, err := collectEvents(t, func(emit chan<- core.Event) error {
		return b.Run(context.Background(), cp, emit)
	})
	require.NoError(t, err)
	require.Len(t, cp.PendingActions, 2)

	payload := core.ResumePayload{Decisions: []core.Decision{
		{Type: core.DecisionReject},
		{Type: core.DecisionApprove},
	}}
	events, err := collectEvents(t, func(emit chan<- core.Event) error {
		return b.Resume(context.Background(), cp, payload, emit)
	})
	require.NoError(t, err)

	assert.Zero(t, writes, "first decision was reject")
	assert.Equal(t, 1, queries, "second decision was approve")

	msgs := messagesOf(events)
	require.Len(t, msgs, 3) // two tool results plus the final AI message
	assert.Equal(t, "c1", msgs[0].ToolCallID)
	assert.Contains(t, msgs[0].Content, "rejected")
	assert.Equal(t, "c2", msgs[1].ToolCallID)
	assert.Equal(t, "executed execute_sql", msgs[1].Content)
}

func TestRun_MixedReviewExecutesUnreviewedFirst(t *testing.T) {
	var reads, writes int
	o := oracle.NewScripted(
		oracle.Reply{ToolCalls: []core.ToolCall{
			toolCall("c1", "write_file", map[string]any{"filename": "a.txt", "content": "x"}),
			toolCall("c2", "read_data", map[string]any{"table_name": "users"}),
		}},
	)
	b := New(o, tool.NewRegistry(
		countingTool("write_file", &writes, nil),
		countingTool("read_data", &reads, nil),
	), Policy{"write_file": ReviewAll(), "read_data": NoReview()},
		checkpoint.NewInMemoryStore())

	cp := core.NewCheckpoint("t1", "hitl-agent")
	cp.State.Messages = append(cp.State.Messages, core.NewHumanMessage("do both"))
	_, err := collectEvents(t, func(emit chan<- core.Event) error {
		return b.Run(context.Background(), cp, emit)
	})
	require.NoError(t, err)

	assert.Equal(t, 1, reads, "unreviewed call runs before suspension")
	assert.Zero(t, writes)
	require.True(t, cp.Suspended())
	require.Len(t, cp.PendingActions, 1)
	assert.Equal(t, "write_file", cp.PendingActions[0].Name)
}
