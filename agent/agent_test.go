package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthub/agenthub/checkpoint"
	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/oracle"
)

func TestChatAgent_Run(t *testing.T) {
	o := oracle.NewScripted(oracle.Reply{Text: "Hi!"})
	cps := checkpoint.NewInMemoryStore()
	a := NewChatAgent("chatbot", o, cps)

	cp := core.NewCheckpoint("t1", "chatbot")
	cp.State.Messages = append(cp.State.Messages, core.NewHumanMessage("Hello"))

	emit := make(chan core.Event, 32)
	err := a.Run(context.Background(), cp, emit)
	close(emit)
	require.NoError(t, err)

	var tokens string
	var msgs []core.Message
	for ev := range emit {
		switch ev.Kind {
		case core.EventToken:
			tokens += ev.Token
		case core.EventMessage:
			msgs = append(msgs, *ev.Message)
		}
	}
	assert.Equal(t, "Hi!", tokens)
	require.Len(t, msgs, 1)
	assert.Equal(t, core.MessageTypeAI, msgs[0].Type)

	saved, err := cps.Load(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, saved.State.Messages, 2)
	assert.Equal(t, "Hi!", saved.State.Messages[1].Content)
}

func TestChatAgent_ResumeUnsupported(t *testing.T) {
	a := NewChatAgent("chatbot", oracle.NewScripted(), checkpoint.NewInMemoryStore())
	err := a.Resume(context.Background(), core.NewCheckpoint("t1", "chatbot"), core.ResumePayload{}, nil)
	assert.True(t, errors.Is(err, ErrNotSuspendable))
}
