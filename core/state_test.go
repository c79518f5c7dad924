package core

import "testing"

func TestState_ApplyMergeSemantics(t *testing.T) {
	s := &State{Messages: []Message{NewHumanMessage("q")}}

	s.Apply(Delta{
		Question:  StringPtr("q"),
		Documents: DocumentsPtr([]Document{{Content: "doc a"}, {Content: "doc b"}}),
	})
	if s.Question != "q" || len(s.Documents) != 2 {
		t.Fatalf("scalar overwrite failed: %+v", s)
	}

	// Documents overwrite, messages append.
	s.Apply(Delta{
		AppendMessages: []Message{NewAIMessage("answer")},
		Documents:      DocumentsPtr([]Document{{Content: "doc c"}}),
		Generation:     StringPtr("answer"),
		WebSearch:      BoolPtr(true),
	})
	if len(s.Messages) != 2 {
		t.Fatalf("messages should append, got %d", len(s.Messages))
	}
	if len(s.Documents) != 1 || s.Documents[0].Content != "doc c" {
		t.Fatalf("documents should overwrite, got %+v", s.Documents)
	}
	if s.Generation != "answer" || !s.WebSearch {
		t.Fatalf("generation/web_search not applied: %+v", s)
	}

	// Empty delta changes nothing.
	before := len(s.Messages)
	s.Apply(Delta{})
	if len(s.Messages) != before || s.Generation != "answer" {
		t.Fatalf("empty delta mutated state: %+v", s)
	}
}

func TestState_LastHumanQuestion(t *testing.T) {
	s := &State{}
	if got := s.LastHumanQuestion(); got != "" {
		t.Fatalf("empty state should yield empty question, got %q", got)
	}

	s.Messages = append(s.Messages, NewHumanMessage("what is agentic rag?"))
	if got := s.LastHumanQuestion(); got != "what is agentic rag?" {
		t.Fatalf("unexpected question %q", got)
	}

	// Latest message not human -> degenerate empty question, not an error.
	s.Messages = append(s.Messages, NewAIMessage("an answer"))
	if got := s.LastHumanQuestion(); got != "" {
		t.Fatalf("expected empty question after AI message, got %q", got)
	}
}

func TestState_Clone(t *testing.T) {
	s := &State{
		Messages:  []Message{NewHumanMessage("q")},
		Documents: []Document{{Content: "d"}},
		Question:  "q",
	}
	c := s.Clone()
	c.Messages = append(c.Messages, NewAIMessage("a"))
	c.Documents[0].Content = "mutated"

	if len(s.Messages) != 1 {
		t.Fatalf("clone shares message slice")
	}
	if s.Documents[0].Content != "d" {
		t.Fatalf("clone shares document backing array")
	}
}

func TestCheckpoint_SuspendAndClear(t *testing.T) {
	cp := NewCheckpoint("thread-1", "hitl-agent")
	if cp.Suspended() {
		t.Fatal("fresh checkpoint should not be suspended")
	}

	cp.Suspend(
		[]ActionRequest{{Name: "write_file"}},
		[]ReviewConfig{{ActionName: "write_file", AllowedDecisions: []DecisionType{DecisionApprove, DecisionReject, DecisionEdit}}},
	)
	if !cp.Suspended() || len(cp.PendingActions) != 1 {
		t.Fatalf("suspend did not record pending work: %+v", cp)
	}

	cp.ClearPending()
	if cp.Suspended() || cp.PendingActions != nil {
		t.Fatalf("clear did not void pending work: %+v", cp)
	}
}

func TestCheckpoint_Clone(t *testing.T) {
	cp := NewCheckpoint("thread-1", "chatbot")
	cp.State.Messages = []Message{NewHumanMessage("q")}
	cp.Suspend([]ActionRequest{{Name: "a"}}, []ReviewConfig{{ActionName: "a"}})

	clone := cp.Clone()
	clone.State.Messages = append(clone.State.Messages, NewAIMessage("x"))
	clone.PendingActions[0].Name = "b"

	if len(cp.State.Messages) != 1 {
		t.Fatal("clone shares state messages")
	}
	if cp.PendingActions[0].Name != "a" {
		t.Fatal("clone shares pending actions")
	}
}
