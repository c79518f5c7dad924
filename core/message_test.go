package core

import (
	"encoding/json"
	"testing"
)

func TestMessage_Constructors(t *testing.T) {
	h := NewHumanMessage("hi")
	if h.Type != MessageTypeHuman || h.Content != "hi" {
		t.Fatalf("NewHumanMessage malformed: %+v", h)
	}

	ai := NewAIMessage("hello")
	if ai.Type != MessageTypeAI || ai.HasToolCalls() {
		t.Fatalf("NewAIMessage malformed: %+v", ai)
	}

	tool := NewToolMessage("result", "call-1")
	if tool.Type != MessageTypeTool || tool.ToolCallID != "call-1" {
		t.Fatalf("NewToolMessage malformed: %+v", tool)
	}

	intr := NewInterruptMessage(
		"Tool execution pending approval",
		[]ActionRequest{{Name: "write_file"}},
		[]ReviewConfig{{ActionName: "write_file", AllowedDecisions: []DecisionType{DecisionApprove}}},
	)
	if intr.Type != MessageTypeInterrupt || len(intr.ActionRequests) != 1 {
		t.Fatalf("NewInterruptMessage malformed: %+v", intr)
	}
}

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"human ok", NewHumanMessage("q"), false},
		{"ai with calls ok", Message{Type: MessageTypeAI, ToolCalls: []ToolCall{{ID: "c1", Name: "f"}}}, false},
		{"tool missing call id", Message{Type: MessageTypeTool, Content: "r"}, true},
		{"interrupt mismatched configs", Message{
			Type:           MessageTypeInterrupt,
			ActionRequests: []ActionRequest{{Name: "a"}, {Name: "b"}},
			ReviewConfigs:  []ReviewConfig{{ActionName: "a"}},
		}, true},
		{"unknown type", Message{Type: "system"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessage_JSONRoundTrip(t *testing.T) {
	in := Message{
		Type:    MessageTypeAI,
		Content: "checking the database",
		ToolCalls: []ToolCall{
			{ID: "call-1", Name: "execute_sql", Args: map[string]any{"query": "SELECT 1"}},
		},
		ResponseMetadata: map[string]any{"finish_reason": "tool_calls"},
	}

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out Message
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out.Type != in.Type || out.Content != in.Content {
		t.Fatalf("round trip lost fields: %+v", out)
	}
	if len(out.ToolCalls) != 1 || out.ToolCalls[0].ID != "call-1" || out.ToolCalls[0].Name != "execute_sql" {
		t.Fatalf("round trip lost tool calls: %+v", out.ToolCalls)
	}
}

func TestReviewConfig_Allows(t *testing.T) {
	cfg := ReviewConfig{ActionName: "execute_sql", AllowedDecisions: []DecisionType{DecisionApprove, DecisionReject}}
	if !cfg.Allows(DecisionApprove) || !cfg.Allows(DecisionReject) {
		t.Fatal("expected approve and reject to be allowed")
	}
	if cfg.Allows(DecisionEdit) {
		t.Fatal("edit should not be allowed")
	}
}
