package core

import (
	"fmt"

	"github.com/google/uuid"
)

// MessageType discriminates the closed set of message variants. Consumers
// should switch exhaustively on it; an unknown tag is a decoding error, not a
// fallback case.
type MessageType string

const (
	// MessageTypeHuman is verbatim user input.
	MessageTypeHuman MessageType = "human"
	// MessageTypeAI is model output, optionally carrying tool calls.
	MessageTypeAI MessageType = "ai"
	// MessageTypeTool is a tool result tied to a ToolCall by identifier.
	MessageTypeTool MessageType = "tool"
	// MessageTypeInterrupt is a pending-approval notice emitted when
	// execution suspends for human review.
	MessageTypeInterrupt MessageType = "interrupt"
)

// ToolCall is a tool invocation request emitted by the reasoning backend.
// It is immutable once emitted; the ID is unique within a turn and links the
// eventual tool message back to this call.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Message is one entry in a thread's conversation history. The Type tag
// decides which optional fields are meaningful:
//
//	human     -> Content
//	ai        -> Content, ToolCalls, ResponseMetadata
//	tool      -> Content, ToolCallID
//	interrupt -> Content, ActionRequests, ReviewConfigs
type Message struct {
	Type             MessageType     `json:"type"`
	Content          string          `json:"content"`
	ToolCalls        []ToolCall      `json:"tool_calls,omitempty"`
	ToolCallID       string          `json:"tool_call_id,omitempty"`
	ResponseMetadata map[string]any  `json:"response_metadata,omitempty"`
	ActionRequests   []ActionRequest `json:"action_requests,omitempty"`
	ReviewConfigs    []ReviewConfig  `json:"review_configs,omitempty"`
}

// NewHumanMessage wraps verbatim user text.
func NewHumanMessage(content string) Message {
	return Message{Type: MessageTypeHuman, Content: content}
}

// NewAIMessage wraps model output text.
func NewAIMessage(content string) Message {
	return Message{Type: MessageTypeAI, Content: content}
}

// NewToolMessage records a tool result answering the call identified by id.
func NewToolMessage(content, toolCallID string) Message {
	return Message{Type: MessageTypeTool, Content: content, ToolCallID: toolCallID}
}

// NewInterruptMessage announces suspended tool calls awaiting review. The
// requests and configs are positionally paired.
func NewInterruptMessage(content string, requests []ActionRequest, configs []ReviewConfig) Message {
	return Message{
		Type:           MessageTypeInterrupt,
		Content:        content,
		ActionRequests: requests,
		ReviewConfigs:  configs,
	}
}

// HasToolCalls reports whether an AI message requests tool execution.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// Validate checks the tag/field pairing invariants described on Message.
func (m Message) Validate() error {
	switch m.Type {
	case MessageTypeHuman, MessageTypeAI:
	case MessageTypeTool:
		if m.ToolCallID == "" {
			return fmt.Errorf("tool message missing tool_call_id")
		}
	case MessageTypeInterrupt:
		if len(m.ActionRequests) != len(m.ReviewConfigs) {
			return fmt.Errorf("interrupt message has %d action requests but %d review configs",
				len(m.ActionRequests), len(m.ReviewConfigs))
		}
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

// NewID generates a unique identifier for tool calls and threads.
func NewID() string { return uuid.NewString() }
