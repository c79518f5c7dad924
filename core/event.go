package core

// EventKind discriminates the units multiplexed onto a turn's event stream.
type EventKind string

const (
	// EventToken is an incremental text fragment from the active generation
	// step. Tokens are only emitted while an AI message is being produced.
	EventToken EventKind = "token"
	// EventMessage is a fully-formed message appended to state by a
	// completed node.
	EventMessage EventKind = "message"
	// EventError reports a failure encoding or producing a single message.
	// It does not terminate the stream.
	EventError EventKind = "error"
)

// Event is the unit of communication between the control loop and stream
// consumers. Exactly one payload field is set, matching Kind.
type Event struct {
	Kind    EventKind
	Token   string
	Message *Message
	Err     string
}

// NewTokenEvent wraps an incremental generation fragment.
func NewTokenEvent(token string) Event {
	return Event{Kind: EventToken, Token: token}
}

// NewMessageEvent wraps a completed message.
func NewMessageEvent(m Message) Event {
	return Event{Kind: EventMessage, Message: &m}
}

// NewErrorEvent wraps a per-message failure description.
func NewErrorEvent(msg string) Event {
	return Event{Kind: EventError, Err: msg}
}
