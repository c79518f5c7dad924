package core

// State is the unit of execution memory for one conversation thread. It is
// exclusively owned by the control loop during a turn and by the checkpoint
// store between turns; nothing else mutates it.
//
// Question, Documents, Generation and WebSearch are scratch fields scoped to
// a single routing decision: deltas overwrite them, never merge. Messages is
// append-only within a turn.
type State struct {
	Messages   []Message  `json:"messages"`
	Question   string     `json:"question"`
	Documents  []Document `json:"documents,omitempty"`
	Generation string     `json:"generation,omitempty"`
	WebSearch  bool       `json:"web_search,omitempty"`
}

// Delta is the partial state a node returns. Nil pointers mean "unchanged";
// AppendMessages always appends, matching the message-list merge rule.
type Delta struct {
	AppendMessages []Message
	Question       *string
	Documents      *[]Document
	Generation     *string
	WebSearch      *bool
}

// Apply merges a delta into the state: scalar fields overwrite when set,
// messages append.
func (s *State) Apply(d Delta) {
	s.Messages = append(s.Messages, d.AppendMessages...)
	if d.Question != nil {
		s.Question = *d.Question
	}
	if d.Documents != nil {
		s.Documents = *d.Documents
	}
	if d.Generation != nil {
		s.Generation = *d.Generation
	}
	if d.WebSearch != nil {
		s.WebSearch = *d.WebSearch
	}
}

// LastHumanQuestion extracts the question for a new turn: the content of the
// latest message when it is human input, otherwise the empty string. The
// empty string is a deliberate degenerate case, not an error.
func (s *State) LastHumanQuestion() string {
	if len(s.Messages) == 0 {
		return ""
	}
	last := s.Messages[len(s.Messages)-1]
	if last.Type != MessageTypeHuman {
		return ""
	}
	return last.Content
}

// LastMessage returns the newest message, or a zero Message when empty.
func (s *State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Clone returns a deep copy safe for independent mutation.
func (s *State) Clone() *State {
	c := &State{
		Question:   s.Question,
		Generation: s.Generation,
		WebSearch:  s.WebSearch,
	}
	c.Messages = append([]Message(nil), s.Messages...)
	c.Documents = append([]Document(nil), s.Documents...)
	return c
}

// StringPtr, DocumentsPtr and BoolPtr build Delta fields without temporary
// variables at call sites.
func StringPtr(v string) *string            { return &v }
func DocumentsPtr(v []Document) *[]Document { return &v }
func BoolPtr(v bool) *bool                  { return &v }
