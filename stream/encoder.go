package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/agenthub/agenthub/core"
)

// Sentinel is the literal payload closing every stream.
const Sentinel = "[DONE]"

// payload is the wire shape of one event.
type payload struct {
	Type    string `json:"type"`
	Content any    `json:"content"`
}

// Encoder writes events in text/event-stream framing. It flushes after every
// event when the underlying writer supports it, so tokens reach the client as
// they are produced.
type Encoder struct {
	w       io.Writer
	flusher http.Flusher
}

// NewEncoder wraps a writer. Pass an http.ResponseWriter to get per-event
// flushing.
func NewEncoder(w io.Writer) *Encoder {
	e := &Encoder{w: w}
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
	}
	return e
}

// Encode writes one event. A message that fails to serialize is replaced by
// an error event describing the failure; only transport-level write failures
// return an error.
func (e *Encoder) Encode(ev core.Event) error {
	p, err := toPayload(ev)
	if err != nil {
		p = payload{Type: string(core.EventError), Content: fmt.Sprintf("encode message: %v", err)}
	}
	raw, err := json.Marshal(p)
	if err != nil {
		// The fallback payload is plain strings; getting here means the
		// original content was unserializable twice over.
		raw, _ = json.Marshal(payload{Type: string(core.EventError), Content: "encode event failed"})
	}
	return e.writeData(raw)
}

// Done writes the terminating sentinel.
func (e *Encoder) Done() error {
	return e.writeData([]byte(Sentinel))
}

// Pump drains a turn's event and error channels into the stream: every event
// is encoded, a terminal error becomes a final error event, and the sentinel
// is always written last. It returns the first transport-level write failure.
func (e *Encoder) Pump(events <-chan core.Event, errs <-chan error) error {
	for ev := range events {
		if err := e.Encode(ev); err != nil {
			return err
		}
	}
	select {
	case err, ok := <-errs:
		if ok && err != nil {
			if encErr := e.Encode(core.NewErrorEvent(err.Error())); encErr != nil {
				return encErr
			}
		}
	default:
	}
	return e.Done()
}

func toPayload(ev core.Event) (payload, error) {
	switch ev.Kind {
	case core.EventToken:
		return payload{Type: string(core.EventToken), Content: ev.Token}, nil
	case core.EventMessage:
		// Serialize the message up front so a bad message surfaces here,
		// isolated, instead of poisoning the envelope write.
		raw, err := json.Marshal(ev.Message)
		if err != nil {
			return payload{}, err
		}
		return payload{Type: string(core.EventMessage), Content: json.RawMessage(raw)}, nil
	case core.EventError:
		return payload{Type: string(core.EventError), Content: ev.Err}, nil
	default:
		return payload{}, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

func (e *Encoder) writeData(raw []byte) error {
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", raw); err != nil {
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
