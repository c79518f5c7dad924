package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/agenthub/agenthub/core"
)

// Decoded is the parsed form of one event stream.
type Decoded struct {
	Events []core.Event
	Done   bool
}

// Decode parses a text/event-stream body back into events. It is the inverse
// of Encoder and exists for clients and tests.
func Decode(r io.Reader) (Decoded, error) {
	var out Decoded
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			return out, fmt.Errorf("malformed stream line %q", line)
		}
		if data == Sentinel {
			out.Done = true
			continue
		}

		var p struct {
			Type    string          `json:"type"`
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return out, fmt.Errorf("decode event: %w", err)
		}

		switch core.EventKind(p.Type) {
		case core.EventToken:
			var token string
			if err := json.Unmarshal(p.Content, &token); err != nil {
				return out, fmt.Errorf("decode token: %w", err)
			}
			out.Events = append(out.Events, core.NewTokenEvent(token))
		case core.EventMessage:
			var msg core.Message
			if err := json.Unmarshal(p.Content, &msg); err != nil {
				return out, fmt.Errorf("decode message: %w", err)
			}
			out.Events = append(out.Events, core.NewMessageEvent(msg))
		case core.EventError:
			var errText string
			if err := json.Unmarshal(p.Content, &errText); err != nil {
				return out, fmt.Errorf("decode error event: %w", err)
			}
			out.Events = append(out.Events, core.NewErrorEvent(errText))
		default:
			return out, fmt.Errorf("unknown event type %q", p.Type)
		}
	}
	return out, scanner.Err()
}
