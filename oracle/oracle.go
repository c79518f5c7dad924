package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthub/agenthub/core"
)

// ToolDefinition declaratively exposes a callable function to the oracle.
// Parameters is a minimal JSON Schema object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request is the normalized oracle input produced by the control loop.
type Request struct {
	Instructions string           `json:"instructions"`
	Messages     []core.Message   `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// Chunk is a partial or final unit emitted by a generating oracle. Partial
// chunks carry incremental text only; the final chunk carries the complete
// text, any tool calls and provider metadata.
type Chunk struct {
	Partial   bool
	Text      string
	ToolCalls []core.ToolCall
	Metadata  map[string]any
}

// Oracle is the minimal interface the routing, grading and generation steps
// require from a reasoning backend. The chunk channel is closed after the
// final chunk; the error channel carries at most one terminal error.
type Oracle interface {
	Generate(ctx context.Context, req Request) (<-chan Chunk, <-chan error)
}

// Result is the drained outcome of a non-streaming oracle call.
type Result struct {
	Text      string
	ToolCalls []core.ToolCall
	Metadata  map[string]any
}

// Collect drains a Generate call to completion, concatenating partial text
// and returning the final chunk's tool calls and metadata.
func Collect(ctx context.Context, o Oracle, req Request) (Result, error) {
	return CollectWith(ctx, o, req, nil)
}

// CollectWith drains a Generate call like Collect, additionally invoking
// onPartial for every non-empty partial text fragment. An onPartial error
// aborts the drain.
func CollectWith(ctx context.Context, o Oracle, req Request, onPartial func(text string) error) (Result, error) {
	chunks, errs := o.Generate(ctx, req)

	var res Result
	var text strings.Builder
	for {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case err, ok := <-errs:
			if ok && err != nil {
				return res, err
			}
			errs = nil
		case ck, ok := <-chunks:
			if !ok {
				res.Text = text.String()
				return res, drainErr(errs)
			}
			if ck.Partial {
				text.WriteString(ck.Text)
				if ck.Text != "" && onPartial != nil {
					if err := onPartial(ck.Text); err != nil {
						return res, err
					}
				}
				continue
			}
			// Final chunk: its text is authoritative when the backend did
			// not stream partials first.
			if ck.Text != "" {
				text.Reset()
				text.WriteString(ck.Text)
			}
			res.ToolCalls = ck.ToolCalls
			res.Metadata = ck.Metadata
		}
	}
}

func drainErr(errs <-chan error) error {
	if errs == nil {
		return nil
	}
	select {
	case err, ok := <-errs:
		if ok {
			return err
		}
	default:
	}
	return nil
}

// Summary renders a compact request description for logging.
func (r Request) Summary() string {
	return fmt.Sprintf("instructions=%dB messages=%d tools=%d stream=%v",
		len(r.Instructions), len(r.Messages), len(r.Tools), r.Stream)
}
