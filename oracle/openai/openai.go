// Package openai implements oracle.Oracle on the OpenAI Chat Completions API
// (including streaming and function/tool calling). It adapts the hub's
// normalized request/chunk structures into the SDK's message format and back.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/openai/openai-go"

	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/oracle"
)

// aggCall aggregates partial tool call streaming deltas (id, name, arguments)
// so complete calls can be reconstructed at finish time.
type aggCall struct{ id, name, args string }

// Options configure the OpenAI oracle adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Oracle wraps the OpenAI Chat Completions API behind oracle.Oracle.
type Oracle struct {
	client *openai.Client
	opts   Options
}

// New creates an OpenAI oracle using the default client (API key from env).
func New(optFns ...func(o *Options)) *Oracle {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates an OpenAI oracle from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Oracle {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.2,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Oracle{client: client, opts: opts}
}

// Generate implements oracle.Oracle.
func (o *Oracle) Generate(ctx context.Context, req oracle.Request) (<-chan oracle.Chunk, <-chan error) {
	out := make(chan oracle.Chunk, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		messages, err := buildMessages(req)
		if err != nil {
			errCh <- err
			return
		}
		params := o.buildParams(req, messages)
		if req.Stream {
			o.handleStreaming(ctx, params, out, errCh)
			return
		}
		o.handleNonStreaming(ctx, params, out, errCh)
	}()

	return out, errCh
}

// buildMessages converts hub messages into OpenAI chat messages. Interrupt
// messages are control records, not conversation, and are skipped.
func buildMessages(req oracle.Request) ([]openai.ChatCompletionMessageParamUnion, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, m := range req.Messages {
		switch m.Type {
		case core.MessageTypeHuman:
			messages = append(messages, openai.UserMessage(m.Content))
		case core.MessageTypeAI:
			if !m.HasToolCalls() {
				messages = append(messages, openai.AssistantMessage(m.Content))
				continue
			}
			toolCalls, err := encodeToolCalls(m.ToolCalls)
			if err != nil {
				return nil, err
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				},
			})
		case core.MessageTypeTool:
			messages = append(messages, openai.ToolMessage(m.Content, m.ToolCallID))
		case core.MessageTypeInterrupt:
			// not a provider role
		}
	}
	return messages, nil
}

func encodeToolCalls(calls []core.ToolCall) ([]openai.ChatCompletionMessageToolCallParam, error) {
	out := make([]openai.ChatCompletionMessageToolCallParam, 0, len(calls))
	for _, tc := range calls {
		args, err := json.Marshal(tc.Args)
		if err != nil {
			return nil, fmt.Errorf("encode tool call %s args: %w", tc.Name, err)
		}
		out = append(out, openai.ChatCompletionMessageToolCallParam{
			ID:   tc.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      tc.Name,
				Arguments: string(args),
			},
		})
	}
	return out, nil
}

func (o *Oracle) buildParams(
	req oracle.Request,
	messages []openai.ChatCompletionMessageParamUnion,
) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               o.opts.Model,
		Temperature:         openai.Float(o.opts.Temperature),
		MaxCompletionTokens: openai.Int(o.opts.MaxCompletionTokens),
	}
	if len(req.Tools) == 0 {
		return params
	}
	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Name,
				Description: openai.String(tdef.Description),
				Parameters:  tdef.Parameters,
			},
		}
	}
	params.Tools = tools
	return params
}

func (o *Oracle) handleStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- oracle.Chunk,
	errCh chan<- error,
) {
	stream := o.client.Chat.Completions.NewStreaming(ctx, params)
	var textBuilder strings.Builder
	toolAgg := map[int64]*aggCall{}
	for stream.Next() {
		ck := stream.Current()
		for _, ch := range ck.Choices {
			if ch.Delta.Content != "" {
				textBuilder.WriteString(ch.Delta.Content)
				out <- oracle.Chunk{Partial: true, Text: ch.Delta.Content}
			}
			for _, tc := range ch.Delta.ToolCalls {
				ac, ok := toolAgg[tc.Index]
				if !ok {
					ac = &aggCall{}
					toolAgg[tc.Index] = ac
				}
				if tc.ID != "" {
					ac.id = tc.ID
				}
				if tc.Function.Name != "" {
					ac.name = tc.Function.Name
				}
				ac.args += tc.Function.Arguments
			}
			if ch.FinishReason != "" {
				final, err := finalChunk(textBuilder.String(), toolAgg, string(ch.FinishReason))
				if err != nil {
					errCh <- err
					return
				}
				out <- final
			}
		}
	}
	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("openai streaming error: %w", err)
	}
}

func (o *Oracle) handleNonStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- oracle.Chunk,
	errCh chan<- error,
) {
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		errCh <- fmt.Errorf("openai api error: %w", err)
		return
	}
	if len(resp.Choices) == 0 {
		errCh <- fmt.Errorf("openai: no choices returned")
		return
	}
	choice := resp.Choices[0]

	toolAgg := map[int64]*aggCall{}
	for i, tc := range choice.Message.ToolCalls {
		toolAgg[int64(i)] = &aggCall{id: tc.ID, name: tc.Function.Name, args: tc.Function.Arguments}
	}
	final, err := finalChunk(choice.Message.Content, toolAgg, string(choice.FinishReason))
	if err != nil {
		errCh <- err
		return
	}
	out <- final
}

// finalChunk assembles the terminal chunk, decoding aggregated tool call
// argument JSON into structured maps.
func finalChunk(text string, toolAgg map[int64]*aggCall, finishReason string) (oracle.Chunk, error) {
	chunk := oracle.Chunk{
		Text:     text,
		Metadata: map[string]any{"finish_reason": finishReason},
	}
	indexes := make([]int64, 0, len(toolAgg))
	for idx := range toolAgg {
		indexes = append(indexes, idx)
	}
	slices.Sort(indexes)
	for _, idx := range indexes {
		ac := toolAgg[idx]
		args := map[string]any{}
		if ac.args != "" {
			if err := json.Unmarshal([]byte(ac.args), &args); err != nil {
				return oracle.Chunk{}, fmt.Errorf("decode tool call %s arguments: %w", ac.name, err)
			}
		}
		chunk.ToolCalls = append(chunk.ToolCalls, core.ToolCall{ID: ac.id, Name: ac.name, Args: args})
	}
	return chunk, nil
}
