package oracle

import (
	"context"
	"fmt"
	"sync"

	"github.com/agenthub/agenthub/core"
)

// Reply is one canned response for a Scripted oracle.
type Reply struct {
	Text      string
	ToolCalls []core.ToolCall
	Err       error
}

// Scripted is an in-memory Oracle that plays back a fixed reply sequence,
// one per Generate call, and records the requests it received. It is safe
// for concurrent use and intended for tests and examples.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	next    int
	calls   []Request
}

// NewScripted builds a Scripted oracle from an ordered reply sequence.
func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

// Append queues additional replies after those already scripted.
func (s *Scripted) Append(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

// Calls returns a copy of every request seen so far, in order.
func (s *Scripted) Calls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.calls...)
}

// Generate implements Oracle. When the request asks for streaming, the reply
// text is chunked rune by rune before the final chunk, mirroring how the
// real backends stream.
func (s *Scripted) Generate(ctx context.Context, req Request) (<-chan Chunk, <-chan error) {
	chunks := make(chan Chunk, 16)
	errs := make(chan error, 1)

	s.mu.Lock()
	s.calls = append(s.calls, req)
	var reply Reply
	exhausted := s.next >= len(s.replies)
	if !exhausted {
		reply = s.replies[s.next]
		s.next++
	}
	s.mu.Unlock()

	go func() {
		defer close(chunks)
		defer close(errs)

		if exhausted {
			errs <- fmt.Errorf("scripted oracle: no reply for request %d", len(s.calls))
			return
		}
		if reply.Err != nil {
			errs <- reply.Err
			return
		}

		if req.Stream {
			for _, r := range reply.Text {
				select {
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				case chunks <- Chunk{Partial: true, Text: string(r)}:
				}
			}
		}

		select {
		case <-ctx.Done():
			errs <- ctx.Err()
		case chunks <- Chunk{Text: reply.Text, ToolCalls: reply.ToolCalls}:
		}
	}()

	return chunks, errs
}
