package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/logging"
	"github.com/agenthub/agenthub/oracle"
	"github.com/agenthub/agenthub/store"
)

// Options configures graph execution.
type Options struct {
	// Collection is the document store collection queried by retrieval.
	Collection string

	// TopK bounds how many documents retrieval returns per question.
	TopK int

	// MaxCritiqueCycles bounds how many times the self-critique may send a
	// generation back for another attempt. Once exhausted the last
	// generation is finalized with a degraded marker instead of looping.
	MaxCritiqueCycles int

	// Logger receives node transition and failure logs.
	Logger logging.Logger
}

// Graph executes the retrieval-augmented control loop for one thread. It is
// stateless across calls; all per-thread memory lives in the checkpoint.
type Graph struct {
	oracle      oracle.Oracle
	docs        store.DocumentStore
	web         store.WebSearcher
	checkpoints core.CheckpointStore
	opts        Options
	logger      logging.Logger
}

// New creates a Graph over the given oracle, stores and checkpoint backend.
func New(
	o oracle.Oracle,
	docs store.DocumentStore,
	web store.WebSearcher,
	checkpoints core.CheckpointStore,
	optFns ...func(o *Options),
) *Graph {
	opts := Options{
		Collection:        "documents",
		TopK:              2,
		MaxCritiqueCycles: 3,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.TopK <= 0 {
		opts.TopK = 2
	}
	if opts.MaxCritiqueCycles <= 0 {
		opts.MaxCritiqueCycles = 3
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Graph{
		oracle:      o,
		docs:        docs,
		web:         web,
		checkpoints: checkpoints,
		opts:        opts,
		logger:      opts.Logger,
	}
}

// parseNode validates a checkpoint cursor against the closed node set.
func parseNode(cursor string) (Node, error) {
	switch n := Node(cursor); n {
	case NodeCoordinator, NodeRetrieve, NodeGradeDocuments, NodeWebSearch,
		NodeRAGAnswer, NodeDirectAnswer, NodeReporter:
		return n, nil
	default:
		return "", fmt.Errorf("unknown cursor %q", cursor)
	}
}

// Run drives the control loop for one turn, starting at the coordinator or at
// the checkpoint cursor when resuming. Deltas are applied and the checkpoint
// saved after every node, before that node's messages are emitted, so a crash
// never loses acknowledged progress. Run returns when the loop reaches the
// terminal node or a node fails.
func (g *Graph) Run(ctx context.Context, cp *core.Checkpoint, emit chan<- core.Event) error {
	if cp.Suspended() {
		return fmt.Errorf("thread %s is suspended awaiting review", cp.ThreadID)
	}

	node := NodeCoordinator
	if cp.Cursor != "" {
		n, err := parseNode(cp.Cursor)
		if err != nil {
			return err
		}
		node = n
	}

	question := cp.State.Question
	if node == NodeCoordinator {
		question = cp.State.LastHumanQuestion()
	}

	cycles := 0
	degraded := false
	var lastMeta map[string]any

	for node != NodeTerminal {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var (
			delta core.Delta
			next  Node
			err   error
		)

		switch node {
		case NodeCoordinator:
			delta = core.Delta{Question: core.StringPtr(question)}
			next, err = g.routeQuestion(ctx, question)

		case NodeRetrieve:
			delta, err = g.retrieve(ctx, cp.State.Question)
			next = NodeGradeDocuments

		case NodeGradeDocuments:
			delta, err = g.gradeDocuments(ctx, cp.State.Question, cp.State.Documents)
			next = NodeRAGAnswer
			if err == nil && delta.WebSearch != nil && *delta.WebSearch {
				next = NodeWebSearch
			}

		case NodeWebSearch:
			delta, err = g.webSearch(ctx, cp.State.Question, cp.State.Documents)
			next = NodeRAGAnswer

		case NodeRAGAnswer:
			var text string
			text, lastMeta, err = g.generate(ctx,
				ragInstructions(cp.State.Question, cp.State.Documents),
				cp.State.Messages, emit)
			if err != nil {
				break
			}
			delta = core.Delta{Generation: core.StringPtr(text)}

			var verdict critiqueVerdict
			verdict, err = g.gradeGeneration(ctx, cp.State.Question, text, cp.State.Documents)
			if err != nil {
				break
			}
			switch verdict {
			case verdictUseful:
				next = NodeReporter
			case verdictNotSupported:
				next = NodeRAGAnswer
			case verdictNotUseful:
				next = NodeWebSearch
			}
			if next != NodeReporter {
				cycles++
				if cycles >= g.opts.MaxCritiqueCycles {
					degraded = true
					next = NodeReporter
				}
			}

		case NodeDirectAnswer:
			var text string
			text, lastMeta, err = g.generate(ctx,
				directInstructions(cp.State.Question), cp.State.Messages, emit)
			if err != nil {
				break
			}
			msg := core.NewAIMessage(text)
			msg.ResponseMetadata = lastMeta
			delta = core.Delta{
				AppendMessages: []core.Message{msg},
				Generation:     core.StringPtr(text),
			}
			next = NodeTerminal

		case NodeReporter:
			msg := core.NewAIMessage(cp.State.Generation)
			msg.ResponseMetadata = reporterMetadata(lastMeta, degraded)
			delta = core.Delta{AppendMessages: []core.Message{msg}}
			next = NodeTerminal
		}

		if err != nil {
			g.logger.Error("node failed", "thread_id", cp.ThreadID, "node", string(node), "error", err)
			return err
		}

		cp.State.Apply(delta)
		cp.Cursor = string(next)
		if next == NodeTerminal {
			cp.Cursor = ""
		}
		cp.Updated = time.Now().UTC()
		if err := g.checkpoints.Save(ctx, cp); err != nil {
			return fmt.Errorf("save checkpoint: %w", err)
		}

		for _, m := range delta.AppendMessages {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case emit <- core.NewMessageEvent(m):
			}
		}

		g.logger.Debug("node transition", "thread_id", cp.ThreadID, "from", string(node), "to", string(next))
		node = next
	}
	return nil
}

// reporterMetadata merges the generation metadata with the degraded marker
// without mutating the original map.
func reporterMetadata(meta map[string]any, degraded bool) map[string]any {
	if !degraded {
		return meta
	}
	merged := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		merged[k] = v
	}
	merged["degraded"] = true
	return merged
}
