package graph

import (
	"context"
	"fmt"

	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/oracle"
)

// Node identifies one state of the control loop. The set is closed; the
// executor switches exhaustively over it.
type Node string

const (
	NodeCoordinator    Node = "coordinator"
	NodeRetrieve       Node = "retrieve"
	NodeGradeDocuments Node = "grade_documents"
	NodeWebSearch      Node = "web_search"
	NodeRAGAnswer      Node = "rag_answer"
	NodeDirectAnswer   Node = "direct_answer"
	NodeReporter       Node = "reporter"
	NodeTerminal       Node = "terminal"
)

// critiqueVerdict is the three-outcome result of the self-critique step.
type critiqueVerdict string

const (
	verdictNotSupported critiqueVerdict = "not supported"
	verdictUseful       critiqueVerdict = "useful"
	verdictNotUseful    critiqueVerdict = "not useful"
)

// routeQuestion classifies the question into the next branch. A malformed
// oracle reply is fatal for the turn: an unrouted question cannot proceed.
func (g *Graph) routeQuestion(ctx context.Context, question string) (Node, error) {
	label, err := oracle.RouteQuestion(ctx, g.oracle, routerPrompt, question)
	if err != nil {
		return "", err
	}
	switch label {
	case core.RouteVectorStore:
		return NodeRetrieve, nil
	case core.RouteWebSearch:
		return NodeWebSearch, nil
	default:
		return NodeDirectAnswer, nil
	}
}

// retrieve fetches the top-k documents for the question. Store failures
// propagate; an empty result is a valid outcome, an unreachable store is not.
func (g *Graph) retrieve(ctx context.Context, question string) (core.Delta, error) {
	docs, err := g.docs.Search(ctx, g.opts.Collection, question, g.opts.TopK)
	if err != nil {
		return core.Delta{}, fmt.Errorf("retrieve documents: %w", err)
	}
	return core.Delta{Documents: core.DocumentsPtr(docs)}, nil
}

// gradeDocuments filters the retrieved set one document at a time, keeping
// input order. Dropping any document sets the web-search flag so a
// compensating search runs before generation.
func (g *Graph) gradeDocuments(ctx context.Context, question string, docs []core.Document) (core.Delta, error) {
	filtered := make([]core.Document, 0, len(docs))
	webSearch := false
	for _, doc := range docs {
		relevant, err := oracle.GradeBinary(ctx, g.oracle, retrievalGraderPrompt,
			fmt.Sprintf(documentGradePrompt, doc.Content, question))
		if err != nil {
			return core.Delta{}, fmt.Errorf("grade document: %w", err)
		}
		if relevant {
			filtered = append(filtered, doc)
			continue
		}
		webSearch = true
	}
	return core.Delta{
		Documents: core.DocumentsPtr(filtered),
		WebSearch: core.BoolPtr(webSearch),
	}, nil
}

// webSearch appends fallback results to the documents already held.
func (g *Graph) webSearch(ctx context.Context, question string, existing []core.Document) (core.Delta, error) {
	results, err := g.web.Search(ctx, question)
	if err != nil {
		return core.Delta{}, fmt.Errorf("web search: %w", err)
	}
	merged := append(append([]core.Document(nil), existing...), results...)
	return core.Delta{
		Documents: core.DocumentsPtr(merged),
		WebSearch: core.BoolPtr(false),
	}, nil
}

// generate streams one oracle completion, forwarding partial fragments as
// token events, and returns the full text plus response metadata.
func (g *Graph) generate(
	ctx context.Context,
	instructions string,
	history []core.Message,
	emit chan<- core.Event,
) (string, map[string]any, error) {
	res, err := collectStreaming(ctx, g.oracle, oracle.Request{
		Instructions: instructions,
		Messages:     history,
		Stream:       true,
	}, emit)
	if err != nil {
		return "", nil, fmt.Errorf("generate answer: %w", err)
	}
	return res.Text, res.Metadata, nil
}

// ragInstructions renders the retrieval-augmented system prompt.
func ragInstructions(question string, docs []core.Document) string {
	return fmt.Sprintf(ragAnswerPrompt, question, core.SerializeDocuments(docs))
}

// directInstructions renders the answer-from-own-knowledge system prompt.
func directInstructions(question string) string {
	return fmt.Sprintf(directAnswerPrompt, question)
}

// gradeGeneration runs the ordered self-critique: grounding first, then
// usefulness. Checking usefulness of an ungrounded answer is meaningless, so
// the grounding gate always runs first.
func (g *Graph) gradeGeneration(ctx context.Context, question, generation string, docs []core.Document) (critiqueVerdict, error) {
	grounded, err := oracle.GradeBinary(ctx, g.oracle, hallucinationGraderPrompt,
		fmt.Sprintf(hallucinationGradePrompt, core.JoinContents(docs), generation))
	if err != nil {
		return "", fmt.Errorf("grade grounding: %w", err)
	}
	if !grounded {
		return verdictNotSupported, nil
	}

	useful, err := oracle.GradeBinary(ctx, g.oracle, answerGraderPrompt,
		fmt.Sprintf(answerGradePrompt, question, generation))
	if err != nil {
		return "", fmt.Errorf("grade usefulness: %w", err)
	}
	if useful {
		return verdictUseful, nil
	}
	return verdictNotUseful, nil
}

// collectStreaming drains a streamed Generate call, forwarding partials to
// emit as token events and assembling the final result.
func collectStreaming(
	ctx context.Context,
	o oracle.Oracle,
	req oracle.Request,
	emit chan<- core.Event,
) (oracle.Result, error) {
	return oracle.CollectWith(ctx, o, req, func(text string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case emit <- core.NewTokenEvent(text):
			return nil
		}
	})
}
