package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agenthub/agenthub/core"
)

// RouteQuestion asks the oracle to classify a question into one of the three
// route labels. The oracle must reply with a JSON object holding only the
// key "datasource"; anything else is a fatal routing error for the turn.
func RouteQuestion(ctx context.Context, o Oracle, instructions, question string) (core.RouteLabel, error) {
	res, err := Collect(ctx, o, Request{
		Instructions: instructions,
		Messages:     []core.Message{core.NewHumanMessage(question)},
	})
	if err != nil {
		return "", fmt.Errorf("route question: %w", err)
	}

	var reply struct {
		Datasource string `json:"datasource"`
	}
	if err := json.Unmarshal([]byte(stripFences(res.Text)), &reply); err != nil {
		return "", fmt.Errorf("route question: unparseable oracle reply %q: %w", res.Text, err)
	}

	label := core.RouteLabel(reply.Datasource)
	if !core.ValidRouteLabel(label) {
		return "", fmt.Errorf("route question: invalid route label %q", reply.Datasource)
	}
	return label, nil
}

// GradeBinary asks the oracle a yes/no judgment question. The oracle must
// reply with a JSON object holding only the key "binary_score" as a bool or
// a "yes"/"no" string. An unparseable reply is an error, distinct from a
// valid negative grade.
func GradeBinary(ctx context.Context, o Oracle, instructions, prompt string) (bool, error) {
	res, err := Collect(ctx, o, Request{
		Instructions: instructions,
		Messages:     []core.Message{core.NewHumanMessage(prompt)},
	})
	if err != nil {
		return false, fmt.Errorf("binary grade: %w", err)
	}

	var reply struct {
		BinaryScore any `json:"binary_score"`
	}
	if err := json.Unmarshal([]byte(stripFences(res.Text)), &reply); err != nil {
		return false, fmt.Errorf("binary grade: unparseable oracle reply %q: %w", res.Text, err)
	}

	switch v := reply.BinaryScore.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "true":
			return true, nil
		case "no", "false":
			return false, nil
		}
		return false, fmt.Errorf("binary grade: invalid score %q", v)
	default:
		return false, fmt.Errorf("binary grade: missing binary_score in reply %q", res.Text)
	}
}

// stripFences removes a surrounding markdown code fence, which some backends
// wrap structured replies in despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
