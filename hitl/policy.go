package hitl

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/agenthub/agenthub/core"
)

// Rule states how one tool's calls are reviewed. The zero value means no
// review: the tool executes immediately.
type Rule struct {
	// Review gates execution behind a human decision.
	Review bool

	// AllowedDecisions restricts what the reviewer may answer. Empty with
	// Review true means the full set (approve, reject, edit).
	AllowedDecisions []core.DecisionType
}

// Decisions returns the effective allowed decision set.
func (r Rule) Decisions() []core.DecisionType {
	if !r.Review {
		return nil
	}
	if len(r.AllowedDecisions) == 0 {
		return []core.DecisionType{core.DecisionApprove, core.DecisionReject, core.DecisionEdit}
	}
	return r.AllowedDecisions
}

// ReviewAll requires review and permits every decision type.
func ReviewAll() Rule { return Rule{Review: true} }

// ReviewOnly requires review and permits just the given decisions.
func ReviewOnly(decisions ...core.DecisionType) Rule {
	return Rule{Review: true, AllowedDecisions: decisions}
}

// NoReview lets the tool execute without any human decision.
func NoReview() Rule { return Rule{} }

// Policy maps tool names to review rules. Tools absent from the policy are
// treated as NoReview.
type Policy map[string]Rule

// Requires reports whether a call to the named tool must be reviewed.
func (p Policy) Requires(name string) bool { return p[name].Review }

// describeAction renders the human-readable pending-approval text for one
// tool call.
func describeAction(prefix, name string, args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, compactJSON(args[k])))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s: %s", prefix, name)
	}
	return fmt.Sprintf("%s: %s with %s", prefix, name, strings.Join(parts, ", "))
}

func compactJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
