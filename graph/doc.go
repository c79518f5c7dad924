// Package graph implements the agentic retrieval control loop as an explicit
// state machine: a closed node enum, a deterministic transition function and
// a per-node checkpoint discipline.
//
// Entry is the coordinator, which extracts the question from the latest human
// message. The router then selects retrieval, web search or a direct answer.
// Retrieved documents pass a per-document relevance grade; any drop triggers
// a compensating web search before generation. Generated answers pass a
// grounding check and a usefulness check, regenerating or falling back to
// web search on failure, bounded by a retry ceiling.
//
// Negative grades are control-flow edges; only infrastructure failures
// (unreachable store, unparseable oracle reply) are errors, and those are
// fatal for the turn. State is checkpointed after every node so a crash or
// suspension resumes at the next node rather than repeating the last one.
package graph
