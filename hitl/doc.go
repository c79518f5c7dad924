// Package hitl implements the human-in-the-loop interrupt broker.
//
// The broker runs a tool-calling loop against an oracle. Tool calls whose
// review policy requires approval suspend the turn: the broker emits an
// interrupt message carrying the pending action requests, checkpoints the
// thread in the suspended state and stops. Resume applies an ordered decision
// set (approve, reject, edit) to the outstanding requests and continues the
// loop exactly where it left off. A digest of the applied decision set guards
// against replays re-executing approved side effects.
package hitl
