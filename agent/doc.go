// Package agent contains the first-class agent implementations registered
// with the hub. The package focuses on three concerns:
//
//  1. The Agent contract: one turn per Run call, driven from a checkpoint,
//     events emitted while progress is checkpointed.
//  2. Identity plumbing (BaseAgent) shared by all implementations.
//  3. Concrete agents: ChatAgent (plain streaming chat), RAGAgent (the
//     retrieval control loop) and HITLAgent (tool calling with human review).
//
// Design principles:
//   - Minimal hidden global state: explicit wiring via constructors
//   - Observability: agents log through the logging package
//   - Extensibility: embed BaseAgent; implement Run plus Resume if the agent
//     can suspend
//
// Persistence, oracle specifics and tool registry abstractions stay in their
// respective packages to avoid cyclic deps.
package agent
