// Package core provides the foundational domain types used across the agent
// hub. It defines the core abstractions for:
//
//   - Messages (the tagged human/ai/tool/interrupt conversation union)
//   - Conversation state (per-thread execution memory with merge semantics)
//   - Stream events (token / message / error units emitted during a turn)
//   - Checkpoints (durable state + cursor snapshots keyed by thread)
//   - Review primitives (action requests, review configs, decisions)
//
// The package intentionally keeps implementation concerns (persistence,
// control-loop orchestration, concrete oracles and stores) out of scope,
// exposing small interfaces so higher layers can swap backends freely.
package core
