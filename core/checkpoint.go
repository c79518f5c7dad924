package core

import (
	"context"
	"errors"
	"time"
)

// ErrCheckpointNotFound is returned by Load for unknown thread identifiers.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// CursorSuspended marks a checkpoint paused by a human-in-the-loop interrupt;
// the pending action requests record what it is waiting for.
const CursorSuspended = "suspended"

// Checkpoint is a durable snapshot of one thread: serialized state plus a
// cursor identifying the next node to execute. It is sufficient to resume a
// thread after suspension or process restart.
type Checkpoint struct {
	ThreadID string `json:"thread_id"`
	AgentID  string `json:"agent_id"`
	State    State  `json:"state"`

	// Cursor names the next node to execute, or CursorSuspended while a
	// review decision is outstanding. Empty means idle between turns.
	Cursor string `json:"cursor,omitempty"`

	// PendingActions / PendingConfigs hold the suspended tool invocations,
	// positionally paired, while Cursor is CursorSuspended.
	PendingActions []ActionRequest `json:"pending_actions,omitempty"`
	PendingConfigs []ReviewConfig  `json:"pending_configs,omitempty"`

	// ResumeDigest fingerprints the last applied decision set so a replayed
	// resume does not re-execute approved side effects.
	ResumeDigest string `json:"resume_digest,omitempty"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// NewCheckpoint creates an empty checkpoint for a thread/agent pair.
func NewCheckpoint(threadID, agentID string) *Checkpoint {
	now := time.Now().UTC()
	return &Checkpoint{ThreadID: threadID, AgentID: agentID, Created: now, Updated: now}
}

// Suspended reports whether the thread is awaiting review decisions.
func (c *Checkpoint) Suspended() bool { return c.Cursor == CursorSuspended }

// Suspend records the outstanding action requests and parks the cursor.
func (c *Checkpoint) Suspend(requests []ActionRequest, configs []ReviewConfig) {
	c.Cursor = CursorSuspended
	c.PendingActions = requests
	c.PendingConfigs = configs
}

// ClearPending voids a suspension so fresh input can start a new turn.
func (c *Checkpoint) ClearPending() {
	c.Cursor = ""
	c.PendingActions = nil
	c.PendingConfigs = nil
}

// Clone returns a deep copy safe for independent mutation.
func (c *Checkpoint) Clone() *Checkpoint {
	clone := *c
	clone.State = *c.State.Clone()
	clone.PendingActions = append([]ActionRequest(nil), c.PendingActions...)
	clone.PendingConfigs = append([]ReviewConfig(nil), c.PendingConfigs...)
	return &clone
}

// CheckpointStore persists checkpoints keyed by thread identity. Backends
// must support concurrent access; keys never overlap across threads so no
// cross-thread coordination is required.
type CheckpointStore interface {
	// Load returns the checkpoint for a thread or ErrCheckpointNotFound.
	Load(ctx context.Context, threadID string) (*Checkpoint, error)

	// Save durably writes the checkpoint, overwriting any prior snapshot.
	Save(ctx context.Context, cp *Checkpoint) error

	// Delete removes a thread's checkpoint. Unknown threads are a no-op.
	Delete(ctx context.Context, threadID string) error
}
