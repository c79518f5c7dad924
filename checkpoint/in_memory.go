package checkpoint

import (
	"context"
	"sync"

	"github.com/agenthub/agenthub/core"
)

// InMemoryStore is a volatile CheckpointStore implementation storing
// checkpoints in a process local map. It is safe for concurrent access and
// best suited for tests or ephemeral demo servers. Checkpoints are cloned on
// both save and load to prevent external mutation of internal state.
type InMemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*core.Checkpoint
}

// NewInMemoryStore constructs an empty in-memory checkpoint store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{checkpoints: make(map[string]*core.Checkpoint)}
}

// Load returns a clone of the checkpoint for the thread, or
// core.ErrCheckpointNotFound.
func (s *InMemoryStore) Load(_ context.Context, threadID string) (*core.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.checkpoints[threadID]
	if !ok {
		return nil, core.ErrCheckpointNotFound
	}
	return cp.Clone(), nil
}

// Save stores a clone of the provided checkpoint snapshot.
func (s *InMemoryStore) Save(_ context.Context, cp *core.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[cp.ThreadID] = cp.Clone()
	return nil
}

// Delete removes the checkpoint for a thread; unknown threads are a no-op.
func (s *InMemoryStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkpoints, threadID)
	return nil
}
