// Package redis persists checkpoints in Redis so suspended threads survive
// process restarts. Each checkpoint is stored as a JSON value keyed by
// thread identifier.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agenthub/agenthub/core"
)

const keyPrefix = "checkpoint:"

// Options configures the Redis checkpoint store.
type Options struct {
	// TTL expires idle threads. Zero means checkpoints never expire.
	TTL time.Duration
}

// Store is a CheckpointStore backed by a Redis client.
type Store struct {
	client *redis.Client
	opts   Options
}

// New wraps an existing Redis client as a checkpoint store.
func New(client *redis.Client, optFns ...func(o *Options)) *Store {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{client: client, opts: opts}
}

func key(threadID string) string { return keyPrefix + threadID }

// Load implements core.CheckpointStore.
func (s *Store) Load(ctx context.Context, threadID string) (*core.Checkpoint, error) {
	raw, err := s.client.Get(ctx, key(threadID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", threadID, err)
	}
	var cp core.Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", threadID, err)
	}
	return &cp, nil
}

// Save implements core.CheckpointStore.
func (s *Store) Save(ctx context.Context, cp *core.Checkpoint) error {
	raw, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint %s: %w", cp.ThreadID, err)
	}
	if err := s.client.Set(ctx, key(cp.ThreadID), raw, s.opts.TTL).Err(); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.ThreadID, err)
	}
	return nil
}

// Delete implements core.CheckpointStore.
func (s *Store) Delete(ctx context.Context, threadID string) error {
	if err := s.client.Del(ctx, key(threadID)).Err(); err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", threadID, err)
	}
	return nil
}

var _ core.CheckpointStore = (*Store)(nil)
