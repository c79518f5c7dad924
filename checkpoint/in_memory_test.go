package checkpoint

import (
	"context"
	"errors"
	"testing"

	"github.com/agenthub/agenthub/core"
)

// Interface compliance (compile-time assertion)
var _ core.CheckpointStore = (*InMemoryStore)(nil)

func TestInMemoryStore_LoadUnknown(t *testing.T) {
	s := NewInMemoryStore()
	if _, err := s.Load(context.Background(), "missing"); !errors.Is(err, core.ErrCheckpointNotFound) {
		t.Fatalf("expected ErrCheckpointNotFound, got %v", err)
	}
}

func TestInMemoryStore_SaveLoadClones(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	cp := core.NewCheckpoint("t1", "rag-agent")
	cp.State.Messages = append(cp.State.Messages, core.NewHumanMessage("hello"))
	if err := s.Save(ctx, cp); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the original after save must not leak into the store.
	cp.State.Messages = append(cp.State.Messages, core.NewAIMessage("leaked"))

	got, err := s.Load(ctx, "t1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.State.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got.State.Messages))
	}

	// Mutating the loaded copy must not leak into the store either.
	got.State.Messages = append(got.State.Messages, core.NewAIMessage("leaked too"))
	again, err := s.Load(ctx, "t1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(again.State.Messages) != 1 {
		t.Fatalf("expected 1 message after reload, got %d", len(again.State.Messages))
	}
}

func TestInMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if err := s.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete of unknown thread should be a no-op, got %v", err)
	}

	cp := core.NewCheckpoint("t1", "chatbot")
	if err := s.Save(ctx, cp); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Delete(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load(ctx, "t1"); !errors.Is(err, core.ErrCheckpointNotFound) {
		t.Fatalf("expected ErrCheckpointNotFound after delete, got %v", err)
	}
}
