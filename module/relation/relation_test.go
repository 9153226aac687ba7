package relation

import (
	"context"
	"testing"
)

func TestResolveMatrix(t *testing.T) {
	ctx := context.Background()
	store := NewMemFollowStore()
	r := NewResolver(store)

	rel, err := r.Resolve(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if rel != None {
		t.Fatalf("expected None, got %v", rel)
	}

	if err := store.AddEdge(ctx, "alice", "bob"); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	rel, _ = r.Resolve(ctx, "alice", "bob")
	if rel != AFollowsB {
		t.Fatalf("expected AFollowsB, got %v", rel)
	}

	// order of arguments flips the direction
	rel, _ = r.Resolve(ctx, "bob", "alice")
	if rel != BFollowsA {
		t.Fatalf("expected BFollowsA, got %v", rel)
	}

	if err := store.AddEdge(ctx, "bob", "alice"); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	rel, _ = r.Resolve(ctx, "alice", "bob")
	if rel != Mutual {
		t.Fatalf("expected Mutual, got %v", rel)
	}
}

func TestResolveNoCaching(t *testing.T) {
	ctx := context.Background()
	store := NewMemFollowStore()
	r := NewResolver(store)

	_ = store.AddEdge(ctx, "a", "b")
	_ = store.AddEdge(ctx, "b", "a")
	if rel, _ := r.Resolve(ctx, "a", "b"); rel != Mutual {
		t.Fatalf("expected Mutual, got %v", rel)
	}

	_ = store.RemoveEdge(ctx, "b", "a")
	if rel, _ := r.Resolve(ctx, "a", "b"); rel != AFollowsB {
		t.Fatalf("expected AFollowsB after unfollow, got %v", rel)
	}
}
