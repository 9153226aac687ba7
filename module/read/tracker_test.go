package read

import (
	"context"
	"errors"
	"testing"
	"time"

	"DProject/module/message"
	"DProject/module/thread"
	"DProject/tools/errs"
)

type trackerFixture struct {
	tracker *Tracker
	msgs    *message.MemStore
	nextID  int64
}

func newTrackerFixture(t *testing.T) *trackerFixture {
	t.Helper()
	ctx := context.Background()

	threads := thread.NewMemStore()
	if _, _, err := threads.CreateIfAbsent(ctx, &thread.Thread{
		ID: 1, UserLowID: "alice", UserHighID: "bob", Status: thread.StatusActive,
	}); err != nil {
		t.Fatalf("seed thread: %v", err)
	}

	msgs := message.NewMemStore()
	return &trackerFixture{
		tracker: NewTracker(NewMemStore(), msgs, threads),
		msgs:    msgs,
		nextID:  100,
	}
}

func (f *trackerFixture) send(t *testing.T, author string, atMS int64) {
	t.Helper()
	f.nextID++
	err := f.msgs.Insert(context.Background(), &message.Message{
		ID: f.nextID, ThreadID: 1, AuthorID: author, Body: "x", CreatedAtMS: atMS,
	})
	if err != nil {
		t.Fatalf("seed message: %v", err)
	}
}

func TestUnreadCountsPeerMessagesOnly(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)

	base := time.Now().UnixMilli() - 10_000
	f.send(t, "bob", base+1)
	f.send(t, "bob", base+2)
	f.send(t, "alice", base+3) // own message never counts against alice

	counts, err := f.tracker.UnreadFor(ctx, "alice")
	if err != nil {
		t.Fatalf("UnreadFor failed: %v", err)
	}
	if counts.Total != 2 || counts.PerThread[1] != 2 {
		t.Fatalf("expected 2 unread for alice, got %+v", counts)
	}

	// bob sees only alice's message
	counts, err = f.tracker.UnreadFor(ctx, "bob")
	if err != nil {
		t.Fatalf("UnreadFor failed: %v", err)
	}
	if counts.Total != 1 {
		t.Fatalf("expected 1 unread for bob, got %+v", counts)
	}
}

func TestMarkReadClearsBacklog(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)

	base := time.Now().UnixMilli() - 10_000
	f.send(t, "bob", base+1)
	f.send(t, "bob", base+2)

	if err := f.tracker.MarkRead(ctx, "alice", 1); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	counts, err := f.tracker.UnreadFor(ctx, "alice")
	if err != nil {
		t.Fatalf("UnreadFor failed: %v", err)
	}
	if counts.Total != 0 {
		t.Fatalf("expected 0 unread after mark, got %+v", counts)
	}

	// a later peer message reopens the backlog
	f.send(t, "bob", time.Now().UnixMilli()+10_000)
	n, err := f.tracker.UnreadForThread(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("UnreadForThread failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 unread after new message, got %d", n)
	}
}

func TestMarkReadValidation(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)

	if err := f.tracker.MarkRead(ctx, "", 1); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	if err := f.tracker.MarkRead(ctx, "carol", 1); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected NotFound for outsider, got %v", err)
	}
	if err := f.tracker.MarkRead(ctx, "alice", 99); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected NotFound for missing thread, got %v", err)
	}
}

func TestWatermarkNeverMovesBackwards(t *testing.T) {
	ctx := context.Background()
	marks := NewMemStore()

	if err := marks.MarkRead(ctx, 1, "alice", 500); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	// a stale writer must not lower the watermark
	if err := marks.MarkRead(ctx, 1, "alice", 300); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	got, err := marks.Get(ctx, 1, "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != 500 {
		t.Fatalf("watermark regressed: got %d want 500", got)
	}
}

func TestUnmarkedThreadDefaultsToEpoch(t *testing.T) {
	ctx := context.Background()
	marks := NewMemStore()

	got, err := marks.Get(ctx, 1, "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected epoch zero for unmarked thread, got %d", got)
	}
}
