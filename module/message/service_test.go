package message

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"DProject/module/relation"
	"DProject/module/thread"
	"DProject/module/user"
	"DProject/tools/errs"
)

type capturePublisher struct {
	mu   sync.Mutex
	msgs []*Message
}

func (p *capturePublisher) Publish(threadID int64, m *Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, m)
}

type fixture struct {
	reg    *thread.Registry
	svc    *Service
	pub    *capturePublisher
	follow *relation.MemFollowStore
}

func newFixture(t *testing.T, users ...string) *fixture {
	t.Helper()
	follows := relation.NewMemFollowStore()
	threads := thread.NewMemStore()
	reg := thread.NewRegistry(threads, user.NewMemDirectory(users...), follows, nil)
	pub := &capturePublisher{}
	svc := NewService(NewMemStore(), threads, pub, nil)
	return &fixture{reg: reg, svc: svc, pub: pub, follow: follows}
}

func (f *fixture) activeThread(t *testing.T, a, b string) *thread.Thread {
	t.Helper()
	ctx := context.Background()
	_ = f.follow.AddEdge(ctx, a, b)
	_ = f.follow.AddEdge(ctx, b, a)
	th, err := f.reg.OpenOrGet(ctx, a, b)
	if err != nil {
		t.Fatalf("OpenOrGet failed: %v", err)
	}
	return th
}

func TestRequestAcceptMessageScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	// A opens with no prior relation -> REQUESTED by A
	th, err := f.reg.OpenOrGet(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("OpenOrGet failed: %v", err)
	}
	if th.Status != thread.StatusRequested || th.RequestedByID != "alice" {
		t.Fatalf("expected REQUESTED by alice, got %s by %q", th.Status, th.RequestedByID)
	}

	// B cannot message yet
	if _, err := f.svc.Append(ctx, "bob", th.ID, "hi"); !errors.Is(err, errs.ErrNotActive) {
		t.Fatalf("expected NotActive, got %v", err)
	}

	// B accepts -> ACTIVE
	if _, err := f.reg.Respond(ctx, "bob", th.ID, thread.DecisionAccept); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	// A says hello
	m, err := f.svc.Append(ctx, "alice", th.ID, "hello")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	page, next, err := f.svc.ListBefore(ctx, "bob", th.ID, "", 20)
	if err != nil {
		t.Fatalf("ListBefore failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != m.ID || page[0].Body != "hello" {
		t.Fatalf("expected the single hello message, got %+v", page)
	}
	if next != "" {
		t.Fatalf("expected exhausted cursor, got %q", next)
	}
}

func TestAppendValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob", "carol")
	th := f.activeThread(t, "alice", "bob")

	if _, err := f.svc.Append(ctx, "carol", th.ID, "hi"); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("outsider: expected Forbidden, got %v", err)
	}
	if _, err := f.svc.Append(ctx, "alice", th.ID, "   "); !errors.Is(err, errs.ErrEmptyBody) {
		t.Fatalf("blank body: expected EmptyBody, got %v", err)
	}
	if _, err := f.svc.Append(ctx, "alice", th.ID+1, "hi"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing thread: expected NotFound, got %v", err)
	}
	if _, err := f.svc.Append(ctx, "", th.ID, "hi"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("no identity: expected Unauthorized, got %v", err)
	}
}

func TestAppendPublishesInOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	th := f.activeThread(t, "alice", "bob")

	for i := 0; i < 5; i++ {
		if _, err := f.svc.Append(ctx, "alice", th.ID, fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	f.pub.mu.Lock()
	defer f.pub.mu.Unlock()
	if len(f.pub.msgs) != 5 {
		t.Fatalf("expected 5 published messages, got %d", len(f.pub.msgs))
	}
	for i := 1; i < len(f.pub.msgs); i++ {
		if f.pub.msgs[i].ID <= f.pub.msgs[i-1].ID {
			t.Fatalf("publish order not monotonic: %d after %d", f.pub.msgs[i].ID, f.pub.msgs[i-1].ID)
		}
	}
}

func TestListBeforePaginationGapFree(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	th := f.activeThread(t, "alice", "bob")

	const total = 45
	for i := 0; i < total; i++ {
		if _, err := f.svc.Append(ctx, "alice", th.ID, fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	seen := make(map[int64]bool)
	var all []*Message
	cursor := ""
	for {
		page, next, err := f.svc.ListBefore(ctx, "bob", th.ID, cursor, 10)
		if err != nil {
			t.Fatalf("ListBefore failed: %v", err)
		}
		for _, m := range page {
			if seen[m.ID] {
				t.Fatalf("duplicate message %d across pages", m.ID)
			}
			seen[m.ID] = true
			all = append(all, m)
		}
		if next == "" {
			break
		}
		cursor = next
	}

	if len(all) != total {
		t.Fatalf("expected %d messages across pages, got %d", total, len(all))
	}
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		older := cur.CreatedAtMS < prev.CreatedAtMS ||
			(cur.CreatedAtMS == prev.CreatedAtMS && cur.ID < prev.ID)
		if !older {
			t.Fatalf("pages not in descending creation order at index %d", i)
		}
	}
}

func TestCursorStableUnderConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	th := f.activeThread(t, "alice", "bob")

	for i := 0; i < 10; i++ {
		if _, err := f.svc.Append(ctx, "alice", th.ID, fmt.Sprintf("old%d", i)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	page1, next, err := f.svc.ListBefore(ctx, "alice", th.ID, "", 5)
	if err != nil {
		t.Fatalf("ListBefore failed: %v", err)
	}

	// new messages arrive mid-pagination
	for i := 0; i < 3; i++ {
		if _, err := f.svc.Append(ctx, "bob", th.ID, fmt.Sprintf("new%d", i)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	page2, _, err := f.svc.ListBefore(ctx, "alice", th.ID, next, 5)
	if err != nil {
		t.Fatalf("ListBefore failed: %v", err)
	}
	for _, m := range page2 {
		for _, p := range page1 {
			if m.ID == p.ID {
				t.Fatalf("message %d duplicated across pages", m.ID)
			}
		}
		if !m.Before(&Cursor{TsMS: page1[len(page1)-1].CreatedAtMS, ID: page1[len(page1)-1].ID}) {
			t.Fatalf("page revealed a message at or after the cursor")
		}
	}
}

func TestEditDeleteAuthorOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	th := f.activeThread(t, "alice", "bob")

	m, err := f.svc.Append(ctx, "alice", th.ID, "original")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if _, err := f.svc.Edit(ctx, "bob", m.ID, "hacked"); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("peer edit: expected Forbidden, got %v", err)
	}
	if err := f.svc.Delete(ctx, "bob", m.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("peer delete: expected Forbidden, got %v", err)
	}
	if _, err := f.svc.Edit(ctx, "alice", m.ID+1, "x"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing message: expected NotFound, got %v", err)
	}

	edited, err := f.svc.Edit(ctx, "alice", m.ID, "fixed")
	if err != nil {
		t.Fatalf("author edit failed: %v", err)
	}
	if edited.Body != "fixed" || edited.EditedAtMS == 0 {
		t.Fatalf("edit not applied: %+v", edited)
	}

	if err := f.svc.Delete(ctx, "alice", m.ID); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}
	page, _, _ := f.svc.ListBefore(ctx, "alice", th.ID, "", 20)
	if len(page) != 0 {
		t.Fatalf("deleted message still paginated: %+v", page)
	}
}

func TestListBeforeOutsiderGetsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob", "carol")
	th := f.activeThread(t, "alice", "bob")

	if _, _, err := f.svc.ListBefore(ctx, "carol", th.ID, "", 20); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected NotFound for outsider, got %v", err)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{TsMS: 1712345678901, ID: 42}
	parsed, err := ParseCursor(c.Encode())
	if err != nil {
		t.Fatalf("ParseCursor failed: %v", err)
	}
	if parsed.TsMS != c.TsMS || parsed.ID != c.ID {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
	if _, err := ParseCursor("junk"); err == nil {
		t.Fatalf("expected error for junk cursor")
	}
	if nilCur, _ := ParseCursor(""); nilCur != nil {
		t.Fatalf("empty cursor must mean newest page")
	}
}
