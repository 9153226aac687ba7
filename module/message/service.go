// Package message appends to and pages through a thread's message stream.
package message

import (
	"context"
	"strings"
	"sync"
	"time"

	"DProject/module/thread"
	"DProject/service/notify"
	"DProject/tools/errs"
	"DProject/tools/ids"
)

// Publisher is what the service needs from the realtime broker. Publish must
// never fail the triggering write; with no subscribers it is a no-op.
type Publisher interface {
	Publish(threadID int64, m *Message)
}

type Service struct {
	msgs     Store
	threads  thread.Store
	pub      Publisher
	notifier notify.Notifier

	// Per-thread append lock: keeps the insert->publish pair atomic relative
	// to other appends on the same thread, so the push stream order matches
	// pagination order.
	appendMu sync.Mutex
	perConv  map[int64]*sync.Mutex
}

func NewService(msgs Store, threads thread.Store, pub Publisher, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{
		msgs:     msgs,
		threads:  threads,
		pub:      pub,
		notifier: notifier,
		perConv:  make(map[int64]*sync.Mutex),
	}
}

func (s *Service) convLock(threadID int64) *sync.Mutex {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()
	mu, ok := s.perConv[threadID]
	if !ok {
		mu = &sync.Mutex{}
		s.perConv[threadID] = mu
	}
	return mu
}

// Append writes a message to an ACTIVE thread the actor participates in,
// publishes it to live subscribers, and bumps the thread's recency stamp.
// The write is durable before publish is attempted.
func (s *Service) Append(ctx context.Context, actor string, threadID int64, body string) (*Message, error) {
	if actor == "" {
		return nil, errs.ErrUnauthorized
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errs.ErrEmptyBody
	}

	t, err := s.threads.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errs.ErrNotFound.WithDetail("thread not found")
	}
	if !t.Involves(actor) {
		return nil, errs.ErrForbidden.WithDetail("not a participant")
	}
	if t.Status != thread.StatusActive {
		return nil, errs.ErrNotActive
	}

	mu := s.convLock(threadID)
	mu.Lock()
	defer mu.Unlock()

	m := &Message{
		ID:          ids.Generate(),
		ThreadID:    threadID,
		AuthorID:    actor,
		Body:        body,
		CreatedAtMS: time.Now().UnixMilli(),
	}
	if err := s.msgs.Insert(ctx, m); err != nil {
		return nil, err
	}
	if err := s.threads.BumpLastMessageAt(ctx, threadID, m.CreatedAtMS); err != nil {
		return nil, err
	}
	if s.pub != nil {
		s.pub.Publish(threadID, m)
	}
	notify.Dispatch(s.notifier, notify.Event{
		Kind: notify.EventMessageCreated, ThreadID: threadID,
		ActorID: actor, PeerID: t.PeerOf(actor), TS: m.CreatedAtMS,
	})
	return m, nil
}

// ListBefore pages backwards through the thread. The returned cursor fetches
// the next older page; empty string means exhausted. Keyset positions make
// the page set stable under concurrent inserts.
func (s *Service) ListBefore(ctx context.Context, actor string, threadID int64, cursor string, limit int) ([]*Message, string, error) {
	if actor == "" {
		return nil, "", errs.ErrUnauthorized
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	t, err := s.threads.GetByID(ctx, threadID)
	if err != nil {
		return nil, "", err
	}
	if t == nil || !t.Involves(actor) {
		return nil, "", errs.ErrNotFound.WithDetail("thread not found for caller")
	}
	cur, err := ParseCursor(cursor)
	if err != nil {
		return nil, "", errs.ErrNotFound.WithDetail("bad cursor")
	}
	page, err := s.msgs.ListBefore(ctx, threadID, cur, limit)
	if err != nil {
		return nil, "", err
	}
	next := ""
	if len(page) == limit {
		last := page[len(page)-1]
		next = Cursor{TsMS: last.CreatedAtMS, ID: last.ID}.Encode()
	}
	return page, next, nil
}

// Edit replaces the body; author only.
func (s *Service) Edit(ctx context.Context, actor string, messageID int64, newBody string) (*Message, error) {
	if actor == "" {
		return nil, errs.ErrUnauthorized
	}
	newBody = strings.TrimSpace(newBody)
	if newBody == "" {
		return nil, errs.ErrEmptyBody
	}
	m, err := s.msgs.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.ErrNotFound.WithDetail("message not found")
	}
	if m.AuthorID != actor {
		return nil, errs.ErrForbidden.WithDetail("not the author")
	}
	now := time.Now().UnixMilli()
	if err := s.msgs.UpdateBody(ctx, messageID, newBody, now); err != nil {
		return nil, err
	}
	out := *m
	out.Body = newBody
	out.EditedAtMS = now
	return &out, nil
}

// Delete removes the message; author only. Deleted messages drop out of
// pagination and unread counts.
func (s *Service) Delete(ctx context.Context, actor string, messageID int64) error {
	if actor == "" {
		return errs.ErrUnauthorized
	}
	m, err := s.msgs.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if m == nil {
		return errs.ErrNotFound.WithDetail("message not found")
	}
	if m.AuthorID != actor {
		return errs.ErrForbidden.WithDetail("not the author")
	}
	return s.msgs.Remove(ctx, messageID)
}
