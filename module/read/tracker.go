// Package read derives unread counts from message and read-mark timestamps.
// There is no maintained counter anywhere that could drift.
package read

import (
	"context"
	"time"

	"DProject/module/message"
	"DProject/module/thread"
	"DProject/tools/errs"
)

type Tracker struct {
	marks   Store
	msgs    message.Store
	threads thread.Store
}

func NewTracker(marks Store, msgs message.Store, threads thread.Store) *Tracker {
	return &Tracker{marks: marks, msgs: msgs, threads: threads}
}

// MarkRead stamps now as the caller's watermark for the thread.
func (t *Tracker) MarkRead(ctx context.Context, actor string, threadID int64) error {
	if actor == "" {
		return errs.ErrUnauthorized
	}
	th, err := t.threads.GetByID(ctx, threadID)
	if err != nil {
		return err
	}
	if th == nil || !th.Involves(actor) {
		return errs.ErrNotFound.WithDetail("thread not found for caller")
	}
	return t.marks.MarkRead(ctx, threadID, actor, time.Now().UnixMilli())
}

// UnreadCounts holds the per-thread map plus the grand total.
type UnreadCounts struct {
	PerThread map[int64]int64 `json:"per_thread"`
	Total     int64           `json:"total"`
}

// UnreadFor counts, for every thread involving the caller, peer-authored
// messages newer than the caller's watermark (epoch zero when unmarked).
func (t *Tracker) UnreadFor(ctx context.Context, actor string) (*UnreadCounts, error) {
	if actor == "" {
		return nil, errs.ErrUnauthorized
	}
	threads, err := t.threads.ListByUser(ctx, actor)
	if err != nil {
		return nil, err
	}
	out := &UnreadCounts{PerThread: make(map[int64]int64, len(threads))}
	for _, th := range threads {
		mark, err := t.marks.Get(ctx, th.ID, actor)
		if err != nil {
			return nil, err
		}
		n, err := t.msgs.CountAfter(ctx, th.ID, mark, actor)
		if err != nil {
			return nil, err
		}
		out.PerThread[th.ID] = n
		out.Total += n
	}
	return out, nil
}

// UnreadForThread is the single-thread variant used by the inbox listing.
func (t *Tracker) UnreadForThread(ctx context.Context, actor string, threadID int64) (int64, error) {
	mark, err := t.marks.Get(ctx, threadID, actor)
	if err != nil {
		return 0, err
	}
	return t.msgs.CountAfter(ctx, threadID, mark, actor)
}
