// Package reaction keeps the per-message emoji ledger.
package reaction

import (
	"context"
	"sort"

	"DProject/module/message"
	"DProject/module/thread"
	"DProject/tools/errs"
)

type Ledger struct {
	store   Store
	msgs    message.Store
	threads thread.Store
}

func NewLedger(store Store, msgs message.Store, threads thread.Store) *Ledger {
	return &Ledger{store: store, msgs: msgs, threads: threads}
}

// Toggle flips the actor's reaction and returns counts recomputed from the
// ledger right after the mutation. The read is authoritative, not cached.
func (l *Ledger) Toggle(ctx context.Context, actor string, messageID int64, emoji string) (*Summary, error) {
	if actor == "" {
		return nil, errs.ErrUnauthorized
	}
	if !IsAllowed(emoji) {
		return nil, errs.ErrForbidden.WithDetail("emoji not allowed")
	}

	m, err := l.msgs.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.ErrNotFound.WithDetail("message not found")
	}
	t, err := l.threads.GetByID(ctx, m.ThreadID)
	if err != nil {
		return nil, err
	}
	if t == nil || !t.Involves(actor) {
		return nil, errs.ErrForbidden.WithDetail("not a participant")
	}

	if _, err := l.store.Toggle(ctx, messageID, actor, emoji); err != nil {
		return nil, err
	}
	return l.Summarize(ctx, actor, messageID)
}

// Summarize aggregates the current ledger state for one message.
func (l *Ledger) Summarize(ctx context.Context, actor string, messageID int64) (*Summary, error) {
	rows, err := l.store.ListByMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	sum := &Summary{MessageID: messageID, Counts: make(map[string]int)}
	for _, r := range rows {
		sum.Counts[r.Emoji]++
		if r.UserID == actor {
			sum.Mine = append(sum.Mine, r.Emoji)
		}
	}
	sort.Strings(sum.Mine)
	return sum, nil
}
