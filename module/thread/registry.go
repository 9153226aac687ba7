// Package thread owns the one-thread-per-pair invariant and the
// request/accept/decline state machine.
package thread

import (
	"context"
	"time"

	"DProject/logger"
	"DProject/module/relation"
	"DProject/module/user"
	"DProject/service/notify"
	"DProject/tools/errs"
	"DProject/tools/ids"
)

type Decision string

const (
	DecisionAccept  Decision = "ACCEPT"
	DecisionDecline Decision = "DECLINE"
)

// View is a thread annotated for the caller's thread list.
type View struct {
	Thread     *Thread           `json:"thread"`
	PeerID     string            `json:"peer_id"`
	Relation   relation.Relation `json:"-"`
	RelationS  string            `json:"relation"`
	CanMessage bool              `json:"can_message"`
}

type Registry struct {
	threads  Store
	users    user.Directory
	follows  relation.FollowStore
	resolver *relation.Resolver
	notifier notify.Notifier
}

func NewRegistry(threads Store, users user.Directory, follows relation.FollowStore, notifier notify.Notifier) *Registry {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Registry{
		threads:  threads,
		users:    users,
		follows:  follows,
		resolver: relation.NewResolver(follows),
		notifier: notifier,
	}
}

// Store exposes the underlying thread store to sibling services (message
// append needs participant/status checks against the same rows).
func (r *Registry) Store() Store { return r.threads }

// OpenOrGet resolves the canonical thread for {actor, other}, creating it on
// first contact. Status is decided by the relation at this instant: mutual
// follows open straight to ACTIVE, anything else parks the thread in
// REQUESTED with actor as the pending petitioner. An existing REQUESTED
// thread is promoted here if the relation has since become mutual; that is
// the only read-path transition, and it runs through the same transition
// func Respond uses. Calling twice in a row yields the same id and status.
func (r *Registry) OpenOrGet(ctx context.Context, actor, other string) (*Thread, error) {
	if actor == "" {
		return nil, errs.ErrUnauthorized
	}
	if actor == other {
		return nil, errs.ErrInvalidPeer.WithDetail("cannot open a thread with yourself")
	}
	exists, err := r.users.UserExists(ctx, other)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.ErrInvalidPeer.WithDetail("peer does not exist")
	}

	low, high := PairKey(actor, other)

	// Fast path: ACTIVE is sticky, so an established thread needs neither a
	// relation lookup nor the insert attempt.
	existing, err := r.threads.GetByPair(ctx, low, high)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == StatusActive {
		return existing, nil
	}

	rel, err := r.resolver.Resolve(ctx, actor, other)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()

	t := &Thread{
		ID:           ids.Generate(),
		UserLowID:    low,
		UserHighID:   high,
		CreateTimeMS: now,
	}
	if rel == relation.Mutual {
		t.Status = StatusActive
	} else {
		t.Status = StatusRequested
		t.RequestedByID = actor
		t.RequestedAtMS = now
	}

	winner, created, err := r.threads.CreateIfAbsent(ctx, t)
	if err != nil {
		return nil, err
	}
	if created {
		if winner.Status == StatusRequested {
			notify.Dispatch(r.notifier, notify.Event{
				Kind: notify.EventThreadRequested, ThreadID: winner.ID,
				ActorID: actor, PeerID: other,
			})
		}
		return winner, nil
	}

	// Existing thread: re-evaluate status against the current relation.
	if winner.Status == StatusRequested && rel == relation.Mutual {
		return r.transition(ctx, winner, StatusActive, "")
	}
	// A declined thread has no pending petitioner; a fresh contact attempt
	// renews the request on the same row.
	if winner.Status == StatusRequested && winner.RequestedByID == "" {
		out, err := r.transition(ctx, winner, StatusRequested, actor)
		if err != nil {
			return nil, err
		}
		notify.Dispatch(r.notifier, notify.Event{
			Kind: notify.EventThreadRequested, ThreadID: out.ID,
			ActorID: actor, PeerID: other,
		})
		return out, nil
	}
	return winner, nil
}

// Respond applies the recipient's (or either participant's) decision.
// ACCEPT establishes follow edges in both directions, then activates the
// thread. DECLINE resets it to REQUESTED with no pending requester: the
// conversation is closed but the row survives so either side can reopen it.
func (r *Registry) Respond(ctx context.Context, actor string, threadID int64, decision Decision) (*Thread, error) {
	if actor == "" {
		return nil, errs.ErrUnauthorized
	}
	t, err := r.threads.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if t == nil || !t.Involves(actor) {
		return nil, errs.ErrNotFound.WithDetail("thread not found for caller")
	}

	switch decision {
	case DecisionAccept:
		peer := t.PeerOf(actor)
		if err := r.follows.AddEdge(ctx, actor, peer); err != nil {
			return nil, err
		}
		if err := r.follows.AddEdge(ctx, peer, actor); err != nil {
			return nil, err
		}
		out, err := r.transition(ctx, t, StatusActive, "")
		if err != nil {
			return nil, err
		}
		notify.Dispatch(r.notifier, notify.Event{
			Kind: notify.EventThreadAccepted, ThreadID: t.ID,
			ActorID: actor, PeerID: peer,
		})
		return out, nil
	case DecisionDecline:
		return r.transition(ctx, t, StatusRequested, "")
	default:
		return nil, errs.ErrForbidden.WithDetail("unknown decision")
	}
}

// transition is the single place a thread changes status. The thread row is
// the serialization point; both Respond and the OpenOrGet promotion land here.
func (r *Registry) transition(ctx context.Context, t *Thread, status, requestedBy string) (*Thread, error) {
	now := time.Now().UnixMilli()
	if err := r.threads.UpdateStatus(ctx, t.ID, status, requestedBy, now); err != nil {
		return nil, err
	}
	logger.Infof("[thread] transition id=%d %s -> %s", t.ID, t.Status, status)
	out := *t
	out.Status = status
	out.RequestedByID = requestedBy
	out.LastDecisionAtMS = now
	// No pending petitioner means no pending request timestamp either.
	if requestedBy != "" {
		out.RequestedAtMS = now
	} else {
		out.RequestedAtMS = 0
	}
	return &out, nil
}

// ListFor returns the caller's threads ordered by recency, each annotated
// with the live relation to the peer and whether messaging is open.
// Annotation is informational; the append gate checks status, not this.
func (r *Registry) ListFor(ctx context.Context, actor string) ([]*View, error) {
	if actor == "" {
		return nil, errs.ErrUnauthorized
	}
	threads, err := r.threads.ListByUser(ctx, actor)
	if err != nil {
		return nil, err
	}
	out := make([]*View, 0, len(threads))
	for _, t := range threads {
		peer := t.PeerOf(actor)
		rel, err := r.resolver.Resolve(ctx, actor, peer)
		if err != nil {
			return nil, err
		}
		out = append(out, &View{
			Thread:     t,
			PeerID:     peer,
			Relation:   rel,
			RelationS:  rel.String(),
			CanMessage: rel == relation.Mutual,
		})
	}
	return out, nil
}
