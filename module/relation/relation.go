// Package relation resolves the follow relationship between two users from
// the external follow-edge store. Resolution is a pure query: callers must
// re-resolve on every gating decision because follow state can change
// between calls.
package relation

import "context"

type Relation int32

const (
	None Relation = iota
	AFollowsB
	BFollowsA
	Mutual
)

func (r Relation) String() string {
	switch r {
	case AFollowsB:
		return "a_follows_b"
	case BFollowsA:
		return "b_follows_a"
	case Mutual:
		return "mutual"
	default:
		return "none"
	}
}

// FollowStore is the follow-graph collaborator. AddEdge is only invoked by
// an ACCEPT decision.
type FollowStore interface {
	IsFollowing(ctx context.Context, follower, following string) (bool, error)
	AddEdge(ctx context.Context, follower, following string) error
}

type Resolver struct {
	store FollowStore
}

func NewResolver(store FollowStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve reports the relation between a and b as seen right now.
func (r *Resolver) Resolve(ctx context.Context, a, b string) (Relation, error) {
	ab, err := r.store.IsFollowing(ctx, a, b)
	if err != nil {
		return None, err
	}
	ba, err := r.store.IsFollowing(ctx, b, a)
	if err != nil {
		return None, err
	}
	switch {
	case ab && ba:
		return Mutual, nil
	case ab:
		return AFollowsB, nil
	case ba:
		return BFollowsA, nil
	default:
		return None, nil
	}
}
