package thread

import "context"

// Store persists threads. Get* return (nil, nil) when the row is missing.
type Store interface {
	// CreateIfAbsent inserts t keyed by its (low, high) pair unless a row for
	// the pair already exists. Returns the winning row and whether this call
	// created it. Must be atomic so two simultaneous first contacts converge
	// on one thread.
	CreateIfAbsent(ctx context.Context, t *Thread) (*Thread, bool, error)

	GetByID(ctx context.Context, id int64) (*Thread, error)
	GetByPair(ctx context.Context, low, high string) (*Thread, error)

	// UpdateStatus applies a state transition.
	UpdateStatus(ctx context.Context, id int64, status, requestedBy string, decisionAtMS int64) error

	// BumpLastMessageAt raises last_message_at_ms (never lowers it).
	BumpLastMessageAt(ctx context.Context, id int64, tsMS int64) error

	// ListByUser returns every thread involving user, most recent message first.
	ListByUser(ctx context.Context, user string) ([]*Thread, error)
}
