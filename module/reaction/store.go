package reaction

import "context"

// Store persists reactions. Toggle must be atomic per triple: two concurrent
// toggles for the same (message, user, emoji) resolve to insert-then-delete
// or delete-then-insert, never two rows.
type Store interface {
	// Toggle flips presence and reports whether the reaction now exists.
	Toggle(ctx context.Context, messageID int64, userID, emoji string) (added bool, err error)

	// ListByMessage returns every reaction on the message.
	ListByMessage(ctx context.Context, messageID int64) ([]*Reaction, error)
}
