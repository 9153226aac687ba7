package message

import "context"

// Store persists messages. GetByID returns (nil, nil) when missing.
type Store interface {
	Insert(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)

	// ListBefore returns up to limit messages of the thread strictly older
	// than the cursor (newest page when cursor is nil), descending.
	ListBefore(ctx context.Context, threadID int64, cursor *Cursor, limit int) ([]*Message, error)

	UpdateBody(ctx context.Context, id int64, body string, editedAtMS int64) error
	Remove(ctx context.Context, id int64) error

	// CountAfter counts messages in the thread newer than afterMS that were
	// not authored by excludeAuthor. Feeds the unread aggregate.
	CountAfter(ctx context.Context, threadID int64, afterMS int64, excludeAuthor string) (int64, error)
}
