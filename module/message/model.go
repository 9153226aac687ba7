package message

import (
	"fmt"
	"strconv"
	"strings"
)

// Message is immutable except for author edits; CreatedAtMS plus the
// snowflake id give every thread a single total order for pagination.
type Message struct {
	ID          int64  `bson:"_id" json:"id"`
	ThreadID    int64  `bson:"thread_id" json:"thread_id"`
	AuthorID    string `bson:"author_id" json:"author_id"`
	Body        string `bson:"body" json:"body"`
	CreatedAtMS int64  `bson:"created_at_ms" json:"created_at_ms"`
	EditedAtMS  int64  `bson:"edited_at_ms,omitempty" json:"edited_at_ms,omitempty"`
}

func (Message) TableName() string { return "dm_message" }

// Cursor is a keyset position: strictly-older means
// (created_at_ms, id) < (TsMS, ID) lexicographically.
type Cursor struct {
	TsMS int64
	ID   int64
}

func (c Cursor) Encode() string {
	return fmt.Sprintf("%d-%d", c.TsMS, c.ID)
}

// ParseCursor decodes "<ms>-<id>"; empty input means "newest page".
func ParseCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("bad cursor %q", s)
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad cursor ts: %w", err)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad cursor id: %w", err)
	}
	return &Cursor{TsMS: ts, ID: id}, nil
}

// Before reports whether m sits strictly before c in descending order.
func (m *Message) Before(c *Cursor) bool {
	if c == nil {
		return true
	}
	if m.CreatedAtMS != c.TsMS {
		return m.CreatedAtMS < c.TsMS
	}
	return m.ID < c.ID
}
