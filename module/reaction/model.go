package reaction

// Reaction presence is binary per (message, user, emoji); the mongo
// collection carries a unique index over the triple.
type Reaction struct {
	ID          int64  `bson:"_id"`
	MessageID   int64  `bson:"message_id"`
	UserID      string `bson:"user_id"`
	Emoji       string `bson:"emoji"`
	CreatedAtMS int64  `bson:"created_at_ms"`
}

func (Reaction) TableName() string { return "dm_reaction" }

// Summary is the authoritative post-toggle view: per-emoji counts plus the
// caller's own active set for the message.
type Summary struct {
	MessageID int64          `json:"message_id"`
	Counts    map[string]int `json:"counts"`
	Mine      []string       `json:"mine"`
}

// Allowed is the fixed emoji allow-list.
var Allowed = map[string]struct{}{
	"👍": {},
	"❤️": {},
	"😂": {},
	"😮": {},
	"😢": {},
	"🙏": {},
}

func IsAllowed(emoji string) bool {
	_, ok := Allowed[emoji]
	return ok
}
