package thread

// Thread status values. There is deliberately no archived/declined state:
// a decline resets the row to REQUESTED with no requester, so either side
// can re-initiate later and the pair keeps its single canonical row.
const (
	StatusRequested = "REQUESTED"
	StatusActive    = "ACTIVE"
)

// Thread is the single canonical conversation row for an unordered user
// pair. Participants are stored as (low, high) so the pair maps to exactly
// one row no matter who acts first; see PairKey.
type Thread struct {
	ID         int64  `bson:"_id" json:"id"`
	UserLowID  string `bson:"user_low_id" json:"user_low_id"`
	UserHighID string `bson:"user_high_id" json:"user_high_id"`

	Status        string `bson:"status" json:"status"`
	RequestedByID string `bson:"requested_by_id" json:"requested_by_id,omitempty"` // empty when no pending petitioner

	RequestedAtMS    int64 `bson:"requested_at_ms" json:"requested_at_ms,omitempty"`
	LastDecisionAtMS int64 `bson:"last_decision_at_ms" json:"last_decision_at_ms,omitempty"`
	LastMessageAtMS  int64 `bson:"last_message_at_ms" json:"last_message_at_ms,omitempty"`
	CreateTimeMS     int64 `bson:"create_time_ms" json:"create_time_ms"`
}

func (Thread) TableName() string { return "dm_thread" }

// PairKey returns the two ids in canonical (low, high) order. Every creation
// and lookup path must go through this so "one thread per pair" stays
// enforceable as a uniqueness constraint.
func PairKey(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Involves reports whether u is one of the two participants.
func (t *Thread) Involves(u string) bool {
	return u == t.UserLowID || u == t.UserHighID
}

// PeerOf returns the other participant, or "" if u is not involved.
func (t *Thread) PeerOf(u string) string {
	switch u {
	case t.UserLowID:
		return t.UserHighID
	case t.UserHighID:
		return t.UserLowID
	default:
		return ""
	}
}
