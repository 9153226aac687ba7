package reaction

import (
	"context"
	"strconv"
	"sync"
	"time"

	"DProject/tools/ids"
)

type MemStore struct {
	mu     sync.Mutex
	byTrip map[string]*Reaction // message|user|emoji
}

func NewMemStore() *MemStore {
	return &MemStore{byTrip: make(map[string]*Reaction)}
}

func tripKey(messageID int64, userID, emoji string) string {
	return strconv.FormatInt(messageID, 10) + "|" + userID + "|" + emoji
}

func (s *MemStore) Toggle(ctx context.Context, messageID int64, userID, emoji string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := tripKey(messageID, userID, emoji)
	if _, ok := s.byTrip[k]; ok {
		delete(s.byTrip, k)
		return false, nil
	}
	s.byTrip[k] = &Reaction{
		ID:          ids.Generate(),
		MessageID:   messageID,
		UserID:      userID,
		Emoji:       emoji,
		CreatedAtMS: time.Now().UnixMilli(),
	}
	return true, nil
}

func (s *MemStore) ListByMessage(ctx context.Context, messageID int64) ([]*Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Reaction
	for _, r := range s.byTrip {
		if r.MessageID == messageID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}
