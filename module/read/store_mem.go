package read

import (
	"context"
	"strconv"
	"sync"
)

type MemStore struct {
	mu    sync.RWMutex
	marks map[string]int64 // thread|user -> last_read_at_ms
}

func NewMemStore() *MemStore {
	return &MemStore{marks: make(map[string]int64)}
}

func markKey(threadID int64, userID string) string {
	return strconv.FormatInt(threadID, 10) + "|" + userID
}

func (s *MemStore) MarkRead(ctx context.Context, threadID int64, userID string, tsMS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := markKey(threadID, userID)
	if tsMS > s.marks[k] {
		s.marks[k] = tsMS
	}
	return nil
}

func (s *MemStore) Get(ctx context.Context, threadID int64, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marks[markKey(threadID, userID)], nil
}
