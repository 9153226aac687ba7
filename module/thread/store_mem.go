package thread

import (
	"context"
	"sort"
	"sync"
)

// MemStore is the in-memory double (same uniqueness rules the mongo indexes
// enforce), used by tests and local runs without mongo.
type MemStore struct {
	mu     sync.RWMutex
	byID   map[int64]*Thread
	byPair map[string]*Thread // low|high
}

func NewMemStore() *MemStore {
	return &MemStore{
		byID:   make(map[int64]*Thread),
		byPair: make(map[string]*Thread),
	}
}

func pairMapKey(low, high string) string { return low + "|" + high }

func (s *MemStore) CreateIfAbsent(ctx context.Context, t *Thread) (*Thread, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := pairMapKey(t.UserLowID, t.UserHighID)
	if existing, ok := s.byPair[k]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *t
	s.byPair[k] = &cp
	s.byID[cp.ID] = &cp
	out := cp
	return &out, true, nil
}

func (s *MemStore) GetByID(ctx context.Context, id int64) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (s *MemStore) GetByPair(ctx context.Context, low, high string) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.byPair[pairMapKey(low, high)]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (s *MemStore) UpdateStatus(ctx context.Context, id int64, status, requestedBy string, decisionAtMS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.byID[id]; ok {
		t.Status = status
		t.RequestedByID = requestedBy
		t.LastDecisionAtMS = decisionAtMS
		if requestedBy != "" {
			t.RequestedAtMS = decisionAtMS
		} else {
			t.RequestedAtMS = 0
		}
	}
	return nil
}

func (s *MemStore) BumpLastMessageAt(ctx context.Context, id int64, tsMS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.byID[id]; ok && tsMS > t.LastMessageAtMS {
		t.LastMessageAtMS = tsMS
	}
	return nil
}

func (s *MemStore) ListByUser(ctx context.Context, user string) ([]*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Thread
	for _, t := range s.byID {
		if t.Involves(user) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastMessageAtMS != out[j].LastMessageAtMS {
			return out[i].LastMessageAtMS > out[j].LastMessageAtMS
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
