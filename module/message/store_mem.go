package message

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu       sync.RWMutex
	byID     map[int64]*Message
	byThread map[int64][]*Message // kept sorted descending (created_at_ms, id)
}

func NewMemStore() *MemStore {
	return &MemStore{
		byID:     make(map[int64]*Message),
		byThread: make(map[int64][]*Message),
	}
}

func newerThan(a, b *Message) bool {
	if a.CreatedAtMS != b.CreatedAtMS {
		return a.CreatedAtMS > b.CreatedAtMS
	}
	return a.ID > b.ID
}

func (s *MemStore) Insert(ctx context.Context, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.byID[cp.ID] = &cp
	list := append(s.byThread[cp.ThreadID], &cp)
	sort.Slice(list, func(i, j int) bool { return newerThan(list[i], list[j]) })
	s.byThread[cp.ThreadID] = list
	return nil
}

func (s *MemStore) GetByID(ctx context.Context, id int64) (*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (s *MemStore) ListBefore(ctx context.Context, threadID int64, cursor *Cursor, limit int) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Message
	for _, m := range s.byThread[threadID] {
		if !m.Before(cursor) {
			continue
		}
		cp := *m
		out = append(out, &cp)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemStore) UpdateBody(ctx context.Context, id int64, body string, editedAtMS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.byID[id]; ok {
		m.Body = body
		m.EditedAtMS = editedAtMS
	}
	return nil
}

func (s *MemStore) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return nil
	}
	delete(s.byID, id)
	list := s.byThread[m.ThreadID]
	for i, v := range list {
		if v.ID == id {
			s.byThread[m.ThreadID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemStore) CountAfter(ctx context.Context, threadID int64, afterMS int64, excludeAuthor string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, m := range s.byThread[threadID] {
		if m.CreatedAtMS > afterMS && m.AuthorID != excludeAuthor {
			n++
		}
	}
	return n, nil
}
