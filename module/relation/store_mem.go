package relation

import (
	"context"
	"sync"
)

type MemFollowStore struct {
	mu    sync.RWMutex
	edges map[string]struct{} // follower|following
}

func NewMemFollowStore() *MemFollowStore {
	return &MemFollowStore{edges: make(map[string]struct{})}
}

func edgeKey(follower, following string) string { return follower + "|" + following }

func (s *MemFollowStore) IsFollowing(ctx context.Context, follower, following string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.edges[edgeKey(follower, following)]
	return ok, nil
}

func (s *MemFollowStore) AddEdge(ctx context.Context, follower, following string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges[edgeKey(follower, following)] = struct{}{}
	return nil
}

// RemoveEdge exists for tests exercising unfollow-after-activation.
func (s *MemFollowStore) RemoveEdge(ctx context.Context, follower, following string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edges, edgeKey(follower, following))
	return nil
}
