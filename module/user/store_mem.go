package user

import (
	"context"
	"sync"
)

// MemDirectory is the in-memory double used by tests.
type MemDirectory struct {
	mu    sync.RWMutex
	users map[string]struct{}
}

func NewMemDirectory(ids ...string) *MemDirectory {
	d := &MemDirectory{users: make(map[string]struct{})}
	for _, id := range ids {
		d.users[id] = struct{}{}
	}
	return d
}

func (d *MemDirectory) Add(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[id] = struct{}{}
}

func (d *MemDirectory) UserExists(ctx context.Context, id string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[id]
	return ok, nil
}
