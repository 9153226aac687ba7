package storage

import (
	"context"
	"time"

	rds "DProject/service/storage/redis"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Presence marks which users currently hold a live stream connection.
// Key: dm:presence:<user>, value: node id, TTL renewed on heartbeat so a
// crashed node's entries age out on their own.
type Presence struct {
	ttl time.Duration
}

func NewPresence(ttl time.Duration) *Presence {
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	return &Presence{ttl: ttl}
}

func presenceKey(user string) string { return "dm:presence:" + user }

// Online sets the user online and (re)starts the TTL.
func (p *Presence) Online(ctx context.Context, user, nodeID string) error {
	return rds.Get().Set(ctx, presenceKey(user), nodeID, p.ttl).Err()
}

// Touch renews the TTL without changing the value.
func (p *Presence) Touch(ctx context.Context, user string) error {
	return rds.Get().Expire(ctx, presenceKey(user), p.ttl).Err()
}

// Offline removes the key on clean disconnect.
func (p *Presence) Offline(ctx context.Context, user string) error {
	return rds.Get().Del(ctx, presenceKey(user)).Err()
}

// Lookup reports whether the user is online and on which node.
func (p *Presence) Lookup(ctx context.Context, user string) (nodeID string, online bool, err error) {
	val, err := rds.Get().Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
