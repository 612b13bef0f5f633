package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"chatapp/logger"
)

// PresenceMirror keeps a best-effort copy of who is online in Redis, keyed
// im:presence:<user> with a TTL. The in-memory registry stays authoritative
// for delivery; the mirror exists for ops tooling and external services.
// A nil *PresenceMirror is valid and does nothing, so wiring Redis is
// optional.
type PresenceMirror struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPresenceMirror(addr, password string, db int, ttl time.Duration) (*PresenceMirror, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceMirror{rdb: rdb, ttl: ttl}, nil
}

func presenceKey(user string) string { return "im:presence:" + user }

func (p *PresenceMirror) Online(ctx context.Context, user string) {
	if p == nil {
		return
	}
	if err := p.rdb.Set(ctx, presenceKey(user), time.Now().UTC().Format(time.RFC3339), p.ttl).Err(); err != nil {
		logger.Infof("[presence-mirror] online %s: %v", user, err)
	}
}

func (p *PresenceMirror) Offline(ctx context.Context, user string) {
	if p == nil {
		return
	}
	if err := p.rdb.Del(ctx, presenceKey(user)).Err(); err != nil {
		logger.Infof("[presence-mirror] offline %s: %v", user, err)
	}
}

// IsOnline answers from the mirror only; it may lag the registry.
func (p *PresenceMirror) IsOnline(ctx context.Context, user string) (bool, error) {
	if p == nil {
		return false, nil
	}
	err := p.rdb.Get(ctx, presenceKey(user)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
