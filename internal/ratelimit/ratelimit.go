package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeSender throttles one-time code sends per user and purpose with a
// redis SetNX lock. A nil *CodeSender allows everything, so the
// service runs without redis configured.
type CodeSender struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCodeSender(rdb *redis.Client, ttl time.Duration) *CodeSender {
	return &CodeSender{rdb: rdb, ttl: ttl}
}

// Allow reports whether a code may be sent now for the given purpose.
// If redis is unreachable the send is allowed rather than blocked.
func (l *CodeSender) Allow(ctx context.Context, purpose, userID string) bool {
	if l == nil {
		return true
	}

	key := fmt.Sprintf("codesend:%s:%s", purpose, userID)

	ok, err := l.rdb.SetNX(ctx, key, 1, l.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}
