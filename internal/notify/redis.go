package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/dark-chess/internal/obslog"
)

// Redis is a Hub backed by Redis pub/sub, one channel per session, so that every
// server instance sharing the Redis store sees every change.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis { return &Redis{rdb: rdb} }

func channel(sessionID string) string { return "darkchess:events:" + strings.TrimSpace(sessionID) }

func (r *Redis) Publish(ctx context.Context, sessionID string) error {
	return r.rdb.Publish(ctx, channel(sessionID), sessionID).Err()
}

func (r *Redis) Subscribe(ctx context.Context, sessionID string) (*Subscription, error) {
	ps := r.rdb.Subscribe(ctx, channel(sessionID))
	// 구독 확인 전에 발행된 메시지는 유실되므로 확인 응답까지 대기
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", sessionID, err)
	}

	out := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		msgs := ps.Channel()
		for {
			select {
			case <-done:
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				signal(out)
			}
		}
	}()

	return &Subscription{C: out, closeFn: func() {
		close(done)
		if err := ps.Close(); err != nil {
			obslog.L().Warn("notify_unsubscribe_error", zap.String("session_id", sessionID), zap.Error(err))
		}
	}}, nil
}

// Close leaves the shared client to its owner.
func (r *Redis) Close() error { return nil }
