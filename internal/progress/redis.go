package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/redis/go-redis/v9"
)

// RedisTracker keeps progress in Redis so polls can be served by any
// instance. Writes are best effort: a failed update is logged and
// dropped, a stale percent is preferable to a failed job.
type RedisTracker struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisTracker creates a Redis-backed progress tracker
func NewRedisTracker(connStr string) (*RedisTracker, error) {
	opt, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return &RedisTracker{
		client:  redis.NewClient(opt),
		ttl:     time.Hour * 6,
		timeout: time.Second * 3,
	}, nil
}

func (t *RedisTracker) key(id string) string {
	return fmt.Sprintf("progress:%s", id)
}

func (t *RedisTracker) SetProgress(sourceID string, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	ctx, cancelF := context.WithTimeout(context.Background(), t.timeout)
	defer cancelF()
	if err := t.client.Set(ctx, t.key(sourceID), percent, t.ttl).Err(); err != nil {
		goapp.Log.Warn().Err(err).Str("id", sourceID).Msg("can't save progress")
	}
}

func (t *RedisTracker) GetProgress(sourceID string) (int, bool) {
	ctx, cancelF := context.WithTimeout(context.Background(), t.timeout)
	defer cancelF()
	p, err := t.client.Get(ctx, t.key(sourceID)).Int()
	if err != nil {
		if err != redis.Nil {
			goapp.Log.Warn().Err(err).Str("id", sourceID).Msg("can't read progress")
		}
		return 0, false
	}
	return p, true
}

func (t *RedisTracker) Clear(sourceID string) {
	ctx, cancelF := context.WithTimeout(context.Background(), t.timeout)
	defer cancelF()
	if err := t.client.Del(ctx, t.key(sourceID)).Err(); err != nil {
		goapp.Log.Warn().Err(err).Str("id", sourceID).Msg("can't clear progress")
	}
}

func (t *RedisTracker) Close() error {
	return t.client.Close()
}
