package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/redis/go-redis/v9"
	"github.com/vidquote/transcript-engine/internal/domain"
	"github.com/vidquote/transcript-engine/internal/secure"
)

// RedisStore persists transcripts in Redis as encrypted JSON with a TTL.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	crypter *secure.Crypter
}

// NewRedisStore connects to Redis at connStr and encrypts stored payloads
// with encryptionKey.
func NewRedisStore(connStr string, encryptionKey string) (*RedisStore, error) {
	opt, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	goapp.Log.Info().Str("redis", opt.Addr).Int("db", opt.DB).Send()
	rdb := redis.NewClient(opt)

	crypter, err := secure.NewCrypter(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("create crypter: %w", err)
	}

	return &RedisStore{
		client:  rdb,
		ttl:     time.Hour * 24 * 7,
		crypter: crypter,
	}, nil
}

func (r *RedisStore) key(id string) string {
	return fmt.Sprintf("transcript:%s", id)
}

func (r *RedisStore) Save(ctx context.Context, tr *domain.Transcript) error {
	if tr == nil || tr.SourceID == "" {
		return fmt.Errorf("no source ID")
	}
	goapp.Log.Trace().Str("id", tr.SourceID).Msg("Save transcript")
	data, err := json.Marshal(tr)
	if err != nil {
		return err
	}
	encrypted, err := r.crypter.Encrypt(data)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	return r.client.Set(ctx, r.key(tr.SourceID), encrypted, r.ttl).Err()
}

func (r *RedisStore) Load(ctx context.Context, sourceID string) (*domain.Transcript, error) {
	goapp.Log.Trace().Str("id", sourceID).Msg("Get transcript")
	bs, err := r.client.Get(ctx, r.key(sourceID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	decrypted, err := r.crypter.Decrypt(bs)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	var tr domain.Transcript
	if err := json.Unmarshal(decrypted, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
