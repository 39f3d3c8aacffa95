package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/BuzzLyutic/planner-web/internal/model"
)

const sessionKeyPrefix = "session:"

// RedisSessionRepo keeps sessions as JSON values with a TTL matching ExpiresAt,
// so redis evicts them itself and DeleteExpired has nothing to do.
type RedisSessionRepo struct {
	client *redis.Client
}

func NewRedisSessionRepo(client *redis.Client) *RedisSessionRepo {
	return &RedisSessionRepo{client: client}
}

func (r *RedisSessionRepo) Save(ctx context.Context, s model.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			return r.Delete(ctx, s.ID)
		}
	}
	return r.client.Set(ctx, sessionKeyPrefix+s.ID, raw, ttl).Err()
}

func (r *RedisSessionRepo) Get(ctx context.Context, id string) (model.Session, error) {
	var s model.Session

	raw, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return s, ErrorNotFound
	}
	if err != nil {
		return s, err
	}
	return s, json.Unmarshal(raw, &s)
}

func (r *RedisSessionRepo) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKeyPrefix+id).Err()
}

func (r *RedisSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
