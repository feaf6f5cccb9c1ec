package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mergeq/internal/domain"
)

const keyPrefix = "jobresult:"

// RedisStore keeps results in Redis with per-entry expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) StoreResult(ctx context.Context, id string, result domain.JobResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("resultcache: encode result: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, ttl).Err(); err != nil {
		return fmt.Errorf("resultcache: store result: %w", err)
	}
	return nil
}

func (s *RedisStore) Lookup(ctx context.Context, id string) (*domain.JobResult, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("resultcache: lookup result: %w", err)
	}
	var result domain.JobResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("resultcache: decode result: %w", err)
	}
	return &result, nil
}

var _ Store = (*RedisStore)(nil)
